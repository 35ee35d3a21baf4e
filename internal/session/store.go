package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ontimely/admin-portal/internal/domain"
)

// Store is the durable remembered-login slot of one client installation.
// Read returns (nil, nil) when nothing is stored and ErrMalformedSession when
// the stored value cannot be decoded.
type Store interface {
	Read(ctx context.Context) (*domain.SessionRecord, error)
	Write(ctx context.Context, email, token string) error
	Clear(ctx context.Context) error
}

func encodeRecord(email, token string) ([]byte, error) {
	return json.Marshal(domain.SessionRecord{Email: email, Token: token})
}

func decodeRecord(raw []byte) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, ErrMalformedSession
	}
	if rec.Email == "" {
		return nil, ErrMalformedSession
	}
	return &rec, nil
}

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Read(_ context.Context) (*domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, nil
	}
	return decodeRecord(m.raw)
}

func (m *MemoryStore) Write(_ context.Context, email, token string) error {
	data, err := encodeRecord(email, token)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = data
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = nil
	return nil
}

// SetRaw replaces the stored bytes verbatim.
func (m *MemoryStore) SetRaw(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
}

// Raw returns the stored bytes, nil when empty.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw
}
