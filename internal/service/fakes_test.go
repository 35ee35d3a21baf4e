package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/events"
	"github.com/ontimely/admin-portal/internal/repository"
)

type fakeStaffRepo struct {
	CreateFunc            func(ctx context.Context, staff *domain.StaffMember) error
	UpdateFunc            func(ctx context.Context, staff *domain.StaffMember) error
	UpdatePasswordFunc    func(ctx context.Context, id, hash string) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*domain.StaffMember, error)
	ListFunc              func(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error)
	FindActiveByEmailFunc func(ctx context.Context, email string) (*domain.StaffMember, error)
	TouchLastLoginFunc    func(ctx context.Context, id string, at time.Time) error
}

func (f *fakeStaffRepo) Create(ctx context.Context, staff *domain.StaffMember) error {
	return f.CreateFunc(ctx, staff)
}

func (f *fakeStaffRepo) Update(ctx context.Context, staff *domain.StaffMember) error {
	if f.UpdateFunc == nil {
		return nil
	}
	return f.UpdateFunc(ctx, staff)
}

func (f *fakeStaffRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return f.UpdatePasswordFunc(ctx, id, hash)
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeStaffRepo) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	return f.GetByEmailFunc(ctx, email)
}

func (f *fakeStaffRepo) List(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	return f.ListFunc(ctx, filter)
}

func (f *fakeStaffRepo) FindActiveByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	return f.FindActiveByEmailFunc(ctx, email)
}

func (f *fakeStaffRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return f.TouchLastLoginFunc(ctx, id, at)
}

type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (f *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = "reset-" + token.Token
	token.CreatedAt = time.Now()
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == id {
			if t.UsedAt != nil {
				return pgx.ErrNoRows
			}
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeTicketRepo struct {
	tickets map[string]*domain.SupportTicket
	updates int
}

func newFakeTicketRepo(tickets ...domain.SupportTicket) *fakeTicketRepo {
	r := &fakeTicketRepo{tickets: map[string]*domain.SupportTicket{}}
	for i := range tickets {
		t := tickets[i]
		r.tickets[t.ID] = &t
	}
	return r
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.SupportTicket) error {
	ticket.ID = "t-new"
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.SupportTicket) error {
	f.updates++
	c := *ticket
	f.tickets[ticket.ID] = &c
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.SupportTicket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, _ repository.TicketFilter) ([]domain.SupportTicket, error) {
	out := make([]domain.SupportTicket, 0, len(f.tickets))
	for _, t := range f.tickets {
		out = append(out, *t)
	}
	return out, nil
}

type fakeCrashRepo struct {
	reports  map[string]*domain.CrashReport
	resolved int
}

func newFakeCrashRepo(reports ...domain.CrashReport) *fakeCrashRepo {
	r := &fakeCrashRepo{reports: map[string]*domain.CrashReport{}}
	for i := range reports {
		c := reports[i]
		r.reports[c.ID] = &c
	}
	return r
}

func (f *fakeCrashRepo) Create(_ context.Context, report *domain.CrashReport) error {
	report.ID = "c-new"
	report.CreatedAt = time.Now()
	c := *report
	f.reports[report.ID] = &c
	return nil
}

func (f *fakeCrashRepo) GetByID(_ context.Context, id string) (*domain.CrashReport, error) {
	c, ok := f.reports[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCrashRepo) MarkResolved(_ context.Context, report *domain.CrashReport) error {
	f.resolved++
	now := time.Now()
	report.Resolved = true
	report.ResolvedAt = &now
	c := *report
	f.reports[report.ID] = &c
	return nil
}

func (f *fakeCrashRepo) List(_ context.Context, _ repository.CrashReportFilter) ([]domain.CrashReport, error) {
	out := make([]domain.CrashReport, 0, len(f.reports))
	for _, c := range f.reports {
		out = append(out, *c)
	}
	return out, nil
}

type fakePaymentRepo struct {
	seen map[string]bool
}

func (f *fakePaymentRepo) Insert(_ context.Context, event *domain.PaymentEvent) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[event.ProviderEventID] {
		return false, nil
	}
	f.seen[event.ProviderEventID] = true
	event.ID = "pe-" + event.ProviderEventID
	return true, nil
}

type fakeUploadRepo struct {
	created   []*domain.ImageUpload
	createErr error
}

func (f *fakeUploadRepo) Create(_ context.Context, upload *domain.ImageUpload) error {
	if f.createErr != nil {
		return f.createErr
	}
	upload.ID = "u-1"
	f.created = append(f.created, upload)
	return nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			PasswordScheme:          config.PasswordSchemePlain,
			BcryptCost:              4,
			PasswordResetTTLMinutes: 60,
			MinPasswordLength:       8,
			SignupMaxAttempts:       3,
			SignupRetryDelayMillis:  100,
		},
		Notification: config.NotificationConfig{
			EmailFrom:     "noreply@ontimely.app",
			ResetLinkBase: "https://portal.ontimely.app/reset-password",
		},
	}
}

var _ repository.StaffRepository = (*fakeStaffRepo)(nil)
