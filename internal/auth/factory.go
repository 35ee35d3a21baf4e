package auth

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/session"
)

// SessionFactory builds one AuthSession per client installation, each bound to
// its own Redis-backed store.
type SessionFactory struct {
	redis     redis.Cmdable
	directory session.CredentialDirectory
	verifier  session.PasswordVerifier
	tokens    session.TokenIssuer
	logger    *zap.Logger
	prefix    string
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionFactory wires the collaborators selected by configuration.
func NewSessionFactory(cfg config.Config, client redis.Cmdable, directory session.CredentialDirectory, logger *zap.Logger) *SessionFactory {
	var tokens session.TokenIssuer = session.LegacyTokenIssuer{}
	if cfg.Session.TokenMode == config.TokenModeJWT {
		tokens = NewTokenManager(cfg.Auth.JWTSecret, cfg.Session.TTL())
	}
	return &SessionFactory{
		redis:     client,
		directory: directory,
		verifier:  VerifierFor(cfg.Auth.PasswordScheme),
		tokens:    tokens,
		logger:    logger,
		prefix:    cfg.Session.KeyPrefix,
		ttl:       cfg.Session.TTL(),
		now:       time.Now,
	}
}

// ForClient returns a fresh AuthSession for clientID.
func (f *SessionFactory) ForClient(clientID string) *session.AuthSession {
	return session.New(session.Dependencies{
		Store:     session.NewRedisStore(f.redis, f.prefix, clientID, f.ttl),
		Directory: f.directory,
		Verifier:  f.verifier,
		Tokens:    f.tokens,
		Logger:    f.logger.With(zap.String("client", ClientRef(clientID))),
		Now:       f.now,
	})
}
