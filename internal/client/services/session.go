package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/portalcli/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// SessionService owns the token/current-user pair.
//
// Contract:
//   - Login: authenticate, persist the token, then load the profile.
//   - LoadProfile: fetch /auth/me; any failure ends the session.
//   - Restore: resume a session from the persisted token at startup.
//   - Logout: drop the session locally, no server call.
//
// Session is the only read path; every mutation goes through the methods
// above.
type SessionService interface {
	Login(ctx context.Context, cnpj, password string) error
	LoadProfile(ctx context.Context) error
	Restore(ctx context.Context) error
	Logout(ctx context.Context) error
	Session() models.Session
	LastCNPJ(ctx context.Context) string
}

type sessionService struct {
	client   client.Client
	db       *sql.DB
	msgs     *MessageBox
	recovery RecoveryService
	log      logging.Logger
	now      func() time.Time

	mu      sync.Mutex
	session models.Session
}

// NewSessionService constructs a SessionService bound to the API client and
// the local database. recovery receives the first-access redirect on login.
func NewSessionService(c client.Client, db *sql.DB, msgs *MessageBox, recovery RecoveryService, log logging.Logger) SessionService {
	return &sessionService{client: c, db: db, msgs: msgs, recovery: recovery, log: log, now: time.Now}
}

func (s *sessionService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *sessionService) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.session
	if out.CurrentUser != nil {
		u := *out.CurrentUser
		out.CurrentUser = &u
	}
	return out
}

func (s *sessionService) setSession(sess models.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	s.client.SetToken(sess.Token)
}

// Login authenticates with cnpj/password. A first-access signal is not an
// error for the user: the first-access flow is opened pre-filled with cnpj
// and client.ErrFirstAccessRequired is returned so the caller can switch
// screens. Every other failure reports MsgLoginInvalid and leaves the
// session empty.
func (s *sessionService) Login(ctx context.Context, cnpj, password string) error {
	s.msgs.Clear()

	token, err := s.client.Login(ctx, cnpj, password)
	if err != nil {
		s.setSession(models.Session{})
		if errors.Is(err, client.ErrFirstAccessRequired) {
			if s.recovery != nil {
				s.recovery.Open(models.FlowFirstAccess, cnpj)
			}
			s.msgs.OK(MsgFirstAccessRequired)
			return err
		}
		s.log.Info(ctx, "login rejected", "error", err)
		s.msgs.Fail(MsgLoginInvalid)
		return fmt.Errorf("login: %w", err)
	}

	err = metadata.SetMany(ctx, s.db, map[string]string{
		metadata.KeyToken:    token,
		metadata.KeyLastCNPJ: cnpj,
	})
	if err != nil {
		s.setSession(models.Session{})
		s.log.Error(ctx, "persist token", "error", err)
		s.msgs.Fail(MsgSessionStoreError)
		return fmt.Errorf("persist token: %w", err)
	}

	s.setSession(models.Session{Token: token})
	return s.LoadProfile(ctx)
}

// LoadProfile fetches the current user. There is no retry: a single failure
// clears the token in memory and in storage.
func (s *sessionService) LoadProfile(ctx context.Context) error {
	if !s.Session().IsAuthenticated() {
		return ErrNotLoggedIn
	}

	me, err := s.client.Me(ctx)
	if err != nil {
		s.log.Info(ctx, "profile fetch failed, dropping session", "error", err)
		s.expire(ctx)
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	s.mu.Lock()
	s.session.CurrentUser = me
	s.mu.Unlock()
	return nil
}

func (s *sessionService) expire(ctx context.Context) {
	s.setSession(models.Session{})
	if err := s.getMetadataRepo().Delete(ctx, metadata.KeyToken); err != nil {
		s.log.Error(ctx, "remove persisted token", "error", err)
	}
	s.msgs.Fail(MsgSessionExpired)
}

// Restore resumes the persisted session, if any. A JWT whose exp claim has
// passed is dropped without a network call; any other token is validated by
// LoadProfile.
func (s *sessionService) Restore(ctx context.Context) error {
	token, ok, err := s.getMetadataRepo().Get(ctx, metadata.KeyToken)
	if err != nil {
		return fmt.Errorf("read persisted token: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	if tokenExpired(token, s.now()) {
		s.log.Info(ctx, "persisted token expired")
		s.expire(ctx)
		return ErrSessionExpired
	}

	s.setSession(models.Session{Token: token})
	return s.LoadProfile(ctx)
}

// tokenExpired reports whether token is a JWT with an exp claim before now.
// Signatures are not checked; the server remains the authority. Opaque
// tokens are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

// Logout drops the token and profile unconditionally. A storage failure is
// returned, but the in-memory session is already gone by then.
func (s *sessionService) Logout(ctx context.Context) error {
	s.setSession(models.Session{})
	s.msgs.Clear()
	if err := s.getMetadataRepo().Delete(ctx, metadata.KeyToken); err != nil {
		return fmt.Errorf("remove persisted token: %w", err)
	}
	return nil
}

// LastCNPJ returns the cnpj of the last successful login, used to pre-fill
// the login prompt.
func (s *sessionService) LastCNPJ(ctx context.Context) string {
	v, _, err := s.getMetadataRepo().Get(ctx, metadata.KeyLastCNPJ)
	if err != nil {
		s.log.Warn(ctx, "read last cnpj", "error", err)
	}
	return v
}
