package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
)

// CookieName is the cookie carrying the session id.
const CookieName = "bfa_session"

// Config holds session settings.
type Config struct {
	TTL          time.Duration
	SecureCookie bool
}

// Manager creates sessions and serves their credential to the ledger client.
type Manager struct {
	store   Store
	cfg     Config
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates a new Manager.
func NewManager(store Store, cfg Config, metrics *observability.Metrics, logger *zap.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return &Manager{
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Begin stores token under a new session id. A JWT's exp claim caps the lifetime;
// the signature is not checked here, the ledger does that.
func (m *Manager) Begin(ctx context.Context, token string) (string, time.Duration, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", 0, &domain.ErrValidation{Field: "token", Message: "token is required"}
	}

	ttl := m.cfg.TTL
	if exp, ok := tokenExpiry(token); ok {
		remaining := exp.Sub(m.now())
		if remaining <= 0 {
			return "", 0, &domain.ErrValidation{Field: "token", Message: "token already expired"}
		}
		if remaining < ttl {
			ttl = remaining
		}
	}

	id := uuid.NewString()
	if err := m.store.Put(ctx, id, Record{Token: token, CreatedAt: m.now().UTC()}, ttl); err != nil {
		return "", 0, err
	}

	m.logger.Info("session started", zap.String("session_id", id), zap.Duration("ttl", ttl))
	return id, ttl, nil
}

// End forgets the session on the request context.
func (m *Manager) End(ctx context.Context) error {
	s := FromContext(ctx)
	if s == nil {
		return nil
	}
	s.clear()
	if s.ID == "" {
		return nil
	}
	return m.store.Delete(ctx, s.ID)
}

// Token implements port.TokenProvider.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	s := FromContext(ctx)
	if s == nil {
		return "", false
	}
	return s.Token()
}

// Clear implements port.TokenProvider.
func (m *Manager) Clear(ctx context.Context) {
	s := FromContext(ctx)
	if s == nil {
		return
	}
	s.clear()
	if s.ID == "" {
		return
	}
	// The request may already be cancelled; the delete must still happen.
	if err := m.store.Delete(context.WithoutCancel(ctx), s.ID); err != nil {
		m.logger.Warn("failed to delete expired session", zap.String("session_id", s.ID), zap.Error(err))
		return
	}
	m.logger.Info("session cleared after ledger rejection", zap.String("session_id", s.ID))
}

// SetCookie writes the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ExpireCookie tells the browser to drop the session cookie.
func (m *Manager) ExpireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware attaches a *Session to every request. The credential comes from the
// session cookie, else from an "Authorization: Bearer" header.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.resolve(r)
		ctx := WithSession(r.Context(), s)
		next.ServeHTTP(&cookieWriter{ResponseWriter: w, session: s, manager: m}, r.WithContext(ctx))
	})
}

func (m *Manager) resolve(r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		rec, ok, err := m.store.Get(r.Context(), c.Value)
		switch {
		case err != nil:
			m.logger.Error("session lookup failed", zap.String("session_id", c.Value), zap.Error(err))
			m.metrics.IncrSessionLookup("error")
		case ok:
			m.metrics.IncrSessionLookup("hit")
			return NewSession(c.Value, rec.Token, true)
		default:
			m.metrics.IncrSessionLookup("miss")
		}
	}

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return NewSession("", strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false)
	}
	return NewSession("", "", false)
}

// tokenExpiry reads the exp claim of a JWT without verifying it.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// cookieWriter expires the session cookie when the credential was cleared
// while handling the request.
type cookieWriter struct {
	http.ResponseWriter
	session     *Session
	manager     *Manager
	wroteHeader bool
}

func (w *cookieWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if w.session.fromCookie && w.session.Cleared() {
			w.manager.ExpireCookie(w.ResponseWriter)
		}
		if path := w.session.Redirect(); path != "" && w.Header().Get("Location") == "" {
			w.Header().Set("Location", path)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cookieWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *cookieWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
