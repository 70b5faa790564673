package http

import (
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionCookie = "skud_session"

// sessionStore keeps authenticated session tokens in memory. Sessions do not
// survive a restart; the login is a single shared operator account.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
	ttl      time.Duration
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]time.Time),
		ttl:      ttl,
	}
}

func (s *sessionStore) Create() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = time.Now().Add(s.ttl)
	return token
}

func (s *sessionStore) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.sessions, token)
		return false
	}
	return true
}

func (s *sessionStore) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *Server) authenticated(r *nethttp.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	return s.sessions.Valid(cookie.Value)
}

// requirePage redirects unauthenticated browser requests to the login page.
func (s *Server) requirePage(next nethttp.HandlerFunc) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !s.authenticated(r) {
			nethttp.Redirect(w, r, "/login", nethttp.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireAPI rejects unauthenticated API requests with a JSON error.
func (s *Server) requireAPI(next nethttp.HandlerFunc) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !s.authenticated(r) {
			writeJSON(w, nethttp.StatusUnauthorized, map[string]any{"error": "authentication required"})
			return
		}
		next(w, r)
	}
}

func (s *Server) loginHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if s.authenticated(r) {
		nethttp.Redirect(w, r, "/", nethttp.StatusSeeOther)
		return
	}

	switch r.Method {
	case nethttp.MethodGet:
		renderLoginPage(w, "")
	case nethttp.MethodPost:
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username != s.loginUsername || password != s.loginPassword {
			s.logger.Warn("failed login attempt", zap.String("username", username))
			renderLoginPage(w, "Invalid credentials")
			return
		}

		token := s.sessions.Create()
		nethttp.SetCookie(w, &nethttp.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: nethttp.SameSiteLaxMode,
		})
		nethttp.Redirect(w, r, "/", nethttp.StatusSeeOther)
	default:
		nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
	}
}

func (s *Server) logoutHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	nethttp.SetCookie(w, &nethttp.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	nethttp.Redirect(w, r, "/login", nethttp.StatusSeeOther)
}
