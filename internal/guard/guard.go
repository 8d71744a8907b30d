package guard

import (
	"log/slog"
	"net/http"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/session"
)

// Route paths the guards redirect between.
const (
	SignInPath            = "/"
	DashboardPath         = "/dashboard"
	InternalDashboardPath = "/internal-dashboard"
)

// Decision is a guard verdict: render, or redirect elsewhere.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func redirect(to string) Decision {
	return Decision{RedirectTo: to}
}

// Guard is a pure predicate over session state. Guards are evaluated fresh on
// every request; decisions are never cached.
type Guard func(session.Session) Decision

// Allow admits every session. Used for public pages that still want the
// session key resolved onto the request context.
func Allow(session.Session) Decision {
	return allow()
}

// RequireAuth redirects unauthenticated sessions to the sign-in page.
func RequireAuth(s session.Session) Decision {
	if !s.IsAuthenticated() {
		return redirect(SignInPath)
	}
	return allow()
}

// RequireElevated redirects authenticated but non-elevated sessions to the
// regular dashboard. It assumes RequireAuth runs first in the chain but
// still fails closed on its own.
func RequireElevated(s session.Session) Decision {
	if !s.IsAuthenticated() {
		return redirect(SignInPath)
	}
	if !s.User.Role.Elevated() {
		return redirect(DashboardPath)
	}
	return allow()
}

// Chain composes guards in order; the first non-allowing decision wins.
func Chain(guards ...Guard) Guard {
	return func(s session.Session) Decision {
		for _, g := range guards {
			if d := g(s); !d.Allowed {
				return d
			}
		}
		return allow()
	}
}

// LandingPath is the post-sign-in destination: users attached to departments
// land on the reviewer dashboard, everyone else on the submission dashboard.
func LandingPath(s session.Session) string {
	if !s.IsAuthenticated() {
		return SignInPath
	}
	if s.User.HasDepartments() {
		return InternalDashboardPath
	}
	return DashboardPath
}

// Middleware adapts guards to HTTP: pages redirect, API routes answer JSON.
type Middleware struct {
	store      session.StoreAPI
	cookieName string
	logger     *slog.Logger
}

func NewMiddleware(store session.StoreAPI, cookieName string, logger *slog.Logger) *Middleware {
	return &Middleware{
		store:      store,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Resolve loads the session for a request, reviving it from the persisted
// credential when the in-memory state is unauthenticated. The refresh result
// is advisory: a failure just leaves the session unauthenticated.
func (m *Middleware) Resolve(r *http.Request) (string, session.Session) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", session.Session{}
	}

	sess := m.store.Current(cookie.Value)
	if !sess.IsAuthenticated() {
		refreshed, err := m.store.RefreshCurrentUser(r.Context(), cookie.Value)
		if err == nil {
			sess = refreshed
		} else if err != session.ErrNoPersistedCredential {
			m.logger.Warn("session refresh failed", "error", err)
		}
	}

	return cookie.Value, sess
}

// Page gates a server-rendered route, redirecting on denial. The session key
// rides the request context for downstream handlers.
func (m *Middleware) Page(g Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, sess := m.Resolve(r)

			if d := g(sess); !d.Allowed {
				m.logger.Info("guard redirect", "path", r.URL.Path, "to", d.RedirectTo)
				http.Redirect(w, r, d.RedirectTo, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(internal.ContextWithSessionKey(r.Context(), key)))
		})
	}
}

// API gates a JSON route: 401 when unauthenticated, 403 when authenticated
// but denied by a later guard.
func (m *Middleware) API(g Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, sess := m.Resolve(r)

			if d := g(sess); !d.Allowed {
				status := http.StatusForbidden
				if !sess.IsAuthenticated() {
					status = http.StatusUnauthorized
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				if status == http.StatusUnauthorized {
					_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				} else {
					_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(internal.ContextWithSessionKey(r.Context(), key)))
		})
	}
}
