package session

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/core/events"
	"github.com/teamideas/idea-portal/internal/transport"
	"github.com/teamideas/idea-portal/pkg/logger"
)

// DraftDropper lets logout discard the session's in-progress draft without
// the session package knowing the wizard's shape.
type DraftDropper interface {
	Drop(sessionKey string)
}

type Handler struct {
	*transport.BaseHandler
	Store      StoreAPI
	Drafts     DraftDropper
	Bus        *events.EventBus
	CookieName string
	Secure     bool
}

func NewHandler(store StoreAPI, drafts DraftDropper, bus *events.EventBus, cookieName string, secure bool) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Store:       store,
		Drafts:      drafts,
		Bus:         bus,
		CookieName:  cookieName,
		Secure:      secure,
	}
}

// LoginDTO carries the Google ID token from the sign-in widget callback.
type LoginDTO struct {
	Credential string `json:"credential"`
}

type loginResponse struct {
	User    *UserProfile      `json:"user"`
	Landing string            `json:"landing"`
	Notices []internal.Notice `json:"notices,omitempty"`
}

// Login exchanges the widget's identity assertion for an application
// session. A failed exchange leaves any existing session untouched.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.Credential == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionKey := h.ensureSessionCookie(w, r)

	sess, err := h.Store.LoginWithCredential(r.Context(), sessionKey, dto.Credential)
	if err != nil {
		h.Logger.Error("login failed", "error", err)
		status := http.StatusUnauthorized
		if appErr, ok := internal.IsAppError(err); ok {
			status = appErr.StatusCode
		}
		h.WriteJSON(w, status, map[string]interface{}{
			"notices": []internal.Notice{internal.ErrorNotice("Authentication failed")},
		})
		return
	}

	if h.Bus != nil {
		h.Bus.Publish(r.Context(), events.NewUserSignedInEvent(sess.User.ID, sess.User.Email, string(sess.User.Role)))
	}

	h.WriteJSON(w, http.StatusOK, loginResponse{
		User:    sess.User,
		Landing: landingFor(sess),
		Notices: []internal.Notice{internal.SuccessNotice("Successfully signed in!")},
	})
}

// Logout clears the session and its draft. Idempotent: a missing cookie or
// unknown session still answers 204.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		h.Store.Logout(r.Context(), cookie.Value)
		if h.Drafts != nil {
			h.Drafts.Drop(cookie.Value)
		}
		if h.Bus != nil {
			h.Bus.Publish(r.Context(), events.NewUserSignedOutEvent(cookie.Value))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser answers the guarded profile read for the pages.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess := h.Store.Current(h.SessionKey(r))
	if !sess.IsAuthenticated() {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, sess.User)
}

// ensureSessionCookie returns the request's session key, minting a new
// HttpOnly cookie when the browser has none yet.
func (h *Handler) ensureSessionCookie(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

// landingFor mirrors the sign-in page routing rule: department members land
// on the reviewer dashboard, everyone else on the submission dashboard.
func landingFor(s Session) string {
	if s.User != nil && s.User.HasDepartments() {
		return "/internal-dashboard"
	}
	return "/dashboard"
}
