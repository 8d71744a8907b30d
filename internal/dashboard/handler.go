package dashboard

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/backend"
	"github.com/teamideas/idea-portal/internal/idea"
	"github.com/teamideas/idea-portal/internal/session"
	"github.com/teamideas/idea-portal/internal/transport"
	"github.com/teamideas/idea-portal/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// WizardViewer is the slice of the wizard surface the pages need to render
// initial form state.
type WizardViewer interface {
	View(sessionKey string) idea.WizardView
}

type Handler struct {
	*transport.BaseHandler
	Client         backend.ClientAPI
	Sessions       session.StoreAPI
	Wizard         WizardViewer
	Expansion      *ExpansionState
	GoogleClientID string

	templates *template.Template
}

func NewHandler(client backend.ClientAPI, sessions session.StoreAPI, wizard WizardViewer, expansion *ExpansionState, googleClientID string) (*Handler, error) {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"statusClass": StatusClass,
		"formatDate":  FormatDate,
		"fileLabel":   idea.DisplayLabel,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Client:         client,
		Sessions:       sessions,
		Wizard:         wizard,
		Expansion:      expansion,
		GoogleClientID: googleClientID,
		templates:      tmpl,
	}, nil
}

type signInPage struct {
	GoogleClientID string
}

type submissionPage struct {
	User   *session.UserProfile
	Wizard idea.WizardView
}

type reviewerPage struct {
	User      *session.UserProfile
	Groups    []Group
	FetchFail bool
}

// SignInPage renders the landing page. Authenticated sessions skip straight
// to their dashboard.
func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	sess := h.Sessions.Current(h.SessionKey(r))
	if sess.IsAuthenticated() {
		if sess.User.HasDepartments() {
			http.Redirect(w, r, "/internal-dashboard", http.StatusFound)
		} else {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		}
		return
	}

	h.render(w, "signin.html", signInPage{GoogleClientID: h.GoogleClientID})
}

// SubmissionPage renders the idea submission dashboard with the session's
// current wizard state.
func (h *Handler) SubmissionPage(w http.ResponseWriter, r *http.Request) {
	key := h.SessionKey(r)
	sess := h.Sessions.Current(key)

	h.render(w, "dashboard.html", submissionPage{
		User:   sess.User,
		Wizard: h.Wizard.View(key),
	})
}

// ReviewerPage renders the grouped idea listing. The listing is fetched once
// per page load; a fetch failure renders the page with an inline error state
// instead of failing the whole response.
func (h *Handler) ReviewerPage(w http.ResponseWriter, r *http.Request) {
	key := h.SessionKey(r)
	sess := h.Sessions.Current(key)

	page := reviewerPage{User: sess.User}

	records, err := h.Client.ListIdeas(r.Context(), sess.Credential)
	if err != nil {
		h.Logger.Error("idea listing fetch failed", "error", err)
		page.FetchFail = true
	} else {
		page.Groups = h.Expansion.Apply(key, GroupByDepartment(records))
	}

	h.render(w, "internal_dashboard.html", page)
}

// GroupedIdeas answers the grouped listing as JSON for in-page refreshes.
func (h *Handler) GroupedIdeas(w http.ResponseWriter, r *http.Request) {
	key := h.SessionKey(r)
	sess := h.Sessions.Current(key)

	records, err := h.Client.ListIdeas(r.Context(), sess.Credential)
	if err != nil {
		h.Logger.Error("idea listing fetch failed", "error", err)
		h.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
			"notices": []internal.Notice{internal.ErrorNotice("Failed to load ideas")},
		})
		return
	}

	groups := h.Expansion.Apply(key, GroupByDepartment(records))
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// ToggleGroup flips one group's expansion state for this session.
func (h *Handler) ToggleGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.WriteError(w, http.StatusBadRequest, "group name required")
		return
	}

	open := h.Expansion.Toggle(h.SessionKey(r), name)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name": name,
		"open": open,
	})
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.Logger.Error("template render failed", "template", name, "error", err)
	}
}
