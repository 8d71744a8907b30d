package idea

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/session"
	"github.com/teamideas/idea-portal/internal/transport"
	"github.com/teamideas/idea-portal/pkg/logger"
)

// ServiceAPI is the wizard surface the HTTP layer drives.
type ServiceAPI interface {
	View(sessionKey string) WizardView
	SetTitle(sessionKey, title string) WizardView
	SetDescription(sessionKey, description string) WizardView
	Transition(sessionKey string, dto StepActionDTO) (WizardView, error)
	AddFiles(sessionKey string, files []Attachment) (WizardView, []internal.Notice)
	RemoveFile(sessionKey string, index int) (WizardView, error)
	Submit(ctx context.Context, sessionKey, credential string) (WizardView, internal.Notice, error)
	Drop(sessionKey string)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Sessions session.StoreAPI
}

func NewHandler(service ServiceAPI, sessions session.StoreAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Sessions:    sessions,
	}
}

// draftResponse is the envelope every wizard endpoint answers with: the new
// form state plus any transient notices.
type draftResponse struct {
	Draft   WizardView        `json:"draft"`
	Notices []internal.Notice `json:"notices,omitempty"`
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	view := h.Service.View(h.SessionKey(r))
	h.WriteJSON(w, http.StatusOK, draftResponse{Draft: view})
}

func (h *Handler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var dto FieldDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view := h.Service.SetTitle(h.SessionKey(r), dto.Value)
	h.WriteJSON(w, http.StatusOK, draftResponse{Draft: view})
}

func (h *Handler) SetDescription(w http.ResponseWriter, r *http.Request) {
	var dto FieldDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view := h.Service.SetDescription(h.SessionKey(r), dto.Value)
	h.WriteJSON(w, http.StatusOK, draftResponse{Draft: view})
}

func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	var dto StepActionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.Transition(h.SessionKey(r), dto)
	if err != nil {
		h.Logger.Info("step transition rejected", "error", err)
		status := http.StatusBadRequest
		message := "invalid step transition"
		if appErr, ok := internal.IsAppError(err); ok {
			status = appErr.StatusCode
			message = appErr.GetDetailedMessage()
		}
		h.WriteJSON(w, status, draftResponse{
			Draft:   view,
			Notices: []internal.Notice{internal.ErrorNotice(message)},
		})
		return
	}

	h.WriteJSON(w, http.StatusOK, draftResponse{Draft: view})
}

// UploadFiles reads the multipart "files" parts. Each part is read at most
// one byte past the size bound so an oversized upload is rejected without
// buffering the whole thing.
func (h *Handler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	var files []Attachment
	var notices []internal.Notice

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "malformed multipart form data")
			return
		}
		if part.FormName() != "files" || part.FileName() == "" {
			continue
		}

		content, err := io.ReadAll(io.LimitReader(part, MaxAttachmentSize+1))
		part.Close()
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}

		mediaType := part.Header.Get("Content-Type")
		if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
			mediaType = parsed
		}

		files = append(files, Attachment{
			Filename:  part.FileName(),
			MediaType: mediaType,
			Size:      int64(len(content)),
			Content:   content,
		})
	}

	view, rejected := h.Service.AddFiles(h.SessionKey(r), files)
	notices = append(notices, rejected...)

	h.WriteJSON(w, http.StatusOK, draftResponse{Draft: view, Notices: notices})
}

func (h *Handler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	indexStr := chi.URLParam(r, "index")
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attachment index")
		return
	}

	view, err := h.Service.RemoveFile(h.SessionKey(r), index)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, draftResponse{Draft: view})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionKey := h.SessionKey(r)
	credential := h.Sessions.Current(sessionKey).Credential

	view, notice, err := h.Service.Submit(r.Context(), sessionKey, credential)
	if err != nil {
		status := http.StatusBadGateway
		if appErr, ok := internal.IsAppError(err); ok {
			status = appErr.StatusCode
		}
		h.WriteJSON(w, status, draftResponse{
			Draft:   view,
			Notices: []internal.Notice{notice},
		})
		return
	}

	h.WriteJSON(w, http.StatusOK, draftResponse{
		Draft:   view,
		Notices: []internal.Notice{notice},
	})
}
