package idea

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/session"
)

// Mock session store for testing
type mockSessionStore struct {
	session session.Session
}

func (m *mockSessionStore) Current(sessionKey string) session.Session {
	return m.session
}

func (m *mockSessionStore) LoginWithCredential(ctx context.Context, sessionKey, identityToken string) (session.Session, error) {
	return m.session, nil
}

func (m *mockSessionStore) RefreshCurrentUser(ctx context.Context, sessionKey string) (session.Session, error) {
	return m.session, nil
}

func (m *mockSessionStore) Logout(ctx context.Context, sessionKey string) {}

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler *Handler
		service *Service
		client  *mockBackendClient
		router  *chi.Mux
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	const sessionKey = "test-session"

	doRequest := func(req *http.Request) *httptest.ResponseRecorder {
		req = req.WithContext(internal.ContextWithSessionKey(req.Context(), sessionKey))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		return body
	}

	ginkgo.BeforeEach(func() {
		client = &mockBackendClient{}
		service = NewService(client, nil, testLogger)
		handler = NewHandler(service, &mockSessionStore{
			session: session.Session{
				Credential: "cred-123",
				User:       &session.UserProfile{ID: "u1", Role: session.RoleMember},
			},
		})

		router = chi.NewRouter()
		router.Get("/draft", handler.GetDraft)
		router.Put("/draft/title", handler.SetTitle)
		router.Put("/draft/description", handler.SetDescription)
		router.Post("/draft/step", handler.Step)
		router.Post("/draft/files", handler.UploadFiles)
		router.Delete("/draft/files/{index}", handler.RemoveFile)
		router.Post("/draft/submit", handler.Submit)
	})

	ginkgo.Describe("Step", func() {
		ginkgo.It("should answer a rejected transition with the unchanged draft and a notice", func() {
			req := httptest.NewRequest(http.MethodPost, "/draft/step", strings.NewReader(`{"action":"next"}`))

			rec := doRequest(req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			body := decode(rec)
			draft := body["draft"].(map[string]interface{})
			gomega.Expect(draft["step"]).To(gomega.BeEquivalentTo(1))
			gomega.Expect(body["notices"]).ToNot(gomega.BeNil())
		})

		ginkgo.It("should advance when the step is complete", func() {
			service.SetTitle(sessionKey, "Better onboarding")
			req := httptest.NewRequest(http.MethodPost, "/draft/step", strings.NewReader(`{"action":"next"}`))

			rec := doRequest(req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			draft := decode(rec)["draft"].(map[string]interface{})
			gomega.Expect(draft["step"]).To(gomega.BeEquivalentTo(2))
		})
	})

	ginkgo.Describe("UploadFiles", func() {
		ginkgo.It("should attach multipart files with their media types", func() {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile("files", "notes.txt")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = part.Write([]byte("some notes"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(writer.Close()).To(gomega.Succeed())

			req := httptest.NewRequest(http.MethodPost, "/draft/files", &buf)
			req.Header.Set("Content-Type", writer.FormDataContentType())

			rec := doRequest(req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			draft := decode(rec)["draft"].(map[string]interface{})
			files := draft["files"].([]interface{})
			gomega.Expect(files).To(gomega.HaveLen(1))
			file := files[0].(map[string]interface{})
			gomega.Expect(file["filename"]).To(gomega.Equal("notes.txt"))
		})

		ginkgo.It("should reject non-multipart bodies", func() {
			req := httptest.NewRequest(http.MethodPost, "/draft/files", strings.NewReader("plain"))

			rec := doRequest(req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("RemoveFile", func() {
		ginkgo.It("should reject a non-numeric index", func() {
			req := httptest.NewRequest(http.MethodDelete, "/draft/files/abc", nil)

			rec := doRequest(req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should reject an out-of-range index", func() {
			req := httptest.NewRequest(http.MethodDelete, "/draft/files/0", nil)

			rec := doRequest(req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Submit", func() {
		ginkgo.It("should pass the session credential to the idea service", func() {
			service.SetTitle(sessionKey, "t")
			service.SetDescription(sessionKey, "d")
			_, err := service.Transition(sessionKey, StepActionDTO{Step: 3})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/draft/submit", nil)

			rec := doRequest(req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(client.createCalls).To(gomega.Equal(1))
		})
	})
})
