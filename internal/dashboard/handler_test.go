package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/backend"
	"github.com/teamideas/idea-portal/internal/idea"
	"github.com/teamideas/idea-portal/internal/session"
)

// Mock backend client for testing
type mockClient struct {
	records []backend.IdeaRecord
	listErr error
}

func (m *mockClient) ExchangeIdentity(ctx context.Context, user backend.GoogleUser) (*backend.AuthResponse, error) {
	return nil, nil
}

func (m *mockClient) CurrentUser(ctx context.Context, credential string) (*backend.ExchangedUser, error) {
	return nil, nil
}

func (m *mockClient) ListIdeas(ctx context.Context, credential string) ([]backend.IdeaRecord, error) {
	return m.records, m.listErr
}

func (m *mockClient) CreateIdea(ctx context.Context, credential string, submission backend.IdeaSubmission) error {
	return nil
}

// Mock session store for testing
type mockSessions struct {
	session session.Session
}

func (m *mockSessions) Current(sessionKey string) session.Session {
	return m.session
}

func (m *mockSessions) LoginWithCredential(ctx context.Context, sessionKey, identityToken string) (session.Session, error) {
	return m.session, nil
}

func (m *mockSessions) RefreshCurrentUser(ctx context.Context, sessionKey string) (session.Session, error) {
	return m.session, nil
}

func (m *mockSessions) Logout(ctx context.Context, sessionKey string) {}

type stubWizard struct{}

func (stubWizard) View(sessionKey string) idea.WizardView {
	return idea.WizardView{Step: idea.StepTitle, Steps: idea.Steps}
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler  *Handler
		client   *mockClient
		sessions *mockSessions
	)

	const sessionKey = "test-session"

	withSessionKey := func(req *http.Request) *http.Request {
		return req.WithContext(internal.ContextWithSessionKey(req.Context(), sessionKey))
	}

	ginkgo.BeforeEach(func() {
		client = &mockClient{}
		sessions = &mockSessions{
			session: session.Session{
				Credential: "cred",
				User: &session.UserProfile{
					ID:            "u1",
					Name:          "Ada",
					Role:          session.RoleAdmin,
					DepartmentIDs: []string{"d1"},
				},
			},
		}

		var err error
		handler, err = NewHandler(client, sessions, stubWizard{}, NewExpansionState(), "client-id-1")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.Describe("SignInPage", func() {
		ginkgo.It("should redirect authenticated reviewers to the internal dashboard", func() {
			req := withSessionKey(httptest.NewRequest(http.MethodGet, "/", nil))
			rec := httptest.NewRecorder()

			handler.SignInPage(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusFound))
			gomega.Expect(rec.Header().Get("Location")).To(gomega.Equal("/internal-dashboard"))
		})

		ginkgo.It("should redirect members without departments to the submission dashboard", func() {
			sessions.session.User.DepartmentIDs = nil

			req := withSessionKey(httptest.NewRequest(http.MethodGet, "/", nil))
			rec := httptest.NewRecorder()

			handler.SignInPage(rec, req)

			gomega.Expect(rec.Header().Get("Location")).To(gomega.Equal("/dashboard"))
		})

		ginkgo.It("should render the sign-in widget for anonymous visitors", func() {
			sessions.session = session.Session{}

			req := withSessionKey(httptest.NewRequest(http.MethodGet, "/", nil))
			rec := httptest.NewRecorder()

			handler.SignInPage(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("client-id-1"))
		})
	})

	ginkgo.Describe("ReviewerPage", func() {
		ginkgo.It("should render grouped ideas", func() {
			client.records = []backend.IdeaRecord{
				{ID: "1", Title: "Faster builds", DepartmentName: "Engineering", Status: "Approved"},
				{ID: "2", Title: "New logo", DepartmentName: ""},
			}

			req := withSessionKey(httptest.NewRequest(http.MethodGet, "/internal-dashboard", nil))
			rec := httptest.NewRecorder()

			handler.ReviewerPage(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := rec.Body.String()
			gomega.Expect(body).To(gomega.ContainSubstring("Engineering"))
			gomega.Expect(body).To(gomega.ContainSubstring(FallbackGroup))
			gomega.Expect(body).To(gomega.ContainSubstring("Faster builds"))
		})

		ginkgo.It("should render an inline error state when the listing fetch fails", func() {
			client.listErr = internal.NewNetworkError("idea service unreachable", nil)

			req := withSessionKey(httptest.NewRequest(http.MethodGet, "/internal-dashboard", nil))
			rec := httptest.NewRecorder()

			handler.ReviewerPage(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("Failed to load ideas"))
		})
	})

	ginkgo.Describe("GroupedIdeas", func() {
		ginkgo.It("should answer groups with expansion state applied", func() {
			client.records = []backend.IdeaRecord{
				{ID: "1", DepartmentName: "Engineering"},
				{ID: "2", DepartmentName: ""},
			}

			req := withSessionKey(httptest.NewRequest(http.MethodGet, "/api/v1/ideas/grouped", nil))
			rec := httptest.NewRecorder()

			handler.GroupedIdeas(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var body struct {
				Groups []Group `json:"groups"`
			}
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.Groups).To(gomega.HaveLen(2))
			gomega.Expect(body.Groups[0].Open).To(gomega.BeFalse())
			gomega.Expect(body.Groups[1].Name).To(gomega.Equal(FallbackGroup))
			gomega.Expect(body.Groups[1].Open).To(gomega.BeTrue())
		})

		ginkgo.It("should answer 502 when the idea service is down", func() {
			client.listErr = internal.NewNetworkError("idea service unreachable", nil)

			req := withSessionKey(httptest.NewRequest(http.MethodGet, "/api/v1/ideas/grouped", nil))
			rec := httptest.NewRecorder()

			handler.GroupedIdeas(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadGateway))
		})
	})

	ginkgo.Describe("ToggleGroup", func() {
		ginkgo.It("should flip a group's expansion state", func() {
			router := chi.NewRouter()
			router.Post("/api/v1/ideas/groups/{name}/toggle", handler.ToggleGroup)

			toggle := func() map[string]interface{} {
				req := withSessionKey(httptest.NewRequest(http.MethodPost, "/api/v1/ideas/groups/Engineering/toggle", nil))
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)
				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

				var body map[string]interface{}
				gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
				return body
			}

			gomega.Expect(toggle()["open"]).To(gomega.Equal(true))
			gomega.Expect(toggle()["open"]).To(gomega.Equal(false))
		})
	})
})
