package idea

import (
	"context"
	"log/slog"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/backend"
)

// Mock backend client for testing
type mockBackendClient struct {
	createCalls   int
	lastSubmitted backend.IdeaSubmission
	createErr     error
}

func (m *mockBackendClient) ExchangeIdentity(ctx context.Context, user backend.GoogleUser) (*backend.AuthResponse, error) {
	return nil, nil
}

func (m *mockBackendClient) CurrentUser(ctx context.Context, credential string) (*backend.ExchangedUser, error) {
	return nil, nil
}

func (m *mockBackendClient) ListIdeas(ctx context.Context, credential string) ([]backend.IdeaRecord, error) {
	return nil, nil
}

func (m *mockBackendClient) CreateIdea(ctx context.Context, credential string, submission backend.IdeaSubmission) error {
	m.createCalls++
	m.lastSubmitted = submission
	return m.createErr
}

var _ = ginkgo.Describe("Service", func() {
	var (
		service *Service
		client  *mockBackendClient
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	readyDraft := func(key string) {
		service.SetTitle(key, "Better onboarding")
		service.SetDescription(key, "Pair every new hire with a buddy")
		_, err := service.Transition(key, StepActionDTO{Action: "next"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		_, err = service.Transition(key, StepActionDTO{Action: "next"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	}

	ginkgo.BeforeEach(func() {
		client = &mockBackendClient{}
		service = NewService(client, nil, testLogger)
	})

	ginkgo.Describe("View", func() {
		ginkgo.It("should start every session at step one with an empty draft", func() {
			view := service.View("s1")

			gomega.Expect(view.Step).To(gomega.Equal(StepTitle))
			gomega.Expect(view.Title).To(gomega.BeEmpty())
			gomega.Expect(view.CanProceed).To(gomega.BeFalse())
		})

		ginkgo.It("should keep sessions isolated from each other", func() {
			service.SetTitle("s1", "only mine")

			gomega.Expect(service.View("s1").Title).To(gomega.Equal("only mine"))
			gomega.Expect(service.View("s2").Title).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Submit", func() {
		ginkgo.Context("when the draft is complete", func() {
			ginkgo.It("should submit once and reset the wizard", func() {
				readyDraft("s1")
				service.AddFiles("s1", []Attachment{{Filename: "deck.pdf", MediaType: "application/pdf", Size: 10}})

				view, notice, err := service.Submit(context.Background(), "s1", "cred-123")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(client.createCalls).To(gomega.Equal(1))
				gomega.Expect(client.lastSubmitted.Title).To(gomega.Equal("Better onboarding"))
				gomega.Expect(client.lastSubmitted.Files).To(gomega.HaveLen(1))
				gomega.Expect(notice.Level).To(gomega.Equal(internal.NoticeSuccess))
				gomega.Expect(notice.Message).To(gomega.Equal("Idea submitted successfully!"))

				// wizard resets to an empty step-one draft
				gomega.Expect(view.Step).To(gomega.Equal(StepTitle))
				gomega.Expect(view.Title).To(gomega.BeEmpty())
				gomega.Expect(view.Files).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the idea service rejects the submission", func() {
			ginkgo.It("should preserve the draft and make exactly one request", func() {
				readyDraft("s1")
				client.createErr = internal.NewNetworkError("idea service unreachable", nil)

				view, notice, err := service.Submit(context.Background(), "s1", "cred-123")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(client.createCalls).To(gomega.Equal(1))
				gomega.Expect(notice.Level).To(gomega.Equal(internal.NoticeError))

				// everything the user typed survives
				gomega.Expect(view.Step).To(gomega.Equal(StepAttachments))
				gomega.Expect(view.Title).To(gomega.Equal("Better onboarding"))
			})
		})

		ginkgo.Context("when the draft is not ready", func() {
			ginkgo.It("should refuse without calling the idea service", func() {
				_, _, err := service.Submit(context.Background(), "s1", "cred-123")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(client.createCalls).To(gomega.Equal(0))
			})
		})
	})

	ginkgo.Describe("Drop", func() {
		ginkgo.It("should discard the session's draft", func() {
			service.SetTitle("s1", "doomed")

			service.Drop("s1")

			gomega.Expect(service.View("s1").Title).To(gomega.BeEmpty())
		})
	})
})
