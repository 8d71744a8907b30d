package idea

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/backend"
	"github.com/teamideas/idea-portal/internal/core/events"
)

// Service keeps one wizard per session key and orchestrates the terminal
// submit against the idea service. Drafts are memory-only: a restart or
// logout discards them, which is the intended lifecycle.
type Service struct {
	mu      sync.Mutex
	wizards map[string]*Wizard

	client backend.ClientAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(client backend.ClientAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		wizards: make(map[string]*Wizard),
		client:  client,
		bus:     bus,
		logger:  logger,
	}
}

// wizard returns the session's wizard, creating a fresh one at step 1 on
// first touch. Callers must hold s.mu.
func (s *Service) wizard(sessionKey string) *Wizard {
	w, ok := s.wizards[sessionKey]
	if !ok {
		w = NewWizard()
		s.wizards[sessionKey] = w
	}
	return w
}

func (s *Service) View(sessionKey string) WizardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewOf(s.wizard(sessionKey))
}

func (s *Service) SetTitle(sessionKey, title string) WizardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wizard(sessionKey)
	w.Draft.Title = title
	return viewOf(w)
}

func (s *Service) SetDescription(sessionKey, description string) WizardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wizard(sessionKey)
	w.Draft.Description = description
	return viewOf(w)
}

// Transition applies a step action: "next", "back", or a direct jump.
func (s *Service) Transition(sessionKey string, dto StepActionDTO) (WizardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wizard(sessionKey)

	switch {
	case dto.Action == "next":
		if err := w.Next(); err != nil {
			return viewOf(w), err
		}
	case dto.Action == "back":
		w.Back()
	case dto.Step != 0:
		if err := w.Jump(Step(dto.Step)); err != nil {
			return viewOf(w), err
		}
	default:
		return viewOf(w), internal.NewValidationError("unknown step action", internal.ErrCodeInvalidStep)
	}

	return viewOf(w), nil
}

// AddFiles appends accepted files and reports one notice per rejected file.
func (s *Service) AddFiles(sessionKey string, files []Attachment) (WizardView, []internal.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wizard(sessionKey)

	notices := w.Draft.AddFiles(files)
	for _, n := range notices {
		s.logger.Info("attachment rejected", "reason", n.Message)
	}

	return viewOf(w), notices
}

func (s *Service) RemoveFile(sessionKey string, index int) (WizardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wizard(sessionKey)

	if err := w.Draft.RemoveFile(index); err != nil {
		return viewOf(w), err
	}
	return viewOf(w), nil
}

// Submit performs the terminal transition. Success resets the wizard;
// failure preserves the draft and step so nothing the user typed is lost.
// Exactly one request is made — retrying is the user's decision.
func (s *Service) Submit(ctx context.Context, sessionKey, credential string) (WizardView, internal.Notice, error) {
	s.mu.Lock()
	w := s.wizard(sessionKey)
	if !w.CanSubmit() {
		view := viewOf(w)
		s.mu.Unlock()
		return view, internal.ErrorNotice("complete all required steps before submitting"),
			internal.NewValidationError("draft is not ready to submit", internal.ErrCodeStepIncomplete)
	}

	submission := backend.IdeaSubmission{
		Title:       w.Draft.Title,
		Description: w.Draft.Description,
		Files:       make([]backend.AttachmentUpload, len(w.Draft.Files)),
	}
	for i, f := range w.Draft.Files {
		submission.Files[i] = backend.AttachmentUpload{
			Filename:  f.Filename,
			MediaType: f.MediaType,
			Content:   f.Content,
		}
	}
	s.mu.Unlock()

	// The network call happens outside the lock; the wizard may only be
	// touched by this session's own handlers, which are serialized.
	if err := s.client.CreateIdea(ctx, credential, submission); err != nil {
		s.logger.Error("idea submission failed", "error", err)
		return s.View(sessionKey), internal.ErrorNotice("Failed to submit idea"), err
	}

	s.mu.Lock()
	w = s.wizard(sessionKey)
	w.CompleteSubmit()
	view := viewOf(w)
	s.mu.Unlock()

	s.logger.Info("idea submitted", "title", submission.Title, "files", len(submission.Files))
	if s.bus != nil {
		s.bus.Publish(ctx, events.NewIdeaSubmittedEvent(submission.Title, len(submission.Files), sessionKey))
	}

	return view, internal.SuccessNotice("Idea submitted successfully!"), nil
}

// Drop discards a session's draft, used on logout.
func (s *Service) Drop(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, sessionKey)
}
