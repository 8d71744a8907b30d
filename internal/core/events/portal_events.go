package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserSignedIn  = "session.signed_in"
	EventTypeUserSignedOut = "session.signed_out"
	EventTypeIdeaSubmitted = "idea.submitted"
)

type UserSignedInEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func NewUserSignedInEvent(userID, email, role string) *UserSignedInEvent {
	return &UserSignedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserSignedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
				"role":    role,
			},
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
}

type UserSignedOutEvent struct {
	BaseEvent
	SessionKey string `json:"session_key"`
}

func NewUserSignedOutEvent(sessionKey string) *UserSignedOutEvent {
	return &UserSignedOutEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserSignedOut,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_key": sessionKey,
			},
		},
		SessionKey: sessionKey,
	}
}

type IdeaSubmittedEvent struct {
	BaseEvent
	Title      string `json:"title"`
	FileCount  int    `json:"file_count"`
	SessionKey string `json:"session_key"`
}

func NewIdeaSubmittedEvent(title string, fileCount int, sessionKey string) *IdeaSubmittedEvent {
	return &IdeaSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeIdeaSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"title":       title,
				"file_count":  fileCount,
				"session_key": sessionKey,
			},
		},
		Title:      title,
		FileCount:  fileCount,
		SessionKey: sessionKey,
	}
}
