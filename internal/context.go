package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	// ContextSessionKey carries the browser session identifier (cookie value).
	ContextSessionKey ctxKey = "sessionKey"
)

func SessionKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if key, ok := ctx.Value(ContextSessionKey).(string); ok {
		return key
	}
	return ""
}

func ContextWithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextSessionKey, key)
}

// Notice is a transient, user-visible message attached to API responses.
// Notices never persist across requests; persistent error states (like a
// failed idea listing) are modeled in the view payload instead.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

func SuccessNotice(message string) Notice {
	return Notice{Level: NoticeSuccess, Message: message}
}

func ErrorNotice(message string) Notice {
	return Notice{Level: NoticeError, Message: message}
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
