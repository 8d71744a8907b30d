package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/teamideas/idea-portal/internal"
)

// ClientAPI is the full surface the rest of the gateway uses to reach the
// idea service. Two endpoint families, nothing else.
type ClientAPI interface {
	ExchangeIdentity(ctx context.Context, user GoogleUser) (*AuthResponse, error)
	CurrentUser(ctx context.Context, credential string) (*ExchangedUser, error)
	ListIdeas(ctx context.Context, credential string) ([]IdeaRecord, error)
	CreateIdea(ctx context.Context, credential string, submission IdeaSubmission) error
}

// Client is a thin HTTP dispatcher over the idea service. Every call is a
// single request: no retries, no caching. The caller's credential (when
// given) rides along as a bearer Authorization header.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ExchangeIdentity trades decoded Google claims for an application credential
// and profile via POST /users. Any rejection is an authentication failure,
// not an authorization one: the caller has no credential yet.
func (c *Client) ExchangeIdentity(ctx context.Context, user GoogleUser) (*AuthResponse, error) {
	body, err := json.Marshal(user)
	if err != nil {
		return nil, internal.NewInternalError("failed to marshal identity exchange request", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/users", "", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		c.logger.Error("identity exchange failed upstream", "status", resp.StatusCode)
		return nil, internal.NewServerError("idea service error during identity exchange", internal.ErrCodeBackendError)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Warn("identity exchange rejected", "status", resp.StatusCode)
		return nil, internal.ErrAuthenticationFailed
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return nil, internal.NewServerError("malformed identity exchange response", internal.ErrCodeBackendError).WithCause(err)
	}
	if authResp.Token == "" {
		return nil, internal.ErrAuthenticationFailed
	}

	return &authResp, nil
}

// CurrentUser fetches the profile authorized by an existing credential. Used
// by the session store's refresh path at boot.
func (c *Client) CurrentUser(ctx context.Context, credential string) (*ExchangedUser, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users/me", credential, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.classifyStatus(resp); err != nil {
		return nil, err
	}

	var user ExchangedUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, internal.NewServerError("malformed current-user response", internal.ErrCodeBackendError).WithCause(err)
	}

	return &user, nil
}

// ListIdeas fetches the full idea snapshot list for the reviewer dashboard.
func (c *Client) ListIdeas(ctx context.Context, credential string) ([]IdeaRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/ideas", credential, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.classifyStatus(resp); err != nil {
		return nil, err
	}

	var listResp listIdeasResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, internal.NewServerError("malformed idea list response", internal.ErrCodeBackendError).WithCause(err)
	}
	if !listResp.Success {
		return nil, internal.NewServerError("idea service reported failure", internal.ErrCodeBackendError)
	}

	return listResp.Data, nil
}

// CreateIdea posts a packaged draft as multipart form data: title,
// description, then each file in selection order.
func (c *Client) CreateIdea(ctx context.Context, credential string, submission IdeaSubmission) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("title", submission.Title); err != nil {
		return internal.NewInternalError("failed to encode idea submission", err)
	}
	if err := writer.WriteField("description", submission.Description); err != nil {
		return internal.NewInternalError("failed to encode idea submission", err)
	}

	for _, file := range submission.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(file.Filename)))
		if file.MediaType != "" {
			header.Set("Content-Type", file.MediaType)
		}
		part, err := writer.CreatePart(header)
		if err != nil {
			return internal.NewInternalError("failed to encode idea attachment", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return internal.NewInternalError("failed to encode idea attachment", err)
		}
	}

	if err := writer.Close(); err != nil {
		return internal.NewInternalError("failed to finalize idea submission", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/ideas", credential, writer.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return internal.ErrCredentialExpired
	case resp.StatusCode >= 500:
		return internal.NewServerError("idea service error during submission", internal.ErrCodeBackendError)
	default:
		// 4xx: backend validation rejected the submission.
		message := readErrorMessage(resp.Body)
		if message == "" {
			message = "idea submission rejected"
		}
		return internal.NewValidationError(message, internal.ErrCodeIdeaRejected)
	}
}

func (c *Client) do(ctx context.Context, method, path, credential, contentType string, body io.Reader) (*http.Response, error) {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, internal.NewInternalError("failed to build backend request", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "method", method, "path", path, "error", err)
		return nil, internal.NewNetworkError("idea service unreachable", err)
	}

	return resp, nil
}

// classifyStatus maps upstream statuses for credentialed GET calls onto the
// gateway failure taxonomy. Bodies of failed responses are not interpreted.
func (c *Client) classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return internal.ErrCredentialExpired
	case resp.StatusCode >= 500:
		c.logger.Error("idea service error", "status", resp.StatusCode, "path", resp.Request.URL.Path)
		return internal.NewServerError("idea service error", internal.ErrCodeBackendError)
	default:
		return internal.NewServerError(fmt.Sprintf("unexpected idea service status %d", resp.StatusCode), internal.ErrCodeBackendError)
	}
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, `\"`).Replace(s)
}
