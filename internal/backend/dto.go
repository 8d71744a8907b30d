package backend

// Wire shapes for the idea service. The service is an external collaborator;
// these mirror its contract exactly and are never extended locally.

// GoogleUser is the identity-exchange request body, built from the decoded
// Google ID token claims.
type GoogleUser struct {
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// ExchangedUser is the profile returned by the identity exchange.
type ExchangedUser struct {
	GoogleID      string   `json:"google_id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	Role          string   `json:"role,omitempty"`
	DepartmentIDs []string `json:"department_ids,omitempty"`
}

// AuthResponse is the identity-exchange response: the bearer credential plus
// the profile it authorizes.
type AuthResponse struct {
	Token string        `json:"token"`
	User  ExchangedUser `json:"user"`
}

// IdeaRecord is a server-owned idea snapshot. The gateway never mutates it.
type IdeaRecord struct {
	ID                   string   `json:"id"`
	UserID               string   `json:"user_id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	SupportingDocuments  []string `json:"supporting_documents"`
	SubmissionDate       string   `json:"submission_date"`
	Status               string   `json:"status"`
	DepartmentID         string   `json:"department_id"`
	DepartmentName       string   `json:"department_name"`
	UpdatedAt            string   `json:"updatedAt"`
}

type listIdeasResponse struct {
	Success bool         `json:"success"`
	Data    []IdeaRecord `json:"data"`
}

// AttachmentUpload is one file in an idea-create request.
type AttachmentUpload struct {
	Filename  string
	MediaType string
	Content   []byte
}

// IdeaSubmission is the idea-create request payload.
type IdeaSubmission struct {
	Title       string
	Description string
	Files       []AttachmentUpload
}
