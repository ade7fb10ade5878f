package api

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type SignUpRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	School         string `json:"school"`
	RedirectTarget string `json:"redirect_target,omitempty"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
	// ConfirmationRequired is true when the account stays locked until the
	// emailed link is followed.
	ConfirmationRequired bool `json:"confirmation_required"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutResponse struct{}

type WhoAmIRequest struct{}

type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	School string `json:"school"`
}

type CategoriesRequest struct{}

type CategoryInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type CategoriesResponse struct {
	Categories []CategoryInfo `json:"categories"`
}

// ListFilesRequest narrows the caller's school listing. Empty fields are
// ignored.
type ListFilesRequest struct {
	Category          string `json:"category,omitempty"`
	NameContains      string `json:"name_contains,omitempty"`
	ClassCodeContains string `json:"class_code_contains,omitempty"`
}

type ListFilesResponse struct {
	Files []*File `json:"files"`
}

type UploadFileRequest struct {
	Content     []byte `json:"content"`
	FileName    string `json:"file_name"`
	ClassCode   string `json:"class_code"`
	Category    string `json:"category"`
	DisplayName string `json:"display_name"`
}

type UploadFileResponse struct {
	File *File `json:"file"`
}

type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	ClassCode  string    `json:"class_code"`
	UserID     string    `json:"user_id"`
	SchoolName string    `json:"school_name"`
	PublicURL  string    `json:"public_url"`
	Category   string    `json:"category"`
	Rating     *float64  `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
