package api

import "context"

// Client is the transport-agnostic contract of the authentication backend.
type Client interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login. Client accounts carry
// client_id, writer accounts writer_id.
type LoginResponse struct {
	AccessToken         string `json:"access_token"`
	RefreshToken        string `json:"refresh_token"`
	ClientID            string `json:"client_id"`
	WriterID            string `json:"writer_id"`
	UserID              string `json:"user_id"`
	IsPasswordTemporary bool   `json:"is_password_temporary"`
}

// SubjectID returns the client or writer identifier.
func (r *LoginResponse) SubjectID() string {
	if r.ClientID != "" {
		return r.ClientID
	}
	return r.WriterID
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
