package models

// CurrentUser is the profile returned by /auth/me.
type CurrentUser struct {
	ID           int64    `json:"id"`
	CNPJ         string   `json:"cnpj"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	IsAdmin      bool     `json:"is_admin"`
	AccessLevels []string `json:"access_levels,omitempty"`
}

// Session is the authenticated state of the client. A zero Session means
// nobody is logged in.
type Session struct {
	Token       string
	CurrentUser *CurrentUser
}

// IsAuthenticated reports whether a token is held.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the loaded profile belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.CurrentUser != nil && s.CurrentUser.IsAdmin
}

// LoginResponse is the payload of a successful POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
