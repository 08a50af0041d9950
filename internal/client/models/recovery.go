package models

// Flow identifies one of the two account recovery flows.
type Flow string

const (
	FlowNone          Flow = ""
	FlowFirstAccess   Flow = "first-access"
	FlowPasswordReset Flow = "password-reset"
)

// CodeRequest is the body of a .../request call.
type CodeRequest struct {
	CNPJ  string `json:"cnpj"`
	Email string `json:"email"`
}

// RecoveryDraft is the pending state of a recovery confirmation form.
type RecoveryDraft struct {
	CNPJ        string `json:"cnpj"`
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}
