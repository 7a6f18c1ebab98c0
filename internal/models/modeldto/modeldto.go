package modeldto

type (
	Payload struct {
		Code      string `json:"code"`
		Timestamp string `json:"timestamp"`
	}
	Cookie struct {
		UserID string `json:"user_id"`
		Hash   string `json:"hash"`
	}
	ValidateRequest struct {
		Code string `json:"code"`
	}
	UserRequest struct {
		UserID string `json:"user_id"`
	}
	CookieValidateRequest struct {
		UserID     string `json:"user_id"`
		CookieHash string `json:"cookie_hash"`
	}
	ValidateResponse struct {
		Validated bool   `json:"validated"`
		UserID    string `json:"user_id,omitempty"`
	}
	CookieGenerateResponse struct {
		Success bool   `json:"success"`
		Cookie  string `json:"cookie,omitempty"`
	}
	CookieValidateResponse struct {
		Success bool `json:"success"`
	}
	PfpResponse struct {
		Success bool   `json:"success"`
		Pfp     string `json:"pfp,omitempty"`
	}
	RegisterRequest struct {
		Login string `json:"login"`
		Email string `json:"email"`
		Pfp   string `json:"pfp,omitempty"`
	}
	RegisterResponse struct {
		UserID string `json:"user_id"`
	}
	IssueResponse struct {
		Payload string `json:"payload"`
	}
)
