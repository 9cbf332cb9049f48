package auth

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
