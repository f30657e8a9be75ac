package api

// ErrorResponse is the JSON envelope for error replies.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PrivateMessageRequest is the body of POST /api/v1/messages/private.
type PrivateMessageRequest struct {
	Receiver string `json:"receiver"`
	Message  string `json:"message"`
}

// PrivateMessageResponse reports whether the recipient had a live connection.
type PrivateMessageResponse struct {
	Delivered bool `json:"delivered"`
}
