package dto

type ChatRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	CustomerID string `json:"customerId" validate:"required"`
	Message    string `json:"message"`
	FileID     string `json:"fileId,omitempty"`
}
