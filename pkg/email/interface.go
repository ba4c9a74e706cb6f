package email

import "context"

type EmailProvider interface {
	SendEmail(ctx context.Context, request *EmailRequest) (*EmailResponse, error)
}

type EmailRequest struct {
	To       string `json:"to"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTML     bool   `json:"html"`
}

type EmailResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
