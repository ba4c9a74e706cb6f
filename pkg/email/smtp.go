package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
}

func NewSMTPProvider(host string, port int, username, password, fromEmail, fromName string) *SMTPProvider {
	return &SMTPProvider{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (p *SMTPProvider) SendEmail(ctx context.Context, request *EmailRequest) (*EmailResponse, error) {
	from := request.From
	if from == "" {
		from = p.fromEmail
	}
	fromName := request.FromName
	if fromName == "" {
		fromName = p.fromName
	}

	contentType := "text/plain; charset=UTF-8"
	if request.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", request.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", request.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
	msg.WriteString("\r\n")
	msg.WriteString(request.Body)

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	auth := smtp.PlainAuth("", p.username, p.password, p.host)

	err := smtp.SendMail(addr, auth, from, []string{request.To}, []byte(msg.String()))
	if err != nil {
		return &EmailResponse{
			Status: "failed",
			Error:  err.Error(),
		}, fmt.Errorf("failed to send email: %w", err)
	}

	return &EmailResponse{Status: "sent"}, nil
}
