// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/toolhatch-backend/internal/config"
	"github.com/javajoker/toolhatch-backend/internal/models"
)

type NotificationService struct {
	config *config.Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{
		config: config,
		send:   smtp.SendMail,
	}
}

func (s *NotificationService) SendPaymentConfirmation(user *models.User, order *models.Order) error {
	tpl := s.getEmailTemplate("payment_confirmation")

	currency := ""
	if order.PayCurrency != nil {
		currency = *order.PayCurrency
	}
	data := map[string]interface{}{
		"Username":     user.Username,
		"OrderID":      order.ID,
		"TotalAmount":  order.TotalAmount,
		"PayCurrency":  currency,
		"ItemCount":    len(order.Items),
		"OrderURL":     fmt.Sprintf("%s/orders/%d", s.config.Frontend.BaseURL, order.ID),
		"PlatformName": s.config.Email.FromName,
	}

	subject := fmt.Sprintf(tpl.Subject, order.ID)
	body, err := s.renderTemplate(tpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email would be sent")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return s.send(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"payment_confirmation": {
			Subject: "Payment received for order #%d",
			Body: `<h2>Thanks for your purchase, {{.Username}}!</h2>
<p>We received your payment for order #{{.OrderID}} ({{.ItemCount}} item(s), total ${{.TotalAmount}}{{if .PayCurrency}}, paid in {{.PayCurrency}}{{end}}).</p>
<p>Your downloads are ready: <a href="{{.OrderURL}}">view order</a></p>
<p>The {{.PlatformName}} team</p>`,
		},
	}

	return templates[templateType]
}
