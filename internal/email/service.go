package email

import (
	"fmt"
	"net/smtp"

	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
		send: smtp.SendMail,
	}
}

// SendOrderConfirmation mails the customer a receipt for o
func (s *Service) SendOrderConfirmation(o order.Order) error {
	subject := fmt.Sprintf("Order Confirmed: %s", o.ID)
	return s.deliver(o.Email, subject, BuildOrderConfirmationBody(o))
}

// SendStatusUpdate tells the customer their order moved to a new status
func (s *Service) SendStatusUpdate(o order.Order) error {
	subject := fmt.Sprintf("Order %s is now %s", o.ID, o.Status)
	return s.deliver(o.Email, subject, BuildStatusUpdateBody(o))
}

func (s *Service) deliver(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}
