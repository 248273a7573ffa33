package mailer

import (
	"fmt"
	"log"

	"github.com/keighl/postmark"
)

// Mailer sends transactional emails through Postmark. A nil Mailer is valid
// and drops everything, mirroring the events publisher.
type Mailer struct {
	client *postmark.Client
	sender string
}

// New returns nil when no token is configured; email is optional.
func New(token, sender string) *Mailer {
	if token == "" {
		return nil
	}
	return &Mailer{
		client: postmark.NewClient(token, ""),
		sender: sender,
	}
}

func (m *Mailer) send(to, subject, body string) {
	if m == nil || to == "" {
		return
	}

	_, err := m.client.SendEmail(postmark.Email{
		From:     m.sender,
		To:       to,
		Subject:  subject,
		TextBody: body,
	})
	if err != nil {
		log.Printf("[MAIL] [ERROR] send to %s failed: %v", to, err)
		return
	}
	log.Printf("[MAIL] [INFO] sent %q to %s", subject, to)
}

func (m *Mailer) SendOrderConfirmation(to, orderID string, totalPrice float64) {
	body := fmt.Sprintf(
		"Thank you for your purchase! Your order (ID: %s) has been placed successfully.\n\nTotal: $%.2f",
		orderID, totalPrice,
	)
	m.send(to, "Order Confirmation", body)
}

func (m *Mailer) SendAdoptionDecision(to, petName, status string) {
	body := fmt.Sprintf("Your adoption request for %s has been %s.", petName, status)
	m.send(to, "Adoption Request Update", body)
}
