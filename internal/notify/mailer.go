package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/sony/gobreaker/v2"

	"example.com/storefront/pkg/models"
)

// Mailer sends transactional mail over SMTP. Every send is best-effort: the
// caller logs failures and moves on, so a dead relay can never fail a
// committed order. The circuit breaker stops the app from burning a socket
// per request while the relay is down.
type Mailer struct {
	addr    string
	from    string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewMailer(addr, from string) *Mailer {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "smtp",
		Timeout: 30 * time.Second,
	})
	return &Mailer{addr: addr, from: from, breaker: breaker}
}

func (m *Mailer) send(to, subject, html string) error {
	msg := "From: Storefront <" + m.from + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n" +
		html

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
	})
	return err
}

func (m *Mailer) Welcome(user *models.User) error {
	html := fmt.Sprintf(`
        <h2>Welcome %s!</h2>
        <p>Thank you for registering on our platform.</p>
        <p>Your email: %s</p>
        <p>Enjoy shopping!</p>
    `, user.FirstName, user.Email)
	return m.send(user.Email, "Welcome to Storefront", html)
}

func (m *Mailer) OrderConfirmation(email string, order *models.Order) error {
	html := fmt.Sprintf(`
        <h2>Order Confirmation</h2>
        <p>Your order #%s has been placed successfully!</p>
        <p>Total Amount: $%.2f</p>
        <p>Status: %s</p>
    `, order.ID.Hex(), order.TotalAmount, order.Status)
	return m.send(email, "Order Placed Successfully", html)
}

func (m *Mailer) StatusUpdate(user *models.User, order *models.Order) error {
	html := fmt.Sprintf(`
        <h2>Order Status Update</h2>
        <p>Hello %s,</p>
        <p>Your order #%s status has been updated to: <strong>%s</strong></p>
        <p>Total Amount: $%.2f</p>
    `, user.FirstName, order.ID.Hex(), order.Status, order.TotalAmount)
	return m.send(user.Email, "Order Status Updated", html)
}

func (m *Mailer) PasswordReset(email, resetURL string) error {
	html := fmt.Sprintf(`
        <h2>Password Reset</h2>
        <p>You requested a password reset. Click the link below to set a new password:</p>
        <p><a href="%s">%s</a></p>
        <p>This link expires in 1 hour. If you didn't request this, ignore this email.</p>
    `, resetURL, resetURL)
	return m.send(email, "Password Reset Request", html)
}
