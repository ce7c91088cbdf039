package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/storelane/storefront-api/models"
)

type Config struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	OperatorEmail string // always copied on order confirmations
}

type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func New(cfg Config) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

var orderTemplate = template.Must(template.New("order").Parse(`<html>
<body>
<h2>Thank you for your order!</h2>
<p>Hi {{.Order.Billing.FullName}}, your order <strong>#{{.Order.ID}}</strong> has been placed successfully.</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Product</th><th>Quantity</th><th>Price</th></tr>
  {{range .Order.Items}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td></tr>
  {{end}}
</table>
<p>Shipping: {{.Order.ShippingCharge}}<br>Total: <strong>{{.Order.Total}}</strong></p>
<p>Shipping to: {{.Order.Shipping.FullName}}, {{.Order.Shipping.Address1}} {{.Order.Shipping.Address2}},
{{.Order.Shipping.City}}, {{.Order.Shipping.State}} {{.Order.Shipping.Zipcode}}, {{.Order.Shipping.Country}}</p>
</body>
</html>`))

// SendOrderConfirmation emails the purchaser and the operator address. An
// order is valid even if this never sends; callers log the error and move on.
func (m *Mailer) SendOrderConfirmation(order models.Order, toEmail string) error {
	subject := fmt.Sprintf("Order Confirmation - Order #%d", order.ID)

	var html bytes.Buffer
	if err := orderTemplate.Execute(&html, map[string]interface{}{"Order": order}); err != nil {
		return fmt.Errorf("render order email: %w", err)
	}

	text := fmt.Sprintf("Your order #%d has been placed successfully.\n\n", order.ID)
	for _, item := range order.Items {
		text += fmt.Sprintf("  %s x%d @ %s\n", item.ProductName, item.Quantity, item.Price)
	}
	text += fmt.Sprintf("\nShipping: %s\nTotal: %s\n", order.ShippingCharge, order.Total)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", toEmail, m.cfg.OperatorEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html.String())

	return m.dialer.DialAndSend(msg)
}

// SendContactMessage relays a contact-form submission to the operator.
func (m *Mailer) SendContactMessage(name, email, subject, message string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("Reply-To", email)
	msg.SetHeader("To", m.cfg.OperatorEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Contact Form Submission from %s: %s", name, subject))
	msg.SetBody("text/plain", fmt.Sprintf("Message from %s:\n\n%s", email, message))

	return m.dialer.DialAndSend(msg)
}

// RenderOrderHTML exposes the confirmation body for previewing.
func RenderOrderHTML(order models.Order) (string, error) {
	var html bytes.Buffer
	if err := orderTemplate.Execute(&html, map[string]interface{}{"Order": order}); err != nil {
		return "", err
	}
	return html.String(), nil
}
