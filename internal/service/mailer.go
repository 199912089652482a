package service

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Mailer abstracts the transactional mail provider so tests can swap in a
// recording fake. Both sends embed a plaintext verification token in a link,
// the token never touches the database in that form
type Mailer interface {
	SendRecipientVerification(to, recipientName, recipientID, token string) error
	SendAccountVerification(to, userID, token string) error
}

// SMTPMailer delivers through the configured SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(
			viper.GetString("mail.host"),
			viper.GetInt("mail.port"),
			viper.GetString("mail.sender_address"),
			viper.GetString("mail.password"),
		),
		from: viper.GetString("mail.sender_address"),
	}
}

func (m *SMTPMailer) SendRecipientVerification(to, recipientName, recipientID, token string) error {
	link := fmt.Sprintf("%s/verify-recipient?token=%s&id=%s",
		viper.GetString("host.frontend_url"), token, recipientID)

	body := fmt.Sprintf(`
		<h3>You have been named in a digital will</h3>
		<p>Hi %s,</p>
		<p>Someone listed you as a recipient in their digital will and asked us
		to confirm this address belongs to you.</p>
		<p>Click <a href='%s'>here</a> to confirm. This link will expire in 7 days.</p>
		<p>If you don't know what this is about you can safely ignore this email.</p>
	`, recipientName, link)

	return m.send(to, "Please confirm your email address", body)
}

func (m *SMTPMailer) SendAccountVerification(to, userID, token string) error {
	link := fmt.Sprintf("%s/verify?user_id=%s&token=%s",
		viper.GetString("host.frontend_url"), userID, token)

	body := fmt.Sprintf(
		"Click <a href='%s'>here</a> to verify your account.\n\nThis link will expire in 7 days",
		link)

	return m.send(to, "Verify your email to start using your vault", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	if to == m.from {
		return fmt.Errorf("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail, %w", err)
	}

	return nil
}
