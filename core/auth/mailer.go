package auth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// ErrEmailDelivery hides SMTP detail from the caller; the concrete failure
// is logged where it happens.
var ErrEmailDelivery = errors.New("something went wrong sending the authentication email")

const mailFrame = "Subject: %s\r\nTo: %s\r\n\r\n%s"

// Mailer delivers signup verification codes over SMTP with implicit TLS.
type Mailer struct {
	host     string
	port     string
	sender   string
	password string
}

// NewMailer creates a mailer for the configured SMTP account.
func NewMailer(host, port, sender, password string) *Mailer {
	return &Mailer{host: host, port: port, sender: sender, password: password}
}

// SendVerificationCode emails the code to the recipient along with how long
// it stays valid.
func (m *Mailer) SendVerificationCode(recipient, code string, ttl time.Duration) error {
	body := fmt.Sprintf(
		"Thank you for registering with SentiSounds!\n"+
			"You have %d minute(s) to enter this authentication code: %s\n",
		int(ttl.Minutes()), code,
	)
	message := fmt.Sprintf(mailFrame, "Authenticate your SentiSounds Account!", recipient, body)

	if err := m.send(recipient, []byte(message)); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

func (m *Mailer) send(recipient string, message []byte) error {
	addr := net.JoinHostPort(m.host, m.port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.sender, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(m.sender); err != nil {
		return err
	}
	if err := client.Rcpt(recipient); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(message); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
