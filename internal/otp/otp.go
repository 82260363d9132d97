package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/Srujan253/Gupshup/internal/storage"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Service struct {
	Store  storage.OTPStore
	Digits int
	TTL    time.Duration

	SendGridAPIKey string
	From           string
}

func randomDigits(n int) (string, error) {
	res := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		res[i] = byte('0' + v.Int64())
	}
	return string(res), nil
}

// Generate stores a fresh code for (email, purpose) and mails it. A resend
// goes through here too; the previous code is replaced.
func (s *Service) Generate(email, purpose string) (string, error) {
	code, err := randomDigits(s.Digits)
	if err != nil {
		return "", err
	}

	if err := s.Store.SaveOTP(email, code, purpose, time.Now().UTC().Add(s.TTL)); err != nil {
		return "", err
	}

	if err := s.sendMail(email, purpose, code); err != nil {
		return "", fmt.Errorf("failed to send OTP email: %w", err)
	}
	return code, nil
}

// Verify consumes the code; a code verifies at most once.
func (s *Service) Verify(email, purpose, code string) (bool, error) {
	return s.Store.ConsumeOTP(email, purpose, code)
}

func (s *Service) sendMail(email, purpose, code string) error {
	from := mail.NewEmail("Gupshup", s.From)
	to := mail.NewEmail("", email)
	subject := "Your Gupshup verification code"
	body := fmt.Sprintf("Your verification code for %s is: %s", purpose, code)

	msg := mail.NewSingleEmail(from, subject, to, body, body)
	client := sendgrid.NewSendClient(s.SendGridAPIKey)
	resp, err := client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}
