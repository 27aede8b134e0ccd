// Package email, transactional email gönderimini soyutlar.
//
// İki katman var:
//   - Transport: tek bir Message'ı sağlayıcıya teslim eder (Resend veya Noop).
//   - Mailer: domain email'lerini (şifre sıfırlama, sipariş onayı, durum
//     değişikliği) kullanıcının dilinde render eder ve Transport'a geçici
//     hatalarda exponential backoff ile tekrar dener.
//
// Service'ler Sender interface'ine bağımlıdır; testlerde sahte Sender verilir.
package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/resend/resend-go/v3"
)

// Message, sağlayıcıdan bağımsız tek bir email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport, tek bir email'i teslim eder.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// resendTransport, Resend API ile gönderen Transport.
type resendTransport struct {
	client *resend.Client
	from   string
}

// NewResendTransport, Resend API client'ı ile Transport oluşturur.
// from: "Pazar <no-reply@alanadi.com>" — Resend'de doğrulanmış domain altında olmalı.
func NewResendTransport(apiKey, from string) Transport {
	return &resendTransport{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (t *resendTransport) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    t.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// NoopTransport, RESEND_API_KEY tanımlı değilken kullanılır: email'i
// göndermez, sadece loglar. Development'ta şifre sıfırlama linki log'dan okunur.
type NoopTransport struct{}

func (NoopTransport) Send(_ context.Context, msg Message) error {
	log.Printf("[email] (noop) to=%s subject=%q", msg.To, msg.Subject)
	return nil
}

// RetryPolicy, teslimat denemelerinin zamanlaması.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy: 1s'den başlayıp 30s'ye kadar açılan aralıklarla 2 dakika dener.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: time.Second,
	MaxInterval:     30 * time.Second,
	MaxElapsedTime:  2 * time.Minute,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	return backoff.WithContext(b, ctx)
}

// deliver, msg'yi policy'ye göre tekrar deneyerek gönderir.
func deliver(ctx context.Context, t Transport, policy RetryPolicy, msg Message) error {
	attempt := 0
	op := func() error {
		attempt++
		err := t.Send(ctx, msg)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Printf("[email] attempt %d to %s failed, retrying in %s: %v", attempt, msg.To, wait, err)
	}

	if err := backoff.RetryNotify(op, policy.backOff(ctx), notify); err != nil {
		return fmt.Errorf("failed to deliver email to %s after %d attempts: %w", msg.To, attempt, err)
	}
	return nil
}
