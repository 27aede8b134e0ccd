package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg/email"
)

// mailTimeout, tek bir email'in (tüm retry'larıyla birlikte) alabileceği süre.
const mailTimeout = 3 * time.Minute

// MailDispatcher, email'leri request'ten bağımsız goroutine'lerde gönderir.
//
// Checkout veya şifre sıfırlama isteği Resend'in cevabını beklemez; gönderim
// hatası loglanır, kullanıcıya dönmez. Wait, graceful shutdown'da (ve
// testlerde) bekleyen gönderimlerin bitmesini bekler.
type MailDispatcher struct {
	sender email.Sender
	wg     sync.WaitGroup
}

// NewMailDispatcher, constructor. sender nil olamaz — email kapalıysa
// NoopTransport'lu bir Mailer verilir.
func NewMailDispatcher(sender email.Sender) *MailDispatcher {
	return &MailDispatcher{sender: sender}
}

// Go, fn'i arka planda çalıştırır. kind sadece log içindir.
func (d *MailDispatcher) Go(kind string, fn func(ctx context.Context, sender email.Sender) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := fn(ctx, d.sender); err != nil {
			log.Printf("[email] %s failed: %v", kind, err)
		}
	}()
}

// Wait, devam eden tüm gönderimler bitene kadar bloklar.
func (d *MailDispatcher) Wait() {
	d.wg.Wait()
}

// recipientOf, kullanıcıdan email alıcısı üretir. İsim olarak display_name
// varsa o, yoksa kullanıcı adı kullanılır.
func recipientOf(u *models.User) email.Recipient {
	name := u.Username
	if u.DisplayName != nil && *u.DisplayName != "" {
		name = *u.DisplayName
	}
	return email.Recipient{Email: u.Email, Name: name, Language: u.Language}
}

// orderEmailOf, siparişi email özetine çevirir.
func orderEmailOf(o *models.Order) email.OrderEmail {
	out := email.OrderEmail{
		ID:          o.ID,
		Number:      o.OrderNumber,
		Status:      string(o.Status),
		Currency:    o.Currency,
		Subtotal:    o.Subtotal,
		ShippingFee: o.ShippingFee,
		Tax:         o.Tax,
		Total:       o.Total,
	}
	for _, it := range o.Items {
		out.Lines = append(out.Lines, email.OrderEmailLine{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}
	return out
}
