package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/dustin/go-humanize"

	"github.com/akinalp/pazar/pkg/i18n"
)

// Sender, service katmanının kullandığı domain email'leri.
type Sender interface {
	SendPasswordReset(ctx context.Context, to Recipient, token string) error
	SendOrderConfirmation(ctx context.Context, to Recipient, order OrderEmail) error
	SendOrderStatus(ctx context.Context, to Recipient, order OrderEmail) error
}

// Recipient, email alıcısı. Language, kullanıcının tercih ettiği dil.
type Recipient struct {
	Email    string
	Name     string
	Language string
}

// OrderEmail, sipariş email'lerinde gösterilen özet.
// Tutarlar minor unit (kuruş) cinsindendir.
type OrderEmail struct {
	ID          string
	Number      string
	Status      string
	Currency    string
	Lines       []OrderEmailLine
	Subtotal    int64
	ShippingFee int64
	Tax         int64
	Total       int64
}

// OrderEmailLine, sipariş email'indeki tek ürün satırı.
type OrderEmailLine struct {
	Name      string
	Quantity  int
	LineTotal int64
}

// Mailer, Sender'ın Transport + i18n tabanlı implementasyonu.
type Mailer struct {
	transport Transport
	bundle    *i18n.Bundle
	siteName  string
	appURL    string
	policy    RetryPolicy
}

// NewMailer, constructor. appURL linklerin base'idir (sonunda "/" olmamalı).
func NewMailer(transport Transport, bundle *i18n.Bundle, siteName, appURL string, policy RetryPolicy) *Mailer {
	return &Mailer{
		transport: transport,
		bundle:    bundle,
		siteName:  siteName,
		appURL:    appURL,
		policy:    policy,
	}
}

// SendPasswordReset, {appURL}/reset-password?token=... linkli email gönderir.
// Token email'de plaintext bulunur; DB'de sadece SHA256 hash'i tutulur.
func (m *Mailer) SendPasswordReset(ctx context.Context, to Recipient, token string) error {
	loc := m.bundle.Localizer(to.Language)
	site := map[string]string{"site": m.siteName}
	link := m.appURL + "/reset-password?token=" + url.QueryEscape(token)

	data := layoutData{
		Site:       m.siteName,
		Title:      loc.T("email.reset.title"),
		Greeting:   loc.TWithParams("email.greeting", map[string]string{"name": to.Name}),
		Paragraphs: []string{loc.T("email.reset.body")},
		ButtonURL:  link,
		ButtonText: loc.T("email.reset.button"),
		Notes:      []string{loc.T("email.reset.expiry"), link},
		Footer:     loc.TWithParams("email.footer", site),
	}
	return m.send(ctx, to.Email, loc.TWithParams("email.reset.subject", site), data)
}

// SendOrderConfirmation, checkout sonrası sipariş özetini gönderir.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to Recipient, order OrderEmail) error {
	loc := m.bundle.Localizer(to.Language)
	params := map[string]string{"site": m.siteName, "number": order.Number}

	data := layoutData{
		Site:       m.siteName,
		Title:      loc.T("email.orderConfirmation.title"),
		Greeting:   loc.TWithParams("email.greeting", map[string]string{"name": to.Name}),
		Paragraphs: []string{loc.TWithParams("email.orderConfirmation.body", params)},
		ButtonURL:  m.orderURL(order.ID),
		ButtonText: loc.T("email.orderConfirmation.button"),
		Footer:     loc.TWithParams("email.footer", params),
	}
	for _, l := range order.Lines {
		data.Lines = append(data.Lines, row{
			Label: fmt.Sprintf("%d × %s", l.Quantity, l.Name),
			Value: FormatMoney(l.LineTotal, order.Currency),
		})
	}
	data.Totals = []row{
		{Label: loc.T("email.orderConfirmation.subtotal"), Value: FormatMoney(order.Subtotal, order.Currency)},
		{Label: loc.T("email.orderConfirmation.shipping"), Value: FormatMoney(order.ShippingFee, order.Currency)},
		{Label: loc.T("email.orderConfirmation.tax"), Value: FormatMoney(order.Tax, order.Currency)},
		{Label: loc.T("email.orderConfirmation.total"), Value: FormatMoney(order.Total, order.Currency), Strong: true},
	}

	return m.send(ctx, to.Email, loc.TWithParams("email.orderConfirmation.subject", params), data)
}

// SendOrderStatus, sipariş durumu değiştiğinde müşteriyi bilgilendirir.
func (m *Mailer) SendOrderStatus(ctx context.Context, to Recipient, order OrderEmail) error {
	loc := m.bundle.Localizer(to.Language)
	params := map[string]string{
		"site":   m.siteName,
		"number": order.Number,
		"status": loc.T("order.status." + order.Status),
	}

	data := layoutData{
		Site:       m.siteName,
		Title:      loc.T("email.orderStatus.title"),
		Greeting:   loc.TWithParams("email.greeting", map[string]string{"name": to.Name}),
		Paragraphs: []string{loc.TWithParams("email.orderStatus.body", params)},
		ButtonURL:  m.orderURL(order.ID),
		ButtonText: loc.T("email.orderStatus.button"),
		Footer:     loc.TWithParams("email.footer", params),
	}
	return m.send(ctx, to.Email, loc.TWithParams("email.orderStatus.subject", params), data)
}

func (m *Mailer) orderURL(orderID string) string {
	return m.appURL + "/account/orders/" + url.PathEscape(orderID)
}

func (m *Mailer) send(ctx context.Context, to, subject string, data layoutData) error {
	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	return deliver(ctx, m.transport, m.policy, Message{To: to, Subject: subject, HTML: buf.String()})
}

// FormatMoney, minor unit tutarı binlik ayraçlı gösterime çevirir:
// 1234550, "TRY" → "12,345.50 TRY".
func FormatMoney(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%s.%02d %s", sign, humanize.Comma(minor/100), minor%100, currency)
}

type row struct {
	Label  string
	Value  string
	Strong bool
}

type layoutData struct {
	Site       string
	Title      string
	Greeting   string
	Paragraphs []string
	Lines      []row
	Totals     []row
	ButtonURL  string
	ButtonText string
	Notes      []string
	Footer     string
}

// layoutTmpl, tüm email'lerin ortak HTML iskeleti. html/template kullanıcıdan
// gelen değerleri (ürün adı, isim) escape eder.
var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;background-color:#f4f4f5;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" style="padding:40px 0;">
    <tr><td align="center">
      <table width="520" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:40px;">
        <tr><td>
          <h1 style="color:#18181b;font-size:22px;margin:0 0 8px 0;">{{.Site}}</h1>
          <h2 style="color:#27272a;font-size:18px;margin:0 0 24px 0;">{{.Title}}</h2>
          {{if .Greeting}}<p style="color:#3f3f46;font-size:15px;margin:0 0 16px 0;">{{.Greeting}}</p>{{end}}
          {{range .Paragraphs}}<p style="color:#52525b;font-size:15px;line-height:1.6;margin:0 0 16px 0;">{{.}}</p>{{end}}
          {{if .Lines}}
          <table width="100%" cellpadding="4" cellspacing="0" style="margin:0 0 16px 0;border-top:1px solid #e4e4e7;">
            {{range .Lines}}<tr><td style="color:#3f3f46;font-size:14px;">{{.Label}}</td><td align="right" style="color:#3f3f46;font-size:14px;">{{.Value}}</td></tr>{{end}}
          </table>
          {{end}}
          {{if .Totals}}
          <table width="100%" cellpadding="4" cellspacing="0" style="margin:0 0 24px 0;border-top:1px solid #e4e4e7;">
            {{range .Totals}}<tr><td style="color:#52525b;font-size:14px;">{{if .Strong}}<strong>{{.Label}}</strong>{{else}}{{.Label}}{{end}}</td><td align="right" style="color:#18181b;font-size:14px;">{{if .Strong}}<strong>{{.Value}}</strong>{{else}}{{.Value}}{{end}}</td></tr>{{end}}
          </table>
          {{end}}
          {{if .ButtonURL}}
          <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;"><tr>
            <td style="background-color:#ea580c;border-radius:6px;padding:12px 32px;">
              <a href="{{.ButtonURL}}" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">{{.ButtonText}}</a>
            </td>
          </tr></table>
          {{end}}
          {{range .Notes}}<p style="color:#71717a;font-size:13px;line-height:1.6;margin:0 0 12px 0;word-break:break-all;">{{.}}</p>{{end}}
          <p style="color:#a1a1aa;font-size:12px;margin:24px 0 0 0;">{{.Footer}}</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))
