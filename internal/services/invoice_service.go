package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"classifiedsBack/internal/models"
)

const displayDateLayout = "January 2, 2006"

// InvoiceArchive stores a rendered invoice and returns its URL.
type InvoiceArchive interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type DispatchResult struct {
	MessageID  string `json:"messageId"`
	To         string `json:"to"`
	ArchiveURL string `json:"archiveUrl,omitempty"`
}

type RenderedInvoice struct {
	Subject string
	HTML    string
	Text    string
}

type InvoiceService struct {
	Orders   OrderStore
	Mailer   Mailer
	Archive  InvoiceArchive
	SiteName string
	Location *time.Location
	Logger   *slog.Logger
}

func NewInvoiceService(orders OrderStore, mailer Mailer, archive InvoiceArchive, siteName string, loc *time.Location, logger *slog.Logger) *InvoiceService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &InvoiceService{
		Orders:   orders,
		Mailer:   mailer,
		Archive:  archive,
		SiteName: siteName,
		Location: loc,
		Logger:   logger,
	}
}

// SendInvoice renders and e-mails the invoice of an order. It does not retry.
func (s *InvoiceService) SendInvoice(ctx context.Context, orderID int) (DispatchResult, error) {
	logger := s.logger().With("op", "SendInvoice", "orderId", orderID)

	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return DispatchResult{}, err
	}
	to := strings.TrimSpace(order.Buyer.Email)
	if to == "" {
		return DispatchResult{}, fmt.Errorf("%w: order %d has no buyer email", models.ErrDispatch, order.ID)
	}

	inv, err := s.RenderInvoice(order)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("%w: render invoice: %v", models.ErrDispatch, err)
	}

	sent, err := s.Mailer.Send(ctx, Email{
		To:      []string{to},
		Subject: inv.Subject,
		HTML:    inv.HTML,
		Text:    inv.Text,
		Tags:    map[string]string{"category": "invoice", "order_id": strconv.Itoa(order.ID)},
	})
	if err != nil {
		return DispatchResult{}, fmt.Errorf("%w: %v", models.ErrDispatch, err)
	}
	result := DispatchResult{MessageID: sent.MessageID, To: to}

	if s.Archive != nil {
		key := fmt.Sprintf("invoices/%d/invoice-%d.html", order.CreatedAt.Year(), order.ID)
		url, err := s.Archive.Upload(ctx, key, []byte(inv.HTML), "text/html; charset=utf-8")
		if err != nil {
			logger.Error("invoice archive failed", "err", err)
		} else {
			result.ArchiveURL = url
		}
	}

	logger.Info("invoice sent", "to", to, "messageId", sent.MessageID)
	return result, nil
}

type invoiceView struct {
	SiteName      string
	OrderID       int
	BuyerName     string
	Company       string
	AddressLines  []string
	Email         string
	Phone         string
	PackageName   string
	Amount        string
	Currency      string
	PaymentStatus string
	PaymentMethod string
	OrderDate     string
}

func (s *InvoiceService) RenderInvoice(order models.Order) (RenderedInvoice, error) {
	method := order.PaymentMethod
	if method == "" {
		method = "N/A"
	}
	view := invoiceView{
		SiteName:      s.siteName(),
		OrderID:       order.ID,
		BuyerName:     order.Buyer.Name,
		Company:       order.Buyer.Company,
		AddressLines:  order.Buyer.AddressLines(),
		Email:         order.Buyer.Email,
		Phone:         order.Buyer.Phone,
		PackageName:   order.PackageName,
		Amount:        order.Amount.StringFixed(2),
		Currency:      strings.ToUpper(order.Currency),
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: method,
		OrderDate:     order.CreatedAt.In(s.location()).Format(displayDateLayout),
	}

	var html, text bytes.Buffer
	if err := templates.invoiceHTML.Execute(&html, view); err != nil {
		return RenderedInvoice{}, err
	}
	if err := templates.invoiceText.Execute(&text, view); err != nil {
		return RenderedInvoice{}, err
	}
	return RenderedInvoice{
		Subject: fmt.Sprintf("Your invoice for order #%d", order.ID),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

type reminderView struct {
	SiteName   string
	BuyerName  string
	Title      string
	ExpiryDate string
}

// SendReminder notifies the buyer of an advertisement about an expiring or
// expired boost. A missing order or e-mail skips the notification and reports
// false without an error.
func (s *InvoiceService) SendReminder(ctx context.Context, ad models.Advertisement, order *models.Order, kind string) (bool, error) {
	logger := s.logger().With("op", "SendReminder", "advertisementId", ad.ID, "kind", kind)
	if !models.ValidReminderKind(kind) {
		return false, fmt.Errorf("%w: unknown reminder kind %q", models.ErrValidation, kind)
	}
	if order == nil {
		logger.Info("reminder skipped: no order for advertisement")
		return false, nil
	}
	to := strings.TrimSpace(order.Buyer.Email)
	if to == "" {
		logger.Info("reminder skipped: order has no buyer email", "orderId", order.ID)
		return false, nil
	}

	view := reminderView{
		SiteName:   s.siteName(),
		BuyerName:  order.Buyer.Name,
		Title:      ad.Title,
		ExpiryDate: "N/A",
	}
	if ad.BoostedUntil != nil {
		view.ExpiryDate = ad.BoostedUntil.In(s.location()).Format(displayDateLayout)
	}

	var (
		subject string
		html    bytes.Buffer
		text    bytes.Buffer
		err     error
	)
	switch kind {
	case models.ReminderExpiringSoon:
		subject = fmt.Sprintf("Your boost for \"%s\" expires tomorrow", ad.Title)
		err = errors.Join(
			templates.expiringHTML.Execute(&html, view),
			templates.expiringText.Execute(&text, view),
		)
	case models.ReminderExpired:
		subject = fmt.Sprintf("Your boost for \"%s\" has expired", ad.Title)
		err = errors.Join(
			templates.expiredHTML.Execute(&html, view),
			templates.expiredText.Execute(&text, view),
		)
	}
	if err != nil {
		return false, fmt.Errorf("%w: render reminder: %v", models.ErrDispatch, err)
	}

	sent, err := s.Mailer.Send(ctx, Email{
		To:      []string{to},
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
		Tags:    map[string]string{"category": kind, "advertisement_id": strconv.Itoa(ad.ID)},
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrDispatch, err)
	}
	logger.Info("reminder sent", "to", to, "messageId", sent.MessageID)
	return true, nil
}

func (s *InvoiceService) siteName() string {
	if strings.TrimSpace(s.SiteName) == "" {
		return "Classifieds"
	}
	return s.SiteName
}

func (s *InvoiceService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *InvoiceService) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

type invoiceTemplates struct {
	invoiceHTML  *htmltemplate.Template
	invoiceText  *texttemplate.Template
	expiringHTML *htmltemplate.Template
	expiringText *texttemplate.Template
	expiredHTML  *htmltemplate.Template
	expiredText  *texttemplate.Template
}

var templates = mustParseInvoiceTemplates()

func mustParseInvoiceTemplates() invoiceTemplates {
	return invoiceTemplates{
		invoiceHTML:  htmltemplate.Must(htmltemplate.New("invoice.html").Parse(invoiceHTMLTemplate)),
		invoiceText:  texttemplate.Must(texttemplate.New("invoice.txt").Parse(invoiceTextTemplate)),
		expiringHTML: htmltemplate.Must(htmltemplate.New("expiring.html").Parse(expiringHTMLTemplate)),
		expiringText: texttemplate.Must(texttemplate.New("expiring.txt").Parse(expiringTextTemplate)),
		expiredHTML:  htmltemplate.Must(htmltemplate.New("expired.html").Parse(expiredHTMLTemplate)),
		expiredText:  texttemplate.Must(texttemplate.New("expired.txt").Parse(expiredTextTemplate)),
	}
}
