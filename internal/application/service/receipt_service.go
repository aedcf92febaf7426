package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/pkg/apperror"
	"github.com/jkorir/sellpoint-api/pkg/printer"
)

// ReceiptService composes receipt documents from completed sales and renders
// them for a thermal strip or a full-page printout. Amounts are copied from
// the finalized sale; the composer never recomputes a total.
type ReceiptService struct {
	checkout      *CheckoutService
	device        printer.Printer
	header        entity.ReceiptHeader
	currency      string
	defaultLayout entity.ReceiptLayout
}

// NewReceiptService creates a new receipt composer. The header comes from
// business configuration; layout is the device default used when a request
// does not name one.
func NewReceiptService(
	checkout *CheckoutService,
	device printer.Printer,
	header entity.ReceiptHeader,
	currency string,
	layout entity.ReceiptLayout,
) *ReceiptService {
	if !layout.Valid() {
		layout = entity.LayoutThermalStrip
	}
	return &ReceiptService{
		checkout:      checkout,
		device:        device,
		header:        header,
		currency:      currency,
		defaultLayout: layout,
	}
}

// Compose builds the receipt document for the session's last completed sale.
// An empty layout falls back to the configured default; an unknown one is
// rejected.
func (s *ReceiptService) Compose(sessionID uuid.UUID, layout entity.ReceiptLayout) (*entity.ReceiptDocument, error) {
	if layout == "" {
		layout = s.defaultLayout
	}
	if !layout.Valid() {
		return nil, apperror.NewValidationError("Unknown receipt layout: " + string(layout))
	}

	completed, err := s.checkout.LastSale(sessionID)
	if err != nil {
		return nil, err
	}
	return s.composeFrom(completed, layout), nil
}

// ComposeFromSale builds a receipt for an already persisted sale, used for
// reprints from sale history.
func (s *ReceiptService) ComposeFromSale(sale *entity.Sale, layout entity.ReceiptLayout) (*entity.ReceiptDocument, error) {
	if layout == "" {
		layout = s.defaultLayout
	}
	if !layout.Valid() {
		return nil, apperror.NewValidationError("Unknown receipt layout: " + string(layout))
	}

	doc := s.newDocument(sale, layout)
	doc.Cashier = sale.User.Name
	if sale.Customer != nil {
		doc.Customer = sale.Customer.Name
	} else if sale.WalkInName != nil {
		doc.Customer = *sale.WalkInName
	}
	for _, item := range sale.Items {
		doc.Items = append(doc.Items, entity.ReceiptItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: float64(item.UnitPrice) / 100,
			Total:     float64(item.LineTotal) / 100,
		})
	}
	return doc, nil
}

func (s *ReceiptService) composeFrom(completed *CompletedSale, layout entity.ReceiptLayout) *entity.ReceiptDocument {
	sale := completed.Sale
	doc := s.newDocument(sale, layout)
	doc.Cashier = sale.User.Name
	doc.Customer = completed.CustomerName
	for _, line := range completed.Draft.Lines {
		doc.Items = append(doc.Items, entity.ReceiptItem{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: float64(line.UnitPrice) / 100,
			Total:     float64(line.LineTotal()) / 100,
		})
	}
	return doc
}

// newDocument fills everything that comes straight off the sale record.
func (s *ReceiptService) newDocument(sale *entity.Sale, layout entity.ReceiptLayout) *entity.ReceiptDocument {
	doc := &entity.ReceiptDocument{
		Layout:        layout,
		Header:        s.header,
		InvoiceNo:     sale.InvoiceNo,
		Date:          sale.SaleDate.Format("2006-01-02 15:04"),
		PaymentMethod: sale.PaymentMethod.String(),
		SubTotal:      float64(sale.SubTotal) / 100,
		Tax:           float64(sale.Tax) / 100,
		Total:         float64(sale.Total) / 100,
		Paid:          float64(sale.Paid) / 100,
		Due:           float64(sale.Due) / 100,
		Currency:      s.currency,
	}
	if sale.IsCredit && sale.CreditDueDate != nil {
		doc.CreditDueDate = sale.CreditDueDate.Format("2006-01-02")
	}
	return doc
}

// Render produces the printable byte stream for a document. The thermal
// layout carries printer control codes; the full-page layout is plain
// monospace text.
func (s *ReceiptService) Render(doc *entity.ReceiptDocument) ([]byte, error) {
	switch doc.Layout {
	case entity.LayoutThermalStrip:
		return s.renderThermal(doc), nil
	case entity.LayoutFullPage:
		return s.renderFullPage(doc), nil
	default:
		return nil, apperror.NewValidationError("Unknown receipt layout: " + string(doc.Layout))
	}
}

func (s *ReceiptService) renderThermal(doc *entity.ReceiptDocument) []byte {
	d := printer.NewDocument(printer.Width58mm)

	d.SetAlign(printer.AlignCenter)
	d.SetBold(true).SetFontSize(printer.FontDouble)
	d.Text(doc.Header.StoreName)
	d.SetFontSize(printer.FontNormal).SetBold(false)
	if doc.Header.Address != "" {
		d.Text(doc.Header.Address)
	}
	if doc.Header.Phone != "" {
		d.Text("Tel: " + doc.Header.Phone)
	}
	if doc.Header.TaxPIN != "" {
		d.Text("PIN: " + doc.Header.TaxPIN)
	}
	d.SetAlign(printer.AlignLeft)

	d.Separator('-')
	d.KeyValue("Invoice", doc.InvoiceNo)
	d.KeyValue("Date", doc.Date)
	if doc.Cashier != "" {
		d.KeyValue("Served by", doc.Cashier)
	}
	if doc.Customer != "" {
		d.KeyValue("Customer", doc.Customer)
	}
	d.Separator('-')

	for _, item := range doc.Items {
		d.ItemLine(item.Quantity, item.Name, money(item.Total))
	}

	d.Separator('-')
	d.KeyValue("Subtotal", money(doc.SubTotal))
	if doc.Tax > 0 {
		d.KeyValue("Tax", money(doc.Tax))
	}
	d.SetBold(true)
	d.KeyValue("TOTAL "+doc.Currency, money(doc.Total))
	d.SetBold(false)
	d.KeyValue("Paid", money(doc.Paid))
	if doc.Due > 0 {
		d.KeyValue("Due", money(doc.Due))
	}

	d.Separator('-')
	d.KeyValue("Payment", doc.PaymentMethod)
	if doc.CreditDueDate != "" {
		d.KeyValue("Pay by", doc.CreditDueDate)
	}

	d.SetAlign(printer.AlignCenter)
	d.LineFeed()
	d.Text("Thank you for your business!")
	d.FeedLines(3)
	d.Cut()

	return d.Bytes()
}

func (s *ReceiptService) renderFullPage(doc *entity.ReceiptDocument) []byte {
	d := printer.NewTextDocument(printer.WidthA4Col)

	d.SetAlign(printer.AlignCenter)
	d.Text(strings.ToUpper(doc.Header.StoreName))
	if doc.Header.Address != "" {
		d.Text(doc.Header.Address)
	}
	if doc.Header.Phone != "" {
		d.Text("Tel: " + doc.Header.Phone)
	}
	if doc.Header.TaxPIN != "" {
		d.Text("PIN: " + doc.Header.TaxPIN)
	}
	d.SetAlign(printer.AlignLeft)
	d.LineFeed()

	d.Separator('=')
	d.SetAlign(printer.AlignCenter)
	d.Text("SALES RECEIPT")
	d.SetAlign(printer.AlignLeft)
	d.Separator('=')

	d.KeyValue("Invoice no.", doc.InvoiceNo)
	d.KeyValue("Date", doc.Date)
	if doc.Cashier != "" {
		d.KeyValue("Served by", doc.Cashier)
	}
	if doc.Customer != "" {
		d.KeyValue("Customer", doc.Customer)
	}
	d.LineFeed()

	d.Separator('-')
	d.KeyValue("Qty  Item", "Amount")
	d.Separator('-')
	for _, item := range doc.Items {
		d.ItemLine(item.Quantity, item.Name, money(item.Total))
		d.TextF("     @ %s each", money(item.UnitPrice))
	}
	d.Separator('-')

	d.KeyValue("Subtotal", money(doc.SubTotal))
	d.KeyValue("Tax", money(doc.Tax))
	d.KeyValue("TOTAL "+doc.Currency, money(doc.Total))
	d.KeyValue("Paid", money(doc.Paid))
	d.KeyValue("Balance due", money(doc.Due))
	d.LineFeed()

	d.KeyValue("Payment method", doc.PaymentMethod)
	if doc.CreditDueDate != "" {
		d.KeyValue("Payment due by", doc.CreditDueDate)
	}
	d.Separator('=')

	d.SetAlign(printer.AlignCenter)
	d.Text("Thank you for your business!")

	return d.Bytes()
}

// Print composes and sends the session's last receipt to the configured
// printer.
func (s *ReceiptService) Print(sessionID uuid.UUID, layout entity.ReceiptLayout) error {
	doc, err := s.Compose(sessionID, layout)
	if err != nil {
		return err
	}
	data, err := s.Render(doc)
	if err != nil {
		return err
	}
	if err := s.device.Print(data); err != nil {
		return apperror.NewServerError("Failed to print receipt: " + err.Error())
	}
	return nil
}

// TestPrint sends a short alignment page to verify the printer works.
func (s *ReceiptService) TestPrint() error {
	d := printer.NewDocument(printer.Width58mm)
	d.SetAlign(printer.AlignCenter)
	d.SetBold(true)
	d.Text(s.header.StoreName)
	d.SetBold(false)
	d.Text("Printer test page")
	d.Text(time.Now().Format("2006-01-02 15:04:05"))
	d.Separator('-')
	d.SetAlign(printer.AlignLeft)
	d.KeyValue("Status", "OK")
	d.FeedLines(3)
	d.Cut()

	if err := s.device.Print(d.Bytes()); err != nil {
		return apperror.NewServerError("Printer test failed: " + err.Error())
	}
	return nil
}

// Status reports whether the printer device is reachable.
func (s *ReceiptService) Status() map[string]interface{} {
	return map[string]interface{}{
		"connected":      s.device.IsConnected(),
		"default_layout": s.defaultLayout,
	}
}

// money formats a decimal amount with two digits, matching what appears on
// API responses.
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
