// Package agent orchestrates the public operations against the Számla
// Agent service: validation, document building, sending, response handling
// and PDF persistence.
package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	idecimal "github.com/billfold/szamlazz-go/internal/decimal"
	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/project"
	"github.com/billfold/szamlazz-go/internal/storage"
	"github.com/billfold/szamlazz-go/internal/transport"
	"github.com/billfold/szamlazz-go/internal/validation"
	"github.com/billfold/szamlazz-go/internal/wire"
)

// Response headers carrying the created invoice's key figures.
const (
	headerInvoiceNumber      = "szlahu_szamlaszam"
	headerNetTotal           = "szlahu_nettovegosszeg"
	headerGrossTotal         = "szlahu_bruttovegosszeg"
	headerOutstandingAmount  = "szlahu_kintlevoseg"
	headerCustomerAccountURL = "szlahu_vevoifiokurl"
)

// Agent performs the remote operations. It holds no mutable state and is
// safe for concurrent use; every call builds its own document and owns its
// own response lifecycle.
type Agent struct {
	cfg    Config
	sender transport.Sender
	store  storage.Store
	rules  *validation.Validator
	logger *zap.Logger
}

// Option adjusts an Agent under construction.
type Option func(*Agent)

// WithSender replaces the HTTP transport, for tests or custom stacks.
func WithSender(s transport.Sender) Option {
	return func(a *Agent) { a.sender = s }
}

// WithStore replaces the PDF persistence sink.
func WithStore(s storage.Store) Option {
	return func(a *Agent) { a.store = s }
}

// WithLogger installs a structured logger; the default is a no-op.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// New validates cfg, applies defaults and builds an Agent.
func New(cfg Config, opts ...Option) (*Agent, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}

	a := &Agent{
		cfg:    cfg,
		rules:  validation.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sender == nil {
		a.sender = transport.NewHTTPSender(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second, a.logger)
	}
	if a.store == nil && cfg.Storage.AutoSave {
		a.store = storage.NewDiskStore(cfg.Storage.BasePath)
	}
	return a, nil
}

// call sends one document and classifies the response. A non-nil error
// means the remote side rejected the call; the response is still returned
// for callers that need the raw body.
func (a *Agent) call(ctx context.Context, op wire.Operation, document []byte) (*transport.Response, error) {
	action, ok := wire.ActionFor(op)
	if !ok {
		return nil, fmt.Errorf("no action registered for %v", op)
	}

	resp, err := a.sender.Send(ctx, action.FieldName, document)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action.Root, err)
	}

	if wire.Failed(resp.StatusCode, resp.Header, resp.Body) {
		return resp, a.classify(resp)
	}
	return resp, nil
}

// classify turns a failed response into its RemoteError kind. This path
// always yields an error, never a silent fallthrough.
func (a *Agent) classify(resp *transport.Response) error {
	code, message := wire.Classify(resp.StatusCode, resp.Header, resp.Body)
	if code == 0 {
		return &model.RemoteError{
			Kind:       model.KindCommon,
			Message:    message,
			HTTPStatus: resp.StatusCode,
			Raw:        resp.Body,
		}
	}
	return model.NewRemoteError(code, message, resp.StatusCode, resp.Body)
}

// asNotFound rewrites a fetch failure into the identifier-specific
// not-found kind when the body matches the service's unknown-number wording.
func asNotFound(err error, resp *transport.Response, kind model.ErrorKind) error {
	if err == nil || resp == nil {
		return err
	}
	if wire.LooksLikeUnknownNumber(resp.Body) {
		return &model.RemoteError{
			Kind:       kind,
			Message:    "unknown number",
			HTTPStatus: resp.StatusCode,
			Raw:        resp.Body,
		}
	}
	return err
}

// UploadResult is the outcome of an invoice or proforma upload.
type UploadResult struct {
	InvoiceNumber      string
	NetTotal           decimal.Decimal
	GrossTotal         decimal.Decimal
	OutstandingAmount  decimal.Decimal
	CustomerAccountURL string
	PDF                []byte
}

// UploadInvoice creates an invoice (or proforma) on the remote ledger.
func (a *Agent) UploadInvoice(ctx context.Context, inv *model.Invoice) (*UploadResult, error) {
	if err := a.rules.Invoice(inv); err != nil {
		return nil, err
	}
	document, err := a.invoiceDocument(inv)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, wire.OpUploadInvoice, document)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{
		InvoiceNumber:      resp.Header.Get(headerInvoiceNumber),
		NetTotal:           idecimal.FromWire(resp.Header.Get(headerNetTotal)),
		GrossTotal:         idecimal.FromWire(resp.Header.Get(headerGrossTotal)),
		OutstandingAmount:  idecimal.FromWire(resp.Header.Get(headerOutstandingAmount)),
		CustomerAccountURL: resp.Header.Get(headerCustomerAccountURL),
	}

	// With response version 2 the body is an <xmlszamlavalasz> document
	// that embeds the PDF as base64.
	if a.cfg.DownloadPDF {
		if node, perr := wire.Parse(resp.Body); perr == nil {
			result.PDF = decodePDF(node.Value("pdf"))
			if result.InvoiceNumber == "" {
				result.InvoiceNumber = node.Value("szamlaszam")
			}
		}
	}

	a.persistPDF(result.InvoiceNumber, result.PDF)
	a.logger.Info("invoice uploaded", zap.String("invoice_number", result.InvoiceNumber))
	return result, nil
}

// CancelResult is the outcome of an invoice cancellation. PDFFetchErr
// carries the failure of the optional follow-up PDF fetch; the storno
// itself already succeeded when it is set.
type CancelResult struct {
	StornoInvoiceNumber string
	PDF                 []byte
	PDFFetchErr         error
}

// CancelInvoice issues a storno for an existing invoice. When PDF download
// and auto-save are both on, a second, independent call fetches the storno
// invoice's PDF; its failure does not undo the cancellation.
func (a *Agent) CancelInvoice(ctx context.Context, cr *model.CancelInvoice) (*CancelResult, error) {
	if err := a.rules.CancelInvoice(cr); err != nil {
		return nil, err
	}
	document, err := a.cancelInvoiceDocument(cr)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, wire.OpCancelInvoice, document)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{StornoInvoiceNumber: resp.Header.Get(headerInvoiceNumber)}

	if a.cfg.DownloadPDF && a.cfg.Storage.AutoSave && result.StornoInvoiceNumber != "" {
		fetched, ferr := a.FetchInvoice(ctx, result.StornoInvoiceNumber)
		if ferr != nil {
			result.PDFFetchErr = ferr
		} else {
			result.PDF = fetched.PDF
		}
	}

	a.logger.Info("invoice cancelled", zap.String("storno_number", result.StornoInvoiceNumber))
	return result, nil
}

// FetchInvoice retrieves an invoice by its number. An identifier the remote
// side does not know fails with the invoice-not-found kind.
func (a *Agent) FetchInvoice(ctx context.Context, invoiceNumber string) (*model.FetchedInvoice, error) {
	if err := a.rules.InvoiceNumber(invoiceNumber); err != nil {
		return nil, err
	}
	return a.fetchInvoice(ctx, invoiceNumber, "")
}

// FetchInvoiceByOrderNumber retrieves an invoice by the order number it was
// created with.
func (a *Agent) FetchInvoiceByOrderNumber(ctx context.Context, orderNumber string) (*model.FetchedInvoice, error) {
	if orderNumber == "" {
		return nil, &model.ValidationError{Violations: []model.FieldViolation{
			{Field: "orderNumber", Rule: "required", Message: "orderNumber fails rule \"required\""},
		}}
	}
	return a.fetchInvoice(ctx, "", orderNumber)
}

func (a *Agent) fetchInvoice(ctx context.Context, invoiceNumber, orderNumber string) (*model.FetchedInvoice, error) {
	document, err := a.fetchInvoiceDocument(invoiceNumber, orderNumber)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, wire.OpFetchInvoice, document)
	if err != nil {
		return nil, asNotFound(err, resp, model.KindInvoiceNotFound)
	}

	node, err := wire.Parse(resp.Body)
	if err != nil {
		// An unparseable fetch body means the service did not return an
		// invoice document for this identifier.
		return nil, &model.RemoteError{
			Kind:       model.KindInvoiceNotFound,
			Message:    "response is not an invoice document",
			HTTPStatus: resp.StatusCode,
			Raw:        resp.Body,
		}
	}
	fetched, err := project.Invoice(node)
	if err != nil {
		return nil, &model.RemoteError{
			Kind:       model.KindInvoiceNotFound,
			Message:    err.Error(),
			HTTPStatus: resp.StatusCode,
			Raw:        resp.Body,
		}
	}

	a.persistPDF(fetched.Head.InvoiceNumber, fetched.PDF)
	return fetched, nil
}

// FetchInvoiceIfExists is the not-found-tolerant variant: it maps the
// invoice-not-found kind to (nil, nil) and propagates every other error.
func (a *Agent) FetchInvoiceIfExists(ctx context.Context, invoiceNumber string) (*model.FetchedInvoice, error) {
	inv, err := a.FetchInvoice(ctx, invoiceNumber)
	if model.IsNotFound(err) {
		return nil, nil
	}
	return inv, err
}

// FetchInvoiceByOrderNumberIfExists maps not-found to (nil, nil).
func (a *Agent) FetchInvoiceByOrderNumberIfExists(ctx context.Context, orderNumber string) (*model.FetchedInvoice, error) {
	inv, err := a.FetchInvoiceByOrderNumber(ctx, orderNumber)
	if model.IsNotFound(err) {
		return nil, nil
	}
	return inv, err
}

// DeleteProforma removes a proforma invoice from the remote ledger.
func (a *Agent) DeleteProforma(ctx context.Context, invoiceNumber string) error {
	if err := a.rules.InvoiceNumber(invoiceNumber); err != nil {
		return err
	}
	document, err := a.deleteProformaDocument(invoiceNumber)
	if err != nil {
		return err
	}
	_, err = a.call(ctx, wire.OpDeleteProforma, document)
	return err
}

// UploadReceipt creates a receipt on the remote ledger and returns its
// projection.
func (a *Agent) UploadReceipt(ctx context.Context, rec *model.Receipt) (*model.FetchedReceipt, error) {
	if err := a.rules.Receipt(rec); err != nil {
		return nil, err
	}
	document, err := a.receiptDocument(rec)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, wire.OpUploadReceipt, document)
	if err != nil {
		return nil, err
	}
	return a.projectReceiptResponse(resp)
}

// CancelReceipt issues a storno for a receipt and returns the storno
// receipt's projection.
func (a *Agent) CancelReceipt(ctx context.Context, receiptNumber string) (*model.FetchedReceipt, error) {
	if err := a.rules.ReceiptNumber(receiptNumber); err != nil {
		return nil, err
	}
	document, err := a.cancelReceiptDocument(receiptNumber)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, wire.OpCancelReceipt, document)
	if err != nil {
		return nil, err
	}
	return a.projectReceiptResponse(resp)
}

// FetchReceipt retrieves a receipt by number; unknown numbers fail with the
// receipt-not-found kind.
func (a *Agent) FetchReceipt(ctx context.Context, receiptNumber string) (*model.FetchedReceipt, error) {
	if err := a.rules.ReceiptNumber(receiptNumber); err != nil {
		return nil, err
	}
	document, err := a.fetchReceiptDocument(receiptNumber)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, wire.OpFetchReceipt, document)
	if err != nil {
		return nil, asNotFound(err, resp, model.KindReceiptNotFound)
	}

	node, err := wire.Parse(resp.Body)
	if err != nil {
		return nil, &model.RemoteError{
			Kind:       model.KindReceiptNotFound,
			Message:    "response is not a receipt document",
			HTTPStatus: resp.StatusCode,
			Raw:        resp.Body,
		}
	}
	fetched, err := project.Receipt(node)
	if err != nil {
		return nil, &model.RemoteError{
			Kind:       model.KindReceiptNotFound,
			Message:    err.Error(),
			HTTPStatus: resp.StatusCode,
			Raw:        resp.Body,
		}
	}

	a.persistPDF(fetched.Head.ReceiptNumber, fetched.PDF)
	return fetched, nil
}

// FetchReceiptIfExists maps the receipt-not-found kind to (nil, nil).
func (a *Agent) FetchReceiptIfExists(ctx context.Context, receiptNumber string) (*model.FetchedReceipt, error) {
	rec, err := a.FetchReceipt(ctx, receiptNumber)
	if model.IsNotFound(err) {
		return nil, nil
	}
	return rec, err
}

// QueryTaxPayer looks up a Hungarian tax payer by the first 8 characters of
// its tax identifier.
func (a *Agent) QueryTaxPayer(ctx context.Context, taxID string) (*model.TaxPayerInfo, error) {
	if err := a.rules.TaxNumber(taxID); err != nil {
		return nil, err
	}
	document, err := a.taxPayerDocument(taxID)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, wire.OpQueryTaxPayer, document)
	if err != nil {
		return nil, err
	}
	node, err := wire.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	return project.TaxPayer(node)
}

func (a *Agent) projectReceiptResponse(resp *transport.Response) (*model.FetchedReceipt, error) {
	node, err := wire.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	fetched, err := project.Receipt(node)
	if err != nil {
		return nil, err
	}
	a.persistPDF(fetched.Head.ReceiptNumber, fetched.PDF)
	return fetched, nil
}

func decodePDF(encoded string) []byte {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	return data
}

// persistPDF saves a fetched PDF when auto-save is enabled. Best-effort:
// a storage failure is logged, not propagated.
func (a *Agent) persistPDF(name string, pdf []byte) {
	if !a.cfg.Storage.AutoSave || a.store == nil || len(pdf) == 0 || name == "" {
		return
	}
	path := name + ".pdf"
	if err := storage.WritePDF(a.store, path, pdf); err != nil {
		a.logger.Warn("pdf persistence failed", zap.String("path", path), zap.Error(err))
	}
}
