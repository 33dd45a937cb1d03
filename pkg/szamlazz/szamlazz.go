// Package szamlazz is the public client for the Számla Agent XML invoicing
// service.
//
// Basic usage:
//
//	client, err := szamlazz.New(szamlazz.Config{
//		Credentials: szamlazz.Credentials{AgentKey: "..."},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := client.UploadInvoice(ctx, &invoice)
//
// Fetch operations come in two flavors: FetchInvoice fails with the
// invoice-not-found error kind for unknown identifiers, while
// FetchInvoiceIfExists returns (nil, nil) for them. Every other error kind
// propagates through both.
package szamlazz

import (
	"github.com/billfold/szamlazz-go/internal/agent"
	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/storage"
	"github.com/billfold/szamlazz-go/internal/transport"
)

// Client performs the remote operations. Safe for concurrent use.
type Client = agent.Agent

// Configuration surface.
type (
	Config        = agent.Config
	Credentials   = agent.Credentials
	StorageConfig = agent.StorageConfig
	Option        = agent.Option
)

// Domain records.
type (
	Invoice         = model.Invoice
	InvoiceHeader   = model.InvoiceHeader
	CancelInvoice   = model.CancelInvoice
	Receipt         = model.Receipt
	ReceiptHeader   = model.ReceiptHeader
	LineItem        = model.LineItem
	PaymentEntry    = model.PaymentEntry
	PaymentMethod   = model.PaymentMethod
	FetchedMerchant = model.FetchedMerchant
	FetchedCustomer = model.FetchedCustomer
	FetchedPayment  = model.FetchedPayment
	Merchant        = model.Merchant
	Customer        = model.Customer
	TaxRate         = model.TaxRate
	Date            = model.Date
	FetchedInvoice  = model.FetchedInvoice
	FetchedReceipt  = model.FetchedReceipt
	InvoiceHead     = model.InvoiceHead
	ReceiptHead     = model.ReceiptHead
	TaxPayerInfo    = model.TaxPayerInfo
	UploadResult    = agent.UploadResult
	CancelResult    = agent.CancelResult
	RemoteError     = model.RemoteError
	ValidationError = model.ValidationError
	ErrorKind       = model.ErrorKind
)

// Collaborator boundaries, for custom transports and PDF sinks.
type (
	Sender   = transport.Sender
	Response = transport.Response
	Store    = storage.Store
)

// New validates cfg, applies defaults and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	return agent.New(cfg, opts...)
}

// Construction options.
var (
	WithSender = agent.WithSender
	WithStore  = agent.WithStore
	WithLogger = agent.WithLogger
)

// Date helpers.
var (
	NewDate   = model.NewDate
	ParseDate = model.ParseDate
	Today     = model.Today
)

// Tax rate constructors.
var (
	TaxRatePercent = model.TaxRatePercent
	TaxRateCode    = model.TaxRateCode
	ParseTaxRate   = model.ParseTaxRate
)

// Error predicates.
var (
	IsNotFound       = model.IsNotFound
	IsAuthentication = model.IsAuthentication
	IsValidation     = model.IsValidation
	KindOf           = model.KindOf
)

// Error kinds, for comparison against KindOf results.
const (
	KindCommon               = model.KindCommon
	KindRemoteMaintenance    = model.KindRemoteMaintenance
	KindAuthentication       = model.KindAuthentication
	KindKeystoreOpening      = model.KindKeystoreOpening
	KindNoXMLFile            = model.KindNoXMLFile
	KindCannotCreateInvoice  = model.KindCannotCreateInvoice
	KindInvoiceSignature     = model.KindInvoiceSignature
	KindInvoiceNotification  = model.KindInvoiceNotification
	KindXMLRead              = model.KindXMLRead
	KindInvalidInvoicePrefix = model.KindInvalidInvoicePrefix
	KindInvalidNetPrice      = model.KindInvalidNetPrice
	KindInvalidVATRate       = model.KindInvalidVATRate
	KindInvalidGrossPrice    = model.KindInvalidGrossPrice
	KindReceiptAlreadyExists = model.KindReceiptAlreadyExists
	KindReceiptNotFound      = model.KindReceiptNotFound
	KindInvoiceNotFound      = model.KindInvoiceNotFound
)
