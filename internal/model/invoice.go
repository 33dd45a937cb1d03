// Package model defines the domain records exchanged with the Számla Agent
// service: invoices, receipts, their parties and line items, and the typed
// error taxonomy for failed calls.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the wire token for a payment method. The service accepts
// free-form values; these cover the common ones.
type PaymentMethod string

const (
	PaymentMethodTransfer       PaymentMethod = "átutalás"
	PaymentMethodCash           PaymentMethod = "készpénz"
	PaymentMethodBankCard       PaymentMethod = "bankkártya"
	PaymentMethodCashOnDelivery PaymentMethod = "utánvét"
	PaymentMethodPayPal         PaymentMethod = "PayPal"
)

// Language codes accepted by the service.
const (
	LanguageHU = "hu"
	LanguageEN = "en"
	LanguageDE = "de"
)

// Exemption codes a tax rate may carry instead of a percentage.
const (
	TaxRateExemptTAM  = "TAM"
	TaxRateExemptAAM  = "AAM"
	TaxRateExemptEU   = "EU"
	TaxRateExemptEUK  = "EUK"
	TaxRateExemptMAA  = "MAA"
	TaxRateExemptFAFA = "F.AFA"
	TaxRateExemptKAFA = "K.AFA"
)

// TaxRate is either a numeric percentage or a non-numeric exemption code.
type TaxRate struct {
	rate    decimal.Decimal
	code    string
	numeric bool
}

// TaxRatePercent builds a numeric tax rate.
func TaxRatePercent(rate decimal.Decimal) TaxRate {
	return TaxRate{rate: rate, numeric: true}
}

// TaxRateCode builds an exemption-coded tax rate.
func TaxRateCode(code string) TaxRate {
	return TaxRate{code: code}
}

// ParseTaxRate interprets a wire value: numeric strings become percentages,
// anything else is kept as an exemption code.
func ParseTaxRate(s string) TaxRate {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil {
		return TaxRatePercent(d)
	}
	return TaxRateCode(s)
}

// IsNumeric reports whether the rate is a percentage.
func (r TaxRate) IsNumeric() bool {
	return r.numeric
}

// Percent returns the percentage; zero for exemption codes.
func (r TaxRate) Percent() decimal.Decimal {
	return r.rate
}

// String returns the wire token: the percentage without trailing zeros, or
// the exemption code.
func (r TaxRate) String() string {
	if r.numeric {
		return r.rate.String()
	}
	return r.code
}

// LineItem is one sold item on an invoice or receipt. Quantity and prices are
// exact decimals; NetPrice, TaxValue and GrossPrice may be left zero and
// derived from the unit price and rate.
type LineItem struct {
	Name         string
	Quantity     decimal.Decimal
	QuantityUnit string
	NetUnitPrice decimal.Decimal
	TaxRate      TaxRate
	NetPrice     decimal.Decimal
	TaxValue     decimal.Decimal
	GrossPrice   decimal.Decimal
	Comment      string

	derived bool
}

// Derive fills NetPrice, TaxValue and GrossPrice when they were not supplied.
// For numeric rates: net = round(qty*unit, 2), gross = round(net*(1+rate/100), 2),
// tax = gross - net. Exemption-coded rates carry zero tax. Calling Derive more
// than once is a no-op.
func (li *LineItem) Derive() {
	if li.derived {
		return
	}
	li.derived = true
	if li.NetPrice.IsZero() {
		li.NetPrice = li.Quantity.Mul(li.NetUnitPrice).Round(2)
	}
	if li.GrossPrice.IsZero() {
		if li.TaxRate.IsNumeric() {
			hundred := decimal.NewFromInt(100)
			factor := li.TaxRate.Percent().Div(hundred).Add(decimal.NewFromInt(1))
			li.GrossPrice = li.NetPrice.Mul(factor).Round(2)
		} else {
			li.GrossPrice = li.NetPrice
		}
	}
	if li.TaxValue.IsZero() {
		li.TaxValue = li.GrossPrice.Sub(li.NetPrice)
	}
}

// PaymentEntry is one recorded payment on a receipt.
type PaymentEntry struct {
	Method  PaymentMethod
	Amount  decimal.Decimal
	Comment string
}

// Merchant is the selling party. All fields are optional; unset fields are
// omitted from generated documents.
type Merchant struct {
	Bank         string
	BankAccount  string
	ReplyToEmail string
	EmailSubject string
	EmailBody    string
}

// Customer is the buying party.
type Customer struct {
	Name       string
	Country    string
	PostalCode string
	City       string
	Address    string
	Email      string
	SendEmail  bool
	TaxNumber  string
	Phone      string
	Comment    string
}

// InvoiceHeader is the pre-upload invoice metadata.
type InvoiceHeader struct {
	IssueDate           Date
	FulfillmentDate     Date
	PaymentDeadline     Date
	PaymentMethod       PaymentMethod
	Currency            string
	Language            string
	Comment             string
	ExchangeRateBank    string
	ExchangeRate        decimal.Decimal
	OrderNumber         string
	Prefix              string
	IsPrepaymentRequest bool
	IsFinal             bool
}

// Invoice is the uploadable invoice aggregate. Proforma selects the
// proforma (díjbekérő) document type on upload.
type Invoice struct {
	Header   InvoiceHeader
	Merchant Merchant
	Customer Customer
	Items    []LineItem
	Proforma bool
}

// CancelInvoice describes an invoice cancellation (storno) request.
type CancelInvoice struct {
	InvoiceNumber string
	NotifyByEmail bool
	ReplyToEmail  string
	EmailSubject  string
	EmailBody     string
	CustomerEmail string
}

// ReceiptHeader is the pre-upload receipt metadata.
type ReceiptHeader struct {
	CallID           string
	Prefix           string
	PaymentMethod    PaymentMethod
	Currency         string
	ExchangeRateBank string
	ExchangeRate     decimal.Decimal
	Comment          string
}

// Receipt is the uploadable receipt aggregate.
type Receipt struct {
	Header   ReceiptHeader
	Items    []LineItem
	Payments []PaymentEntry
}
