package model

import "github.com/shopspring/decimal"

// InvoiceHead is the top-level metadata of a fetched invoice.
type InvoiceHead struct {
	InvoiceNumber         string
	IsElectronic          bool
	IsPrepaymentRequest   bool
	CreatedAt             Date
	FulfillmentAt         Date
	PaymentDeadline       Date
	PaymentMethod         string
	Currency              string
	Language              string
	Comment               string
	ExchangeRateBank      string
	ExchangeRate          decimal.Decimal
	OrderNumber           string
	ProFormaInvoiceNumber string

	// TotalSum and TotalPaid are minor-currency-unit integers so that
	// IsPaid can be an exact equality.
	TotalSum  int64
	TotalPaid int64
	IsPaid    bool
	PaidAt    Date
}

// FetchedMerchant is the selling party as returned by a fetch.
type FetchedMerchant struct {
	Name        string
	TaxNumber   string
	Bank        string
	BankAccount string
	Country     string
	PostalCode  string
	City        string
	Address     string
}

// FetchedCustomer is the buying party as returned by a fetch.
type FetchedCustomer struct {
	Name       string
	TaxNumber  string
	Country    string
	PostalCode string
	City       string
	Address    string
	Email      string
}

// FetchedPayment is one payment row of a fetched invoice or receipt.
type FetchedPayment struct {
	Date    Date
	Title   string
	Method  string
	Amount  decimal.Decimal
	Comment string
}

// FetchedInvoice is the full projection of a fetched invoice.
type FetchedInvoice struct {
	Head     InvoiceHead
	Merchant FetchedMerchant
	Customer FetchedCustomer
	Items    []LineItem
	Payments []FetchedPayment
	PDF      []byte
}

// ReceiptHead is the top-level metadata of a fetched receipt.
type ReceiptHead struct {
	ID                     string
	ReceiptNumber          string
	CallID                 string
	Type                   string
	IsCancelled            bool
	CancelledReceiptNumber string
	CreatedAt              Date
	PaymentMethod          string
	Currency               string
	Comment                string

	TotalSum  int64
	TotalPaid int64
	IsPaid    bool
	PaidAt    Date
}

// FetchedReceipt is the full projection of a fetched receipt.
type FetchedReceipt struct {
	Head     ReceiptHead
	Items    []LineItem
	Payments []FetchedPayment
	PDF      []byte
}

// TaxPayerInfo is the projection of a tax payer query.
type TaxPayerInfo struct {
	Valid      bool
	Name       string
	TaxNumber  string
	PostalCode string
	City       string
	Address    string
}
