package server

import (
	"github.com/shopspring/decimal"

	"github.com/billfold/szamlazz-go/internal/model"
)

// InvoiceRequest is the JSON shape for creating an invoice or proforma.
type InvoiceRequest struct {
	IssueDate       string `json:"issue_date" binding:"required"`
	FulfillmentDate string `json:"fulfillment_date" binding:"required"`
	PaymentDeadline string `json:"payment_deadline" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
	Currency        string `json:"currency" binding:"required"`
	Language        string `json:"language" binding:"required"`
	Comment         string `json:"comment"`
	OrderNumber     string `json:"order_number"`
	Prefix          string `json:"prefix"`
	Proforma        bool   `json:"proforma"`

	Customer CustomerRequest   `json:"customer" binding:"required"`
	Items    []LineItemRequest `json:"items" binding:"required,min=1"`
}

// CustomerRequest is the JSON shape of the buying party.
type CustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	City       string `json:"city" binding:"required"`
	Address    string `json:"address" binding:"required"`
	Email      string `json:"email"`
	SendEmail  bool   `json:"send_email"`
	TaxNumber  string `json:"tax_number"`
}

// LineItemRequest is the JSON shape of one sold item.
type LineItemRequest struct {
	Name         string `json:"name" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`
	QuantityUnit string `json:"quantity_unit" binding:"required"`
	NetUnitPrice string `json:"net_unit_price" binding:"required"`
	TaxRate      string `json:"tax_rate" binding:"required"`
	Comment      string `json:"comment"`
}

// ReceiptRequest is the JSON shape for creating a receipt.
type ReceiptRequest struct {
	Prefix        string            `json:"prefix" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	Currency      string            `json:"currency" binding:"required"`
	Comment       string            `json:"comment"`
	CallID        string            `json:"call_id"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1"`
	Payments      []PaymentRequest  `json:"payments"`
}

// PaymentRequest is one recorded payment on a receipt.
type PaymentRequest struct {
	Method  string `json:"method" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
	Comment string `json:"comment"`
}

// CancelRequest is the JSON shape for cancelling an invoice.
type CancelRequest struct {
	NotifyByEmail bool   `json:"notify_by_email"`
	CustomerEmail string `json:"customer_email"`
	EmailSubject  string `json:"email_subject"`
	EmailBody     string `json:"email_body"`
}

func (r *InvoiceRequest) toModel() (*model.Invoice, error) {
	issue, err := model.ParseDate(r.IssueDate)
	if err != nil {
		return nil, err
	}
	fulfillment, err := model.ParseDate(r.FulfillmentDate)
	if err != nil {
		return nil, err
	}
	deadline, err := model.ParseDate(r.PaymentDeadline)
	if err != nil {
		return nil, err
	}

	inv := &model.Invoice{
		Header: model.InvoiceHeader{
			IssueDate:       issue,
			FulfillmentDate: fulfillment,
			PaymentDeadline: deadline,
			PaymentMethod:   model.PaymentMethod(r.PaymentMethod),
			Currency:        r.Currency,
			Language:        r.Language,
			Comment:         r.Comment,
			OrderNumber:     r.OrderNumber,
			Prefix:          r.Prefix,
		},
		Customer: model.Customer{
			Name:       r.Customer.Name,
			PostalCode: r.Customer.PostalCode,
			City:       r.Customer.City,
			Address:    r.Customer.Address,
			Email:      r.Customer.Email,
			SendEmail:  r.Customer.SendEmail,
			TaxNumber:  r.Customer.TaxNumber,
		},
		Proforma: r.Proforma,
	}
	for _, item := range r.Items {
		li, err := item.toModel()
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, li)
	}
	return inv, nil
}

func (r *LineItemRequest) toModel() (model.LineItem, error) {
	qty, err := decimal.NewFromString(r.Quantity)
	if err != nil {
		return model.LineItem{}, err
	}
	unitPrice, err := decimal.NewFromString(r.NetUnitPrice)
	if err != nil {
		return model.LineItem{}, err
	}
	return model.LineItem{
		Name:         r.Name,
		Quantity:     qty,
		QuantityUnit: r.QuantityUnit,
		NetUnitPrice: unitPrice,
		TaxRate:      model.ParseTaxRate(r.TaxRate),
		Comment:      r.Comment,
	}, nil
}

func (r *ReceiptRequest) toModel() (*model.Receipt, error) {
	rec := &model.Receipt{
		Header: model.ReceiptHeader{
			Prefix:        r.Prefix,
			PaymentMethod: model.PaymentMethod(r.PaymentMethod),
			Currency:      r.Currency,
			Comment:       r.Comment,
			CallID:        r.CallID,
		},
	}
	for _, item := range r.Items {
		li, err := item.toModel()
		if err != nil {
			return nil, err
		}
		rec.Items = append(rec.Items, li)
	}
	for _, p := range r.Payments {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			return nil, err
		}
		rec.Payments = append(rec.Payments, model.PaymentEntry{
			Method:  model.PaymentMethod(p.Method),
			Amount:  amount,
			Comment: p.Comment,
		})
	}
	return rec, nil
}
