// Package validation checks domain models before any network call is made.
// Rule failures surface as model.ValidationError with the per-field rules
// that were violated.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/billfold/szamlazz-go/internal/model"
)

// Validator bundles the rule sets for the mutating operations. Stateless
// and safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator.
func New() *Validator {
	return &Validator{v: validator.New()}
}

type collector struct {
	v          *validator.Validate
	violations []model.FieldViolation
}

func (c *collector) check(field, rule string, value any) {
	if err := c.v.Var(value, rule); err != nil {
		c.violations = append(c.violations, model.FieldViolation{
			Field:   field,
			Rule:    rule,
			Message: fmt.Sprintf("%s fails rule %q", field, rule),
		})
	}
}

func (c *collector) result() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &model.ValidationError{Violations: c.violations}
}

// Invoice validates an uploadable invoice.
func (va *Validator) Invoice(inv *model.Invoice) error {
	c := &collector{v: va.v}
	c.check("header.issueDate", "required", inv.Header.IssueDate.String())
	c.check("header.fulfillmentDate", "required", inv.Header.FulfillmentDate.String())
	c.check("header.paymentDeadline", "required", inv.Header.PaymentDeadline.String())
	c.check("header.paymentMethod", "required", string(inv.Header.PaymentMethod))
	c.check("header.currency", "required", inv.Header.Currency)
	c.check("header.language", "required", inv.Header.Language)
	c.check("customer.name", "required", inv.Customer.Name)
	c.check("customer.postalCode", "required", inv.Customer.PostalCode)
	c.check("customer.city", "required", inv.Customer.City)
	c.check("customer.address", "required", inv.Customer.Address)
	if inv.Customer.Email != "" {
		c.check("customer.email", "email", inv.Customer.Email)
	}
	c.check("items", "min=1", inv.Items)
	for i, item := range inv.Items {
		c.check(fmt.Sprintf("items[%d].name", i), "required", item.Name)
		c.check(fmt.Sprintf("items[%d].quantityUnit", i), "required", item.QuantityUnit)
		c.check(fmt.Sprintf("items[%d].quantity", i), "required,ne=0", item.Quantity.String())
	}
	return c.result()
}

// Receipt validates an uploadable receipt.
func (va *Validator) Receipt(rec *model.Receipt) error {
	c := &collector{v: va.v}
	c.check("header.prefix", "required", rec.Header.Prefix)
	c.check("header.paymentMethod", "required", string(rec.Header.PaymentMethod))
	c.check("header.currency", "required", rec.Header.Currency)
	c.check("items", "min=1", rec.Items)
	for i, item := range rec.Items {
		c.check(fmt.Sprintf("items[%d].name", i), "required", item.Name)
		c.check(fmt.Sprintf("items[%d].quantityUnit", i), "required", item.QuantityUnit)
	}
	return c.result()
}

// CancelInvoice validates an invoice cancellation request.
func (va *Validator) CancelInvoice(cr *model.CancelInvoice) error {
	c := &collector{v: va.v}
	c.check("invoiceNumber", "required", cr.InvoiceNumber)
	if cr.NotifyByEmail {
		c.check("customerEmail", "required,email", cr.CustomerEmail)
	}
	return c.result()
}

// ReceiptNumber validates a receipt identifier argument.
func (va *Validator) ReceiptNumber(number string) error {
	c := &collector{v: va.v}
	c.check("receiptNumber", "required", number)
	return c.result()
}

// InvoiceNumber validates an invoice identifier argument.
func (va *Validator) InvoiceNumber(number string) error {
	c := &collector{v: va.v}
	c.check("invoiceNumber", "required", number)
	return c.result()
}

// TaxNumber validates a tax payer query argument; the query uses the first
// 8 characters, so at least that many must be present.
func (va *Validator) TaxNumber(taxID string) error {
	c := &collector{v: va.v}
	c.check("taxNumber", "required,min=8", taxID)
	return c.result()
}
