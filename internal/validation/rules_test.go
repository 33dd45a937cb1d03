package validation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/validation"
)

func validInvoice() *model.Invoice {
	return &model.Invoice{
		Header: model.InvoiceHeader{
			IssueDate:       model.NewDate(2024, 3, 1),
			FulfillmentDate: model.NewDate(2024, 3, 1),
			PaymentDeadline: model.NewDate(2024, 3, 15),
			PaymentMethod:   model.PaymentMethodTransfer,
			Currency:        "HUF",
			Language:        model.LanguageHU,
		},
		Customer: model.Customer{
			Name:       "Buyer Bt.",
			PostalCode: "1111",
			City:       "Budapest",
			Address:    "Fő utca 1.",
		},
		Items: []model.LineItem{{
			Name:         "Widget",
			Quantity:     decimal.NewFromInt(1),
			QuantityUnit: "db",
			NetUnitPrice: decimal.NewFromInt(100),
			TaxRate:      model.TaxRatePercent(decimal.NewFromInt(27)),
		}},
	}
}

func violatedFields(t *testing.T, err error) []string {
	t.Helper()
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := make([]string, len(ve.Violations))
	for i, v := range ve.Violations {
		fields[i] = v.Field
	}
	return fields
}

func TestInvoiceValid(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Invoice(validInvoice()))
}

func TestInvoiceMissingHeaderFields(t *testing.T) {
	v := validation.New()
	inv := validInvoice()
	inv.Header.IssueDate = model.Date{}
	inv.Header.Currency = ""

	err := v.Invoice(inv)
	fields := violatedFields(t, err)
	assert.Contains(t, fields, "header.issueDate")
	assert.Contains(t, fields, "header.currency")
}

func TestInvoiceMissingCustomer(t *testing.T) {
	v := validation.New()
	inv := validInvoice()
	inv.Customer = model.Customer{}

	fields := violatedFields(t, v.Invoice(inv))
	assert.Contains(t, fields, "customer.name")
	assert.Contains(t, fields, "customer.postalCode")
	assert.Contains(t, fields, "customer.city")
	assert.Contains(t, fields, "customer.address")
}

func TestInvoiceBadCustomerEmail(t *testing.T) {
	v := validation.New()
	inv := validInvoice()
	inv.Customer.Email = "not-an-email"

	fields := violatedFields(t, v.Invoice(inv))
	assert.Contains(t, fields, "customer.email")
}

func TestInvoiceNoItems(t *testing.T) {
	v := validation.New()
	inv := validInvoice()
	inv.Items = nil

	fields := violatedFields(t, v.Invoice(inv))
	assert.Contains(t, fields, "items")
}

func TestInvoiceZeroQuantityItem(t *testing.T) {
	v := validation.New()
	inv := validInvoice()
	inv.Items[0].Quantity = decimal.Zero

	fields := violatedFields(t, v.Invoice(inv))
	assert.Contains(t, fields, "items[0].quantity")
}

func TestReceiptRules(t *testing.T) {
	v := validation.New()

	rec := &model.Receipt{
		Header: model.ReceiptHeader{
			Prefix:        "NYGTA",
			PaymentMethod: model.PaymentMethodCash,
			Currency:      "HUF",
		},
		Items: []model.LineItem{{
			Name:         "Coffee",
			Quantity:     decimal.NewFromInt(1),
			QuantityUnit: "db",
			NetUnitPrice: decimal.NewFromInt(787),
			TaxRate:      model.TaxRatePercent(decimal.NewFromInt(27)),
		}},
	}
	assert.NoError(t, v.Receipt(rec))

	rec.Header.Prefix = ""
	rec.Items = nil
	fields := violatedFields(t, v.Receipt(rec))
	assert.Contains(t, fields, "header.prefix")
	assert.Contains(t, fields, "items")
}

func TestCancelInvoiceRules(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.CancelInvoice(&model.CancelInvoice{InvoiceNumber: "TST-1"}))

	err := v.CancelInvoice(&model.CancelInvoice{})
	assert.Contains(t, violatedFields(t, err), "invoiceNumber")

	// E-mail is only required when notification is requested.
	err = v.CancelInvoice(&model.CancelInvoice{InvoiceNumber: "TST-1", NotifyByEmail: true})
	assert.Contains(t, violatedFields(t, err), "customerEmail")

	assert.NoError(t, v.CancelInvoice(&model.CancelInvoice{
		InvoiceNumber: "TST-1",
		NotifyByEmail: true,
		CustomerEmail: "buyer@example.com",
	}))
}

func TestIdentifierRules(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.InvoiceNumber("TST-1"))
	assert.Error(t, v.InvoiceNumber(""))

	assert.NoError(t, v.ReceiptNumber("NYGTA-1"))
	assert.Error(t, v.ReceiptNumber(""))
}

func TestTaxNumberRule(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.TaxNumber("12345678"))
	assert.NoError(t, v.TaxNumber("12345678-2-42"))
	assert.Error(t, v.TaxNumber("1234567"))
	assert.Error(t, v.TaxNumber(""))
}

func TestValidationErrorsAreTyped(t *testing.T) {
	v := validation.New()
	err := v.InvoiceNumber("")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))
}
