// Package project walks parsed response trees and produces the typed
// invoice, receipt and tax payer records consumed by callers.
package project

import (
	"encoding/base64"
	"html"
	"strings"

	"github.com/billfold/szamlazz-go/internal/decimal"
	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/wire"
)

const (
	electronicPrefix = "E-"
	prepaymentPrefix = "D-"
)

// text reads a free-text child and decodes HTML entities exactly once.
func text(n *wire.Node, name string) string {
	return html.UnescapeString(n.Value(name))
}

func date(n *wire.Node, name string) model.Date {
	d, err := model.ParseDate(n.Value(name))
	if err != nil {
		return model.Date{}
	}
	return d
}

// Invoice projects the response tree of an invoice fetch (root <szamla>)
// into a FetchedInvoice.
func Invoice(root *wire.Node) (*model.FetchedInvoice, error) {
	alap := root.Child("alap")
	if alap == nil {
		return nil, &model.ParseError{Op: "invoice", Message: "missing alap element"}
	}

	number := strings.TrimSpace(alap.Value("szamlaszam"))
	head := model.InvoiceHead{
		InvoiceNumber:         number,
		IsElectronic:          strings.HasPrefix(number, electronicPrefix),
		IsPrepaymentRequest:   strings.HasPrefix(number, prepaymentPrefix),
		CreatedAt:             date(alap, "kelt"),
		FulfillmentAt:         date(alap, "telj"),
		PaymentDeadline:       date(alap, "fizh"),
		PaymentMethod:         alap.Value("fizmod"),
		Currency:              alap.Value("penznem"),
		Language:              alap.Value("nyelv"),
		Comment:               text(alap, "megjegyzes"),
		ExchangeRateBank:      alap.Value("devizabank"),
		ExchangeRate:          decimal.FromWire(alap.Value("devizaarf")),
		OrderNumber:           text(alap, "rendelesszam"),
		ProFormaInvoiceNumber: alap.Value("dijbekeroszamlaszam"),
	}

	inv := &model.FetchedInvoice{
		Head:     head,
		Merchant: merchant(root.Child("szallito")),
		Customer: customer(root.Child("vevo")),
	}

	if tetelek := root.Child("tetelek"); tetelek != nil {
		for _, t := range tetelek.Seq("tetel") {
			inv.Items = append(inv.Items, lineItem(t))
		}
	}

	if osszegek := root.Child("osszegek"); osszegek != nil {
		inv.Head.TotalSum = decimal.MinorUnits(decimal.FromWire(osszegek.Value("brutto")))
	}

	if kifizetesek := root.Child("kifizetesek"); kifizetesek != nil {
		inv.Payments = payments(kifizetesek)
	}
	inv.Head.TotalPaid, inv.Head.PaidAt = paidTotals(inv.Payments)
	inv.Head.IsPaid = inv.Head.TotalSum == inv.Head.TotalPaid

	if pdf := root.Value("pdf"); pdf != "" {
		if data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(pdf)); err == nil {
			inv.PDF = data
		}
	}

	return inv, nil
}

func merchant(n *wire.Node) model.FetchedMerchant {
	if n == nil {
		return model.FetchedMerchant{}
	}
	m := model.FetchedMerchant{
		Name:        text(n, "nev"),
		TaxNumber:   n.Value("adoszam"),
		Bank:        text(n, "bank"),
		BankAccount: n.Value("bankszamlaszam"),
	}
	if cim := n.Child("cim"); cim != nil {
		m.Country = text(cim, "orszag")
		m.PostalCode = cim.Value("irsz")
		m.City = text(cim, "telepules")
		m.Address = text(cim, "cim")
	}
	return m
}

func customer(n *wire.Node) model.FetchedCustomer {
	if n == nil {
		return model.FetchedCustomer{}
	}
	c := model.FetchedCustomer{
		Name:      text(n, "nev"),
		TaxNumber: n.Value("adoszam"),
		Email:     n.Value("email"),
	}
	if cim := n.Child("cim"); cim != nil {
		c.Country = text(cim, "orszag")
		c.PostalCode = cim.Value("irsz")
		c.City = text(cim, "telepules")
		c.Address = text(cim, "cim")
	}
	return c
}

// lineItem coerces one response item. Numeric fields become decimals; a
// non-numeric tax rate is preserved as its exemption code. Missing totals
// are derived from the unit price and rate.
func lineItem(n *wire.Node) model.LineItem {
	li := model.LineItem{
		Name:         text(n, "nev"),
		Quantity:     decimal.FromWire(n.Value("mennyiseg")),
		QuantityUnit: text(n, "mennyisegiegyseg"),
		NetUnitPrice: decimal.FromWire(n.Value("nettoegysegar")),
		TaxRate:      model.ParseTaxRate(n.Value("afakulcs")),
		NetPrice:     decimal.FromWire(n.Value("netto")),
		TaxValue:     decimal.FromWire(n.Value("afa")),
		GrossPrice:   decimal.FromWire(n.Value("brutto")),
		Comment:      text(n, "megjegyzes"),
	}
	li.Derive()
	return li
}

func payments(n *wire.Node) []model.FetchedPayment {
	var out []model.FetchedPayment
	for _, k := range n.Seq("kifizetes") {
		out = append(out, model.FetchedPayment{
			Date:    date(k, "datum"),
			Title:   text(k, "jogcim"),
			Method:  k.Value("fizetoeszkoz"),
			Amount:  decimal.FromWire(k.Value("osszeg")),
			Comment: text(k, "leiras"),
		})
	}
	return out
}

// paidTotals sums payment amounts into minor units and finds the latest
// payment date. No payments means zero paid and no date.
func paidTotals(entries []model.FetchedPayment) (int64, model.Date) {
	var total int64
	var latest model.Date
	for _, p := range entries {
		total += decimal.MinorUnits(p.Amount)
		if latest.IsZero() || latest.Before(p.Date) {
			latest = p.Date
		}
	}
	return total, latest
}
