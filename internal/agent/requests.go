package agent

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/wire"
)

// taxNumberQueryLength is how much of the tax identifier the query sends:
// the 8-digit base number without the VAT and county suffixes.
const taxNumberQueryLength = 8

func (a *Agent) credentials(parent *etree.Element) {
	wire.Credentials(parent, a.cfg.Credentials.Username, a.cfg.Credentials.Password, a.cfg.Credentials.AgentKey)
}

// invoiceDocument builds the xmlszamla document. Element order matches the
// target schema; reordering breaks the protocol.
func (a *Agent) invoiceDocument(inv *model.Invoice) ([]byte, error) {
	return wire.Build(wire.OpUploadInvoice, func(root *etree.Element) error {
		settings := root.CreateElement("beallitasok")
		a.credentials(settings)
		wire.Bool(settings, "eszamla", a.cfg.ElectronicInvoice)
		wire.Bool(settings, "szamlaLetoltes", a.cfg.DownloadPDF)
		wire.Text(settings, "valaszVerzio", strconv.Itoa(a.cfg.ResponseVersion))
		wire.TextOpt(settings, "aggregator", a.cfg.Aggregator)

		head := root.CreateElement("fejlec")
		wire.DateEl(head, "keltDatum", inv.Header.IssueDate)
		wire.DateEl(head, "teljesitesDatum", inv.Header.FulfillmentDate)
		wire.DateEl(head, "fizetesiHataridoDatum", inv.Header.PaymentDeadline)
		wire.Text(head, "fizmod", string(inv.Header.PaymentMethod))
		wire.Text(head, "penznem", inv.Header.Currency)
		wire.Text(head, "szamlaNyelve", inv.Header.Language)
		wire.CDataOpt(head, "megjegyzes", inv.Header.Comment)
		wire.TextOpt(head, "arfolyamBank", inv.Header.ExchangeRateBank)
		wire.AmountOpt(head, "arfolyam", inv.Header.ExchangeRate)
		wire.CDataOpt(head, "rendelesSzam", inv.Header.OrderNumber)
		wire.BoolOpt(head, "elolegszamla", inv.Header.IsPrepaymentRequest)
		wire.BoolOpt(head, "vegszamla", inv.Header.IsFinal)
		wire.BoolOpt(head, "dijbekero", inv.Proforma)
		wire.TextOpt(head, "szamlaszamElotag", inv.Header.Prefix)

		merchant := root.CreateElement("elado")
		wire.TextOpt(merchant, "bank", inv.Merchant.Bank)
		wire.TextOpt(merchant, "bankszamlaszam", inv.Merchant.BankAccount)
		wire.TextOpt(merchant, "emailReplyto", inv.Merchant.ReplyToEmail)
		wire.CDataOpt(merchant, "emailTargy", inv.Merchant.EmailSubject)
		wire.CDataOpt(merchant, "emailSzoveg", inv.Merchant.EmailBody)

		customer := root.CreateElement("vevo")
		wire.CData(customer, "nev", inv.Customer.Name)
		wire.TextOpt(customer, "orszag", inv.Customer.Country)
		wire.Text(customer, "irsz", inv.Customer.PostalCode)
		wire.Text(customer, "telepules", inv.Customer.City)
		wire.CData(customer, "cim", inv.Customer.Address)
		wire.TextOpt(customer, "email", inv.Customer.Email)
		wire.Bool(customer, "sendEmail", inv.Customer.SendEmail)
		wire.TextOpt(customer, "adoszam", inv.Customer.TaxNumber)
		wire.TextOpt(customer, "telefonszam", inv.Customer.Phone)
		wire.CDataOpt(customer, "megjegyzes", inv.Customer.Comment)

		items := root.CreateElement("tetelek")
		for i := range inv.Items {
			item := &inv.Items[i]
			item.Derive()
			el := items.CreateElement("tetel")
			wire.CData(el, "megnevezes", item.Name)
			wire.Amount(el, "mennyiseg", item.Quantity)
			wire.Text(el, "mennyisegiEgyseg", item.QuantityUnit)
			wire.Amount(el, "nettoEgysegar", item.NetUnitPrice)
			wire.Text(el, "afakulcs", item.TaxRate.String())
			wire.Amount(el, "nettoErtek", item.NetPrice)
			wire.Amount(el, "afaErtek", item.TaxValue)
			wire.Amount(el, "bruttoErtek", item.GrossPrice)
			wire.CDataOpt(el, "megjegyzes", item.Comment)
		}
		return nil
	})
}

// cancelInvoiceDocument builds the xmlszamlast document. The merchant and
// customer blocks appear only when an e-mail notification is requested.
func (a *Agent) cancelInvoiceDocument(cr *model.CancelInvoice) ([]byte, error) {
	return wire.Build(wire.OpCancelInvoice, func(root *etree.Element) error {
		settings := root.CreateElement("beallitasok")
		a.credentials(settings)
		wire.Bool(settings, "eszamla", a.cfg.ElectronicInvoice)
		wire.Bool(settings, "szamlaLetoltes", a.cfg.DownloadPDF)

		head := root.CreateElement("fejlec")
		wire.Text(head, "szamlaszam", cr.InvoiceNumber)
		wire.DateEl(head, "keltDatum", model.Today())
		wire.Text(head, "tipus", "SS")

		if cr.NotifyByEmail {
			merchant := root.CreateElement("elado")
			wire.TextOpt(merchant, "emailReplyto", cr.ReplyToEmail)
			wire.CDataOpt(merchant, "emailTargy", cr.EmailSubject)
			wire.CDataOpt(merchant, "emailSzoveg", cr.EmailBody)

			customer := root.CreateElement("vevo")
			wire.Text(customer, "email", cr.CustomerEmail)
		}
		return nil
	})
}

// fetchInvoiceDocument builds the xmlszamlaxml document for a lookup by
// invoice number or order number. Exactly one identifier is written.
func (a *Agent) fetchInvoiceDocument(invoiceNumber, orderNumber string) ([]byte, error) {
	return wire.Build(wire.OpFetchInvoice, func(root *etree.Element) error {
		a.credentials(root)
		if invoiceNumber != "" {
			wire.Text(root, "szamlaszam", invoiceNumber)
		} else {
			wire.Text(root, "rendSzam", orderNumber)
		}
		wire.Bool(root, "pdf", a.cfg.DownloadPDF)
		return nil
	})
}

func (a *Agent) deleteProformaDocument(invoiceNumber string) ([]byte, error) {
	return wire.Build(wire.OpDeleteProforma, func(root *etree.Element) error {
		settings := root.CreateElement("beallitasok")
		a.credentials(settings)
		head := root.CreateElement("fejlec")
		wire.Text(head, "szamlaszam", invoiceNumber)
		return nil
	})
}

func (a *Agent) receiptDocument(rec *model.Receipt) ([]byte, error) {
	return wire.Build(wire.OpUploadReceipt, func(root *etree.Element) error {
		settings := root.CreateElement("beallitasok")
		a.credentials(settings)
		wire.Bool(settings, "pdfLetoltes", a.cfg.DownloadPDF)

		head := root.CreateElement("fejlec")
		wire.TextOpt(head, "hivasAzonosito", rec.Header.CallID)
		wire.Text(head, "elotag", rec.Header.Prefix)
		wire.Text(head, "fizmod", string(rec.Header.PaymentMethod))
		wire.Text(head, "penznem", rec.Header.Currency)
		wire.TextOpt(head, "devizabank", rec.Header.ExchangeRateBank)
		wire.AmountOpt(head, "devizaarf", rec.Header.ExchangeRate)
		wire.CDataOpt(head, "megjegyzes", rec.Header.Comment)

		items := root.CreateElement("tetelek")
		for i := range rec.Items {
			item := &rec.Items[i]
			item.Derive()
			el := items.CreateElement("tetel")
			wire.CData(el, "megnevezes", item.Name)
			wire.Amount(el, "mennyiseg", item.Quantity)
			wire.Text(el, "mennyisegiEgyseg", item.QuantityUnit)
			wire.Amount(el, "nettoEgysegar", item.NetUnitPrice)
			wire.Text(el, "afakulcs", item.TaxRate.String())
			wire.Amount(el, "netto", item.NetPrice)
			wire.Amount(el, "afa", item.TaxValue)
			wire.Amount(el, "brutto", item.GrossPrice)
		}

		if len(rec.Payments) > 0 {
			payments := root.CreateElement("kifizetesek")
			for _, p := range rec.Payments {
				el := payments.CreateElement("kifizetes")
				wire.Text(el, "fizetoeszkoz", string(p.Method))
				wire.Amount(el, "osszeg", p.Amount)
				wire.CDataOpt(el, "leiras", p.Comment)
			}
		}
		return nil
	})
}

func (a *Agent) cancelReceiptDocument(receiptNumber string) ([]byte, error) {
	return wire.Build(wire.OpCancelReceipt, func(root *etree.Element) error {
		settings := root.CreateElement("beallitasok")
		a.credentials(settings)
		wire.Bool(settings, "pdfLetoltes", a.cfg.DownloadPDF)
		head := root.CreateElement("fejlec")
		wire.Text(head, "nyugtaszam", receiptNumber)
		return nil
	})
}

func (a *Agent) fetchReceiptDocument(receiptNumber string) ([]byte, error) {
	return wire.Build(wire.OpFetchReceipt, func(root *etree.Element) error {
		settings := root.CreateElement("beallitasok")
		a.credentials(settings)
		wire.Bool(settings, "pdfLetoltes", a.cfg.DownloadPDF)
		head := root.CreateElement("fejlec")
		wire.Text(head, "nyugtaszam", receiptNumber)
		return nil
	})
}

func (a *Agent) taxPayerDocument(taxID string) ([]byte, error) {
	return wire.Build(wire.OpQueryTaxPayer, func(root *etree.Element) error {
		a.credentials(root)
		base := taxID
		if len(base) > taxNumberQueryLength {
			base = base[:taxNumberQueryLength]
		}
		wire.Text(root, "torzsszam", base)
		return nil
	})
}
