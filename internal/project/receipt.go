package project

import (
	"encoding/base64"
	"strings"

	"github.com/billfold/szamlazz-go/internal/decimal"
	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/wire"
)

// Receipt projects the response tree of a receipt operation (root
// <xmlnyugtavalasz> or the embedded <nyugta>) into a FetchedReceipt.
func Receipt(root *wire.Node) (*model.FetchedReceipt, error) {
	nyugta := root.Child("nyugta")
	if nyugta == nil {
		nyugta = root
	}
	alap := nyugta.Child("alap")
	if alap == nil {
		return nil, &model.ParseError{Op: "receipt", Message: "missing alap element"}
	}

	head := model.ReceiptHead{
		ID:                     alap.Value("id"),
		ReceiptNumber:          strings.TrimSpace(alap.Value("nyugtaszam")),
		CallID:                 alap.Value("hivasAzonosito"),
		Type:                   alap.Value("tipus"),
		IsCancelled:            alap.Value("stornozott") == "true",
		CancelledReceiptNumber: alap.Value("stornozottNyugtaszam"),
		CreatedAt:              date(alap, "kelt"),
		PaymentMethod:          alap.Value("fizmod"),
		Currency:               alap.Value("penznem"),
		Comment:                text(alap, "megjegyzes"),
	}

	rec := &model.FetchedReceipt{Head: head}

	if tetelek := nyugta.Child("tetelek"); tetelek != nil {
		for _, t := range tetelek.Seq("tetel") {
			rec.Items = append(rec.Items, lineItem(t))
		}
	}

	if osszegek := nyugta.Child("osszegek"); osszegek != nil {
		rec.Head.TotalSum = decimal.MinorUnits(decimal.FromWire(osszegek.Value("brutto")))
	}

	if kifizetesek := nyugta.Child("kifizetesek"); kifizetesek != nil {
		rec.Payments = payments(kifizetesek)
	}
	rec.Head.TotalPaid, rec.Head.PaidAt = paidTotals(rec.Payments)
	rec.Head.IsPaid = rec.Head.TotalSum == rec.Head.TotalPaid

	if pdf := root.Value("nyugtaPdf"); pdf != "" {
		if data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(pdf)); err == nil {
			rec.PDF = data
		}
	}

	return rec, nil
}

// TaxPayer projects a tax payer query response.
func TaxPayer(root *wire.Node) (*model.TaxPayerInfo, error) {
	info := &model.TaxPayerInfo{
		Valid:     root.Value("taxpayerValidity") == "true",
		Name:      text(root, "taxpayerName"),
		TaxNumber: root.Value("taxNumber"),
	}
	if addr := root.Child("address"); addr != nil {
		info.PostalCode = addr.Value("postalCode")
		info.City = text(addr, "city")
		info.Address = text(addr, "streetAddress")
	}
	return info, nil
}
