package agent_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/szamlazz-go/internal/agent"
	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/transport"
)

// scriptedSender plays back canned responses and records what was sent.
type scriptedSender struct {
	t         *testing.T
	responses []*transport.Response
	fields    []string
	documents []string
}

func (s *scriptedSender) Send(ctx context.Context, fieldName string, document []byte) (*transport.Response, error) {
	s.fields = append(s.fields, fieldName)
	s.documents = append(s.documents, string(document))
	if len(s.responses) == 0 {
		s.t.Fatalf("unexpected Send call with field %s", fieldName)
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

type memStore struct {
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *memStore) Write(path string, data []byte) error {
	m.files[path] = data
	return nil
}

func response(status int, header http.Header, body string) *transport.Response {
	if header == nil {
		header = http.Header{}
	}
	return &transport.Response{StatusCode: status, Header: header, Body: []byte(body)}
}

func newTestAgent(t *testing.T, cfg agent.Config, sender *scriptedSender) *agent.Agent {
	t.Helper()
	if cfg.Credentials == (agent.Credentials{}) {
		cfg.Credentials = agent.Credentials{AgentKey: "key"}
	}
	a, err := agent.New(cfg, agent.WithSender(sender), agent.WithStore(newMemStore()))
	require.NoError(t, err)
	return a
}

func testInvoice() *model.Invoice {
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
			Quantity:     decimal.NewFromInt(2),
			QuantityUnit: "db",
			NetUnitPrice: decimal.NewFromInt(100),
			TaxRate:      model.TaxRatePercent(decimal.NewFromInt(27)),
		}},
	}
}

func TestUploadInvoice(t *testing.T) {
	header := http.Header{}
	header.Set("szlahu_szamlaszam", "TST-2024-1")
	header.Set("szlahu_nettovegosszeg", "200")
	header.Set("szlahu_bruttovegosszeg", "254")
	header.Set("szlahu_kintlevoseg", "254")
	header.Set("szlahu_vevoifiokurl", "https://www.szamlazz.hu/szamla/fiok")

	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, header, "<xmlszamlavalasz><sikeres>true</sikeres></xmlszamlavalasz>"),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	result, err := a.UploadInvoice(context.Background(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "TST-2024-1", result.InvoiceNumber)
	assert.True(t, result.NetTotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, result.GrossTotal.Equal(decimal.NewFromInt(254)))
	assert.True(t, result.OutstandingAmount.Equal(decimal.NewFromInt(254)))
	assert.Equal(t, "https://www.szamlazz.hu/szamla/fiok", result.CustomerAccountURL)

	require.Len(t, sender.fields, 1)
	assert.Equal(t, "action-xmlagentxmlfile", sender.fields[0])

	doc := sender.documents[0]
	assert.Contains(t, doc, "<szamlaagentkulcs>key</szamlaagentkulcs>")
	assert.Contains(t, doc, "<megnevezes><![CDATA[Widget]]></megnevezes>")
	assert.Contains(t, doc, "<mennyiseg>2.000</mennyiseg>")
	assert.Contains(t, doc, "<nettoErtek>200.000</nettoErtek>")
	assert.Contains(t, doc, "<afaErtek>54.000</afaErtek>")
	assert.Contains(t, doc, "<bruttoErtek>254.000</bruttoErtek>")
	assert.Contains(t, doc, "<keltDatum>2024-03-01</keltDatum>")

	// The schema is order-sensitive: blocks and header dates must appear in
	// their fixed sequence.
	assertOrdered(t, doc, "<beallitasok>", "<fejlec>", "<elado>", "<vevo>", "<tetelek>")
	assertOrdered(t, doc, "<keltDatum>", "<teljesitesDatum>", "<fizetesiHataridoDatum>", "<fizmod>", "<penznem>", "<szamlaNyelve>")
}

func assertOrdered(t *testing.T, doc string, markers ...string) {
	t.Helper()
	last := -1
	for _, m := range markers {
		idx := strings.Index(doc, m)
		require.GreaterOrEqual(t, idx, 0, "missing %s", m)
		assert.Greater(t, idx, last, "%s out of order", m)
		last = idx
	}
}

func TestUploadInvoiceValidationShortCircuits(t *testing.T) {
	sender := &scriptedSender{t: t}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.UploadInvoice(context.Background(), &model.Invoice{})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Empty(t, sender.fields, "no network call for an invalid invoice")
}

func TestUploadInvoiceRemoteFailure(t *testing.T) {
	header := http.Header{}
	header.Set("szlahu_error_code", "54")
	header.Set("szlahu_error", "a számla nem jött létre")

	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, header, ""),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.UploadInvoice(context.Background(), testInvoice())
	require.Error(t, err)

	var re *model.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, model.KindCannotCreateInvoice, re.Kind)
	assert.Equal(t, 54, re.Code)
	assert.Equal(t, "a számla nem jött létre", re.Message)
}

func TestUploadInvoiceFailedLogin(t *testing.T) {
	body := "<xmlszamlavalasz><sikeres>false</sikeres><hibauzenet>Sikertelen bejelentkezés.</hibauzenet></xmlszamlavalasz>"
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.UploadInvoice(context.Background(), testInvoice())
	require.Error(t, err)
	assert.True(t, model.IsAuthentication(err))
}

func TestUploadInvoicePDFFromBody(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	body := "<xmlszamlavalasz><sikeres>true</sikeres><szamlaszam>TST-2024-9</szamlaszam><pdf>" +
		base64.StdEncoding.EncodeToString(pdf) + "</pdf></xmlszamlavalasz>"
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{DownloadPDF: true}, sender)

	result, err := a.UploadInvoice(context.Background(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "TST-2024-9", result.InvoiceNumber)
	assert.Equal(t, pdf, result.PDF)

	assert.Contains(t, sender.documents[0], "<szamlaLetoltes>true</szamlaLetoltes>")
	assert.Contains(t, sender.documents[0], "<valaszVerzio>2</valaszVerzio>")
}

const minimalInvoiceXML = `<szamla><alap><szamlaszam>TST-2024-1</szamlaszam><penznem>HUF</penznem></alap></szamla>`

func TestFetchInvoice(t *testing.T) {
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, minimalInvoiceXML),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	inv, err := a.FetchInvoice(context.Background(), "TST-2024-1")
	require.NoError(t, err)
	assert.Equal(t, "TST-2024-1", inv.Head.InvoiceNumber)

	assert.Equal(t, "action-szamla_agent_xml", sender.fields[0])
	assert.Contains(t, sender.documents[0], "<szamlaszam>TST-2024-1</szamlaszam>")
	assert.NotContains(t, sender.documents[0], "rendSzam")
}

func TestFetchInvoiceByOrderNumber(t *testing.T) {
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, minimalInvoiceXML),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.FetchInvoiceByOrderNumber(context.Background(), "ORD-42")
	require.NoError(t, err)
	assert.Contains(t, sender.documents[0], "<rendSzam>ORD-42</rendSzam>")
	assert.NotContains(t, sender.documents[0], "szamlaszam")

	_, err = a.FetchInvoiceByOrderNumber(context.Background(), "")
	assert.True(t, model.IsValidation(err))
}

func TestFetchInvoiceUnknownNumber(t *testing.T) {
	body := "<xmlszamlavalasz><sikeres>false</sikeres><hibauzenet>ismeretlen számlaszám</hibauzenet></xmlszamlavalasz>"
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.FetchInvoice(context.Background(), "TST-NOPE")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))

	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindInvoiceNotFound, kind)
}

func TestFetchInvoiceUnparseableBody(t *testing.T) {
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, "this is not an invoice document"),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.FetchInvoice(context.Background(), "TST-NOPE")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestFetchInvoiceIfExists(t *testing.T) {
	body := "<xmlszamlavalasz><sikeres>false</sikeres><hibauzenet>ismeretlen számlaszám</hibauzenet></xmlszamlavalasz>"
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	inv, err := a.FetchInvoiceIfExists(context.Background(), "TST-NOPE")
	assert.NoError(t, err)
	assert.Nil(t, inv)
}

func TestFetchInvoiceByOrderNumberIfExists(t *testing.T) {
	body := "<xmlszamlavalasz><sikeres>false</sikeres><hibauzenet>ismeretlen számlaszám</hibauzenet></xmlszamlavalasz>"
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	inv, err := a.FetchInvoiceByOrderNumberIfExists(context.Background(), "ORD-NOPE")
	assert.NoError(t, err)
	assert.Nil(t, inv)
}

func TestFetchInvoiceIfExistsPropagatesOtherErrors(t *testing.T) {
	header := http.Header{}
	header.Set("szlahu_error_code", "3")
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, header, ""),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.FetchInvoiceIfExists(context.Background(), "TST-1")
	require.Error(t, err)
	assert.True(t, model.IsAuthentication(err))
}

func TestCancelInvoice(t *testing.T) {
	header := http.Header{}
	header.Set("szlahu_szamlaszam", "TST-2024-1-S")
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, header, "<xmlszamlavalasz><sikeres>true</sikeres></xmlszamlavalasz>"),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	result, err := a.CancelInvoice(context.Background(), &model.CancelInvoice{InvoiceNumber: "TST-2024-1"})
	require.NoError(t, err)
	assert.Equal(t, "TST-2024-1-S", result.StornoInvoiceNumber)
	assert.NoError(t, result.PDFFetchErr)

	require.Len(t, sender.fields, 1)
	assert.Equal(t, "action-szamla_agent_st", sender.fields[0])
	assert.Contains(t, sender.documents[0], "<tipus>SS</tipus>")
	assert.NotContains(t, sender.documents[0], "<vevo>")
}

func TestCancelInvoiceWithNotification(t *testing.T) {
	header := http.Header{}
	header.Set("szlahu_szamlaszam", "TST-2024-1-S")
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, header, ""),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.CancelInvoice(context.Background(), &model.CancelInvoice{
		InvoiceNumber: "TST-2024-1",
		NotifyByEmail: true,
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, sender.documents[0], "<email>buyer@example.com</email>")
}

func TestCancelInvoicePDFFetchFailureIsSoft(t *testing.T) {
	header := http.Header{}
	header.Set("szlahu_szamlaszam", "TST-2024-1-S")
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, header, ""),
		response(500, nil, "temporary failure"),
	}}
	a := newTestAgent(t, agent.Config{
		DownloadPDF: true,
		Storage:     agent.StorageConfig{AutoSave: true},
	}, sender)

	result, err := a.CancelInvoice(context.Background(), &model.CancelInvoice{InvoiceNumber: "TST-2024-1"})
	require.NoError(t, err, "the storno itself succeeded")
	assert.Equal(t, "TST-2024-1-S", result.StornoInvoiceNumber)
	assert.Error(t, result.PDFFetchErr)
	assert.Len(t, sender.fields, 2)
}

func TestDeleteProforma(t *testing.T) {
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, "<xmlszamladbkdelvalasz><sikeres>true</sikeres></xmlszamladbkdelvalasz>"),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	err := a.DeleteProforma(context.Background(), "D-TST-2024-1")
	require.NoError(t, err)
	assert.Equal(t, "action-szamla_agent_dijbekero_torlese", sender.fields[0])
	assert.Contains(t, sender.documents[0], "<szamlaszam>D-TST-2024-1</szamlaszam>")
}

const receiptBodyXML = `<xmlnyugtavalasz><sikeres>true</sikeres><nyugta>
<alap><nyugtaszam>NYGTA-2024-1</nyugtaszam><kelt>2024-04-01</kelt></alap>
</nyugta></xmlnyugtavalasz>`

func TestUploadReceipt(t *testing.T) {
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, receiptBodyXML),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

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
	fetched, err := a.UploadReceipt(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "NYGTA-2024-1", fetched.Head.ReceiptNumber)

	assert.Equal(t, "action-szamla_agent_nyugta_create", sender.fields[0])
	assert.Contains(t, sender.documents[0], "<elotag>NYGTA</elotag>")
}

func TestUploadReceiptValidationShortCircuits(t *testing.T) {
	sender := &scriptedSender{t: t}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.UploadReceipt(context.Background(), &model.Receipt{})
	assert.True(t, model.IsValidation(err))
	assert.Empty(t, sender.fields)
}

func TestCancelReceipt(t *testing.T) {
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, receiptBodyXML),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	fetched, err := a.CancelReceipt(context.Background(), "NYGTA-2024-1")
	require.NoError(t, err)
	assert.Equal(t, "NYGTA-2024-1", fetched.Head.ReceiptNumber)
	assert.Equal(t, "action-szamla_agent_nyugta_storno", sender.fields[0])
	assert.Contains(t, sender.documents[0], "<nyugtaszam>NYGTA-2024-1</nyugtaszam>")
}

func TestFetchReceiptNotFound(t *testing.T) {
	body := "<xmlnyugtavalasz><sikeres>false</sikeres><hibakod>339</hibakod><hibauzenet>nincs ilyen nyugta</hibauzenet></xmlnyugtavalasz>"
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.FetchReceipt(context.Background(), "NYGTA-NOPE")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))

	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindReceiptNotFound, kind)
}

func TestFetchReceiptIfExists(t *testing.T) {
	body := "<xmlnyugtavalasz><sikeres>false</sikeres><hibakod>339</hibakod></xmlnyugtavalasz>"
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	rec, err := a.FetchReceiptIfExists(context.Background(), "NYGTA-NOPE")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestQueryTaxPayer(t *testing.T) {
	body := `<QueryTaxpayerResponse><taxpayerValidity>true</taxpayerValidity>
<taxpayerName>Example Zrt.</taxpayerName><taxNumber>12345678</taxNumber></QueryTaxpayerResponse>`
	sender := &scriptedSender{t: t, responses: []*transport.Response{
		response(200, nil, body),
	}}
	a := newTestAgent(t, agent.Config{}, sender)

	info, err := a.QueryTaxPayer(context.Background(), "12345678-2-42")
	require.NoError(t, err)
	assert.True(t, info.Valid)
	assert.Equal(t, "Example Zrt.", info.Name)

	assert.Equal(t, "action-szamla_agent_taxpayer", sender.fields[0])
	assert.Contains(t, sender.documents[0], "<torzsszam>12345678</torzsszam>")
}

func TestQueryTaxPayerRejectsShortID(t *testing.T) {
	sender := &scriptedSender{t: t}
	a := newTestAgent(t, agent.Config{}, sender)

	_, err := a.QueryTaxPayer(context.Background(), "1234")
	assert.True(t, model.IsValidation(err))
	assert.Empty(t, sender.fields)
}
