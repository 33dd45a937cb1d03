package wire

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/billfold/szamlazz-go/internal/model"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Build assembles one request document for op: XML declaration, namespaced
// root with schema location, then whatever write appends under the root.
// Indentation is cosmetic; element order inside write is not.
func Build(op Operation, write func(root *etree.Element) error) ([]byte, error) {
	action, ok := ActionFor(op)
	if !ok {
		return nil, fmt.Errorf("no action registered for operation %d", int(op))
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(action.Root)
	root.CreateAttr("xmlns", action.Namespace)
	root.CreateAttr("xmlns:xsi", xsiNamespace)
	root.CreateAttr("xsi:schemaLocation", action.SchemaLocation)

	if err := write(root); err != nil {
		return nil, err
	}

	doc.Indent(2)
	doc.WriteSettings.CanonicalEndTags = true
	return doc.WriteToBytes()
}

// Text writes a plain child element. Used for coded and enumerated fields.
func Text(parent *etree.Element, name, value string) {
	parent.CreateElement(name).SetText(value)
}

// TextOpt writes a plain child element, omitting it entirely when value is
// empty. Omission, not an empty element, signals "not provided".
func TextOpt(parent *etree.Element, name, value string) {
	if value == "" {
		return
	}
	Text(parent, name, value)
}

// CData writes a free-text child element wrapped in a CDATA section, which
// exempts it from XML escaping.
func CData(parent *etree.Element, name, value string) {
	parent.CreateElement(name).CreateCData(value)
}

// CDataOpt writes a CDATA child element, omitted when value is empty.
func CDataOpt(parent *etree.Element, name, value string) {
	if value == "" {
		return
	}
	CData(parent, name, value)
}

// Bool writes a boolean child element as the literal true/false tokens.
func Bool(parent *etree.Element, name string, v bool) {
	Text(parent, name, FormatBool(v))
}

// BoolOpt writes a boolean child element only when v is true.
func BoolOpt(parent *etree.Element, name string, v bool) {
	if !v {
		return
	}
	Bool(parent, name, v)
}

// Amount writes a monetary or quantity child element with exactly three
// decimal digits.
func Amount(parent *etree.Element, name string, d decimal.Decimal) {
	Text(parent, name, FormatAmount(d))
}

// AmountOpt writes an amount child element, omitted when d is zero.
func AmountOpt(parent *etree.Element, name string, d decimal.Decimal) {
	if d.IsZero() {
		return
	}
	Amount(parent, name, d)
}

// DateEl writes a calendar-date child element as YYYY-MM-DD.
func DateEl(parent *etree.Element, name string, d model.Date) {
	Text(parent, name, d.String())
}

// DateOpt writes a date child element, omitted when d is unset.
func DateOpt(parent *etree.Element, name string, d model.Date) {
	if d.IsZero() {
		return
	}
	DateEl(parent, name, d)
}

// Credentials writes the credential block: the agent key element when an API
// key is configured, otherwise username then password. Never both.
func Credentials(parent *etree.Element, username, password, agentKey string) {
	if agentKey != "" {
		Text(parent, "szamlaagentkulcs", agentKey)
		return
	}
	Text(parent, "felhasznalo", username)
	Text(parent, "jelszo", password)
}
