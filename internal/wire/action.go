// Package wire implements the Számla Agent XML protocol: the per-operation
// action table, request document building, response parsing and failure
// classification.
package wire

// Operation is one logical remote operation.
type Operation int

const (
	OpUploadInvoice Operation = iota
	OpCancelInvoice
	OpFetchInvoice
	OpDeleteProforma
	OpUploadReceipt
	OpCancelReceipt
	OpFetchReceipt
	OpQueryTaxPayer
)

func (op Operation) String() string {
	if a, ok := actions[op]; ok {
		return a.Root
	}
	return "unknown"
}

// Action binds an operation to its multipart field name, XML root element,
// namespace and schema location. The table is read-only.
type Action struct {
	FieldName      string
	Root           string
	Namespace      string
	SchemaLocation string
}

const namespaceBase = "http://www.szamlazz.hu/"

func newAction(fieldName, root string) Action {
	ns := namespaceBase + root
	return Action{
		FieldName:      fieldName,
		Root:           root,
		Namespace:      ns,
		SchemaLocation: ns + " " + root + ".xsd",
	}
}

var actions = map[Operation]Action{
	OpUploadInvoice:  newAction("action-xmlagentxmlfile", "xmlszamla"),
	OpCancelInvoice:  newAction("action-szamla_agent_st", "xmlszamlast"),
	OpFetchInvoice:   newAction("action-szamla_agent_xml", "xmlszamlaxml"),
	OpDeleteProforma: newAction("action-szamla_agent_dijbekero_torlese", "xmlszamladbkdel"),
	OpUploadReceipt:  newAction("action-szamla_agent_nyugta_create", "xmlnyugtacreate"),
	OpCancelReceipt:  newAction("action-szamla_agent_nyugta_storno", "xmlnyugtast"),
	OpFetchReceipt:   newAction("action-szamla_agent_nyugta_get", "xmlnyugtaget"),
	OpQueryTaxPayer:  newAction("action-szamla_agent_taxpayer", "xmltaxpayer"),
}

// ActionFor returns the action descriptor for op.
func ActionFor(op Operation) (Action, bool) {
	a, ok := actions[op]
	return a, ok
}

// Actions returns a copy of the full action table.
func Actions() map[Operation]Action {
	out := make(map[Operation]Action, len(actions))
	for op, a := range actions {
		out[op] = a
	}
	return out
}
