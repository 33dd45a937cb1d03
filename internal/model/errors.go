package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind names one failure class of a remote call. Kinds map 1:1 to the
// service's numeric error codes, except the two locally synthesized
// not-found kinds and the pre-network Validation kind.
type ErrorKind int

const (
	KindCommon ErrorKind = iota
	KindRemoteMaintenance
	KindAuthentication
	KindKeystoreOpening
	KindNoXMLFile
	KindCannotCreateInvoice
	KindInvoiceSignature
	KindInvoiceNotification
	KindXMLRead
	KindInvalidInvoicePrefix
	KindInvalidNetPrice
	KindInvalidVATRate
	KindInvalidGrossPrice
	KindReceiptAlreadyExists
	KindReceiptNotFound
	KindInvoiceNotFound
)

var kindNames = map[ErrorKind]string{
	KindCommon:               "common",
	KindRemoteMaintenance:    "remote maintenance",
	KindAuthentication:       "authentication",
	KindKeystoreOpening:      "keystore opening",
	KindNoXMLFile:            "no xml file",
	KindCannotCreateInvoice:  "cannot create invoice",
	KindInvoiceSignature:     "unsuccessful invoice signature",
	KindInvoiceNotification:  "invoice notification sending",
	KindXMLRead:              "xml reading",
	KindInvalidInvoicePrefix: "invalid invoice prefix",
	KindInvalidNetPrice:      "invalid net price value",
	KindInvalidVATRate:       "invalid vat rate value",
	KindInvalidGrossPrice:    "invalid gross price value",
	KindReceiptAlreadyExists: "receipt already exists",
	KindReceiptNotFound:      "receipt not found",
	KindInvoiceNotFound:      "invoice not found",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "common"
}

// Numeric error codes of the remote service.
const (
	CodeRemoteMaintenance      = 1
	CodeAuthenticationLowLevel = 2
	CodeAuthentication         = 3
	CodeKeystoreOpening        = 49
	CodeNoXMLFile              = 53
	CodeCannotCreateInvoice    = 54
	CodeInvoiceSignature       = 55
	CodeInvoiceNotification    = 56
	CodeXMLRead                = 57
	CodeInvalidInvoicePrefix   = 202
)

var codeKinds = map[int]ErrorKind{
	CodeRemoteMaintenance:      KindRemoteMaintenance,
	CodeAuthenticationLowLevel: KindAuthentication,
	CodeAuthentication:         KindAuthentication,
	CodeKeystoreOpening:        KindKeystoreOpening,
	CodeNoXMLFile:              KindNoXMLFile,
	CodeCannotCreateInvoice:    KindCannotCreateInvoice,
	CodeInvoiceSignature:       KindInvoiceSignature,
	CodeInvoiceNotification:    KindInvoiceNotification,
	CodeXMLRead:                KindXMLRead,
	CodeInvalidInvoicePrefix:   KindInvalidInvoicePrefix,
	259:                        KindInvalidNetPrice,
	262:                        KindInvalidNetPrice,
	260:                        KindInvalidVATRate,
	263:                        KindInvalidVATRate,
	261:                        KindInvalidGrossPrice,
	264:                        KindInvalidGrossPrice,
	338:                        KindReceiptAlreadyExists,
	339:                        KindReceiptNotFound,
}

// KindForCode maps a remote numeric code to its error kind; unmapped codes
// fall back to KindCommon.
func KindForCode(code int) ErrorKind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindCommon
}

// RemoteError is a failed remote call, classified into a kind. Raw keeps the
// original response body for diagnostics.
type RemoteError struct {
	Kind       ErrorKind
	Code       int
	Message    string
	HTTPStatus int
	Raw        []byte
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("szamlazz: %s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("szamlazz: %s (http %d): %s", e.Kind, e.HTTPStatus, e.Message)
}

// NewRemoteError classifies code through the kind table.
func NewRemoteError(code int, message string, httpStatus int, raw []byte) *RemoteError {
	return &RemoteError{
		Kind:       KindForCode(code),
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Raw:        raw,
	}
}

// FieldViolation is one failed validation rule.
type FieldViolation struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError aggregates the rule violations of a rejected model. It is
// raised before any network call is made.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s (%s)", v.Field, v.Rule)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ParseError is a response that was not well-formed XML.
type ParseError struct {
	Op      string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse %s: %s", e.Op, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// KindOf extracts the remote error kind; ok is false for non-remote errors.
func KindOf(err error) (ErrorKind, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return KindCommon, false
}

// IsNotFound reports whether err is an invoice- or receipt-not-found kind.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindInvoiceNotFound || k == KindReceiptNotFound)
}

// IsAuthentication reports whether err is an authentication failure.
func IsAuthentication(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindAuthentication
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
