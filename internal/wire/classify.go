package wire

import (
	"bytes"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Response headers the service sets on failure.
const (
	HeaderErrorCode    = "szlahu_error_code"
	HeaderErrorMessage = "szlahu_error"
)

// The literal message the service returns on a failed login. When the body
// reports failure with exactly this text the code is forced to the
// authentication code even if no numeric code is present.
const failedLoginMessage = "Sikertelen bejelentkezés."

const authenticationCode = 3

var (
	errCodePattern    = regexp.MustCompile(`<hibakod>\s*(\d+)\s*</hibakod>`)
	errMessagePattern = regexp.MustCompile(`<hibauzenet>\s*(.*?)\s*</hibauzenet>`)
	notSuccessPattern = regexp.MustCompile(`<sikeres>\s*false\s*</sikeres>`)
)

// Failed reports whether a response signals an unsuccessful call. The
// service signals failure redundantly; any one signal counts, headers first.
func Failed(status int, header http.Header, body []byte) bool {
	if header.Get(HeaderErrorCode) != "" || header.Get(HeaderErrorMessage) != "" {
		return true
	}
	if status < 200 || status > 299 {
		return true
	}
	return notSuccessPattern.Match(body) || errCodePattern.Match(body)
}

type classification struct {
	code    int
	message string
}

// Classify inspects a failed response and returns the resolved numeric code
// plus message. Resolution order, first match wins: error-code header,
// failed-login body text, first embedded numeric code. A zero code means
// nothing was resolved and the caller gets the generic kind.
func Classify(status int, header http.Header, body []byte) (code int, message string) {
	c := classify(status, header, body)
	return c.code, c.message
}

func classify(status int, header http.Header, body []byte) classification {
	message := bodyMessage(header, body)

	if raw := header.Get(HeaderErrorCode); raw != "" {
		if code, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return classification{code: code, message: message}
		}
	}

	if notSuccessPattern.Match(body) && message == failedLoginMessage {
		return classification{code: authenticationCode, message: message}
	}

	if m := errCodePattern.FindSubmatch(body); m != nil {
		if code, err := strconv.Atoi(string(m[1])); err == nil {
			return classification{code: code, message: message}
		}
	}

	if message == "" {
		message = "Unknown error"
	}
	return classification{message: message}
}

func bodyMessage(header http.Header, body []byte) string {
	if msg := header.Get(HeaderErrorMessage); msg != "" {
		return msg
	}
	if m := errMessagePattern.FindSubmatch(body); m != nil {
		return string(bytes.TrimSpace(m[1]))
	}
	return ""
}

// Patterns that identify a fetch of an identifier the remote side does not
// know. These become the specific not-found kinds rather than the generic one.
var unknownNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ismeretlen\s+számlaszám`),
	regexp.MustCompile(`(?i)ismeretlen\s+nyugtaszám`),
	regexp.MustCompile(`(?i)unknown\s+(invoice|receipt)\s+number`),
}

// LooksLikeUnknownNumber reports whether the body text matches the service's
// "unknown number" wording.
func LooksLikeUnknownNumber(body []byte) bool {
	for _, p := range unknownNumberPatterns {
		if p.Match(body) {
			return true
		}
	}
	return false
}
