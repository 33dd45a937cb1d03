package agent

import (
	"fmt"
	"net/url"
)

const (
	// DefaultBaseURL is the production agent endpoint.
	DefaultBaseURL = "https://www.szamlazz.hu"

	// DefaultTimeoutSeconds is applied when the config leaves the timeout
	// unset. The service accepts 10..300.
	DefaultTimeoutSeconds = 30

	minTimeoutSeconds = 10
	maxTimeoutSeconds = 300

	// defaultResponseVersion selects the XML response that embeds the PDF
	// as base64 instead of returning raw PDF bytes.
	defaultResponseVersion = 2
)

// Credentials authenticate the agent: either an agent key, or a username
// and password pair. Exactly one mechanism ends up in each document.
type Credentials struct {
	Username string
	Password string
	AgentKey string
}

func (c Credentials) complete() bool {
	return c.AgentKey != "" || (c.Username != "" && c.Password != "")
}

// StorageConfig controls PDF persistence.
type StorageConfig struct {
	AutoSave bool
	BasePath string
}

// Config is the immutable agent configuration, constructed once at startup.
type Config struct {
	Credentials       Credentials
	TimeoutSeconds    int
	BaseURL           string
	DownloadPDF       bool
	ResponseVersion   int
	ElectronicInvoice bool
	Aggregator        string
	Storage           StorageConfig
}

// withDefaults returns a copy with unset fields filled in. Pure merge, no
// process-wide mutable defaults.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.ResponseVersion == 0 {
		c.ResponseVersion = defaultResponseVersion
	}
	return c
}

// Validate fails fast on incomplete credentials, an out-of-range timeout or
// a malformed base URL.
func (c Config) Validate() error {
	if !c.Credentials.complete() {
		return fmt.Errorf("credentials incomplete: set AgentKey or both Username and Password")
	}
	if c.TimeoutSeconds < minTimeoutSeconds || c.TimeoutSeconds > maxTimeoutSeconds {
		return fmt.Errorf("timeout %ds out of range [%d,%d]", c.TimeoutSeconds, minTimeoutSeconds, maxTimeoutSeconds)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base URL %q is not a valid absolute URL", c.BaseURL)
	}
	return nil
}
