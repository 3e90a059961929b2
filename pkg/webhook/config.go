// Package webhook owns the webhook action variant: its configuration
// document, header handling and API version negotiation.
package webhook

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hooklinehq/hookline/pkg/models"
)

// Header names the system injects on every outbound request. Custom headers
// may not collide with these, case-insensitively; Authorization is reserved
// for the signing scheme.
const (
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
	HeaderAuth        = "Authorization"
	HeaderEvent       = "X-Hookline-Event"
	HeaderDelivery    = "X-Hookline-Delivery"
)

const userAgent = "hookline/1.0"

const defaultAPIVersion = "v1"

// ReservedHeaderNames returns the lowercase set of default header names.
func ReservedHeaderNames() map[string]bool {
	return map[string]bool{
		strings.ToLower(HeaderContentType): true,
		strings.ToLower(HeaderUserAgent):   true,
		strings.ToLower(HeaderAuth):        true,
		strings.ToLower(HeaderEvent):       true,
		strings.ToLower(HeaderDelivery):    true,
	}
}

// HeaderValue is one configured request header. Secret values are delivered
// on the wire but never echoed back through any read path.
type HeaderValue struct {
	Value  string `json:"value"`
	Secret bool   `json:"secret"`
}

// Config is the webhook variant of an action configuration.
type Config struct {
	URL         string                        `json:"url"          validate:"required,url"`
	Headers     map[string]HeaderValue        `json:"headers"`
	APIVersions map[models.EventSource]string `json:"api_versions"`
}

// ParseConfig decodes the configuration document of a webhook action.
func ParseConfig(raw json.RawMessage) (*Config, error) {
	var config Config

	err := json.Unmarshal(raw, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode webhook config: %w", err)
	}

	if config.URL == "" {
		return nil, ErrMissingURL
	}

	if config.Headers == nil {
		config.Headers = make(map[string]HeaderValue)
	}

	return &config, nil
}

// APIVersion negotiates the version tag for an event source. The source is
// always the matched trigger's event source, never caller-supplied, and the
// result is a single-key map embedded in the outbound payload.
func (c *Config) APIVersion(source models.EventSource) map[string]string {
	version, ok := c.APIVersions[source]
	if !ok || version == "" {
		version = defaultAPIVersion
	}

	return map[string]string{string(source): version}
}

// OutboundHeaders builds the full header set for one delivery: system
// default headers plus the configured custom headers with secret plaintext
// resolved. Defaults win on collision; validation rejects such configs
// before they are saved.
func (c *Config) OutboundHeaders(executionID string, source models.EventSource, action models.ChangeAction) map[string]string {
	headers := make(map[string]string, len(c.Headers)+4)

	for name, header := range c.Headers {
		headers[name] = header.Value
	}

	headers[HeaderContentType] = "application/json"
	headers[HeaderUserAgent] = userAgent
	headers[HeaderEvent] = fmt.Sprintf("%s.%s", source, action)
	headers[HeaderDelivery] = executionID

	return headers
}

// HeaderDisplay is the read-path representation of one configured header.
// DisplayValue for a secret header is never the stored plaintext.
type HeaderDisplay struct {
	Name         string `json:"name"`
	DisplayValue string `json:"displayValue"`
	Secret       bool   `json:"secret"`
}

// DisplayHeaders returns the redacted header list for configuration UIs,
// sorted by name for stable output.
func (c *Config) DisplayHeaders() []HeaderDisplay {
	display := make([]HeaderDisplay, 0, len(c.Headers))

	for name, header := range c.Headers {
		value := header.Value
		if header.Secret {
			value = ""
		}

		display = append(display, HeaderDisplay{
			Name:         name,
			DisplayValue: value,
			Secret:       header.Secret,
		})
	}

	sort.Slice(display, func(i, j int) bool {
		return display[i].Name < display[j].Name
	})

	return display
}
