package pushover

import (
	"net/url"
	"strconv"
)

// Priority levels accepted by the messages API.
const (
	PriorityLowest    = -2
	PriorityLow       = -1
	PriorityNormal    = 0
	PriorityHigh      = 1
	PriorityEmergency = 2
)

// Emergency delivery parameter bounds enforced by the upstream API.
const (
	minRetrySeconds  = 30
	maxExpireSeconds = 10800
)

// Message is one notification to deliver. Only Message is required; optional
// fields are pointers or strings whose zero value means "absent" and absent
// fields are never sent upstream.
type Message struct {
	Message  string
	Title    string
	Sound    string
	URL      string
	URLTitle string
	Device   string

	// Priority distinguishes "not set" from an explicit 0. When set it is
	// always encoded, including 0.
	Priority *float64

	// Retry and Expire control emergency (priority 2) redelivery upstream.
	Retry  *int
	Expire *int
}

// Encode translates credentials plus a validated message into the form
// field set the messages API expects. Pure: identical input yields
// byte-identical encoded output.
func (m Message) Encode(creds Credentials) url.Values {
	values := url.Values{}
	values.Set("token", creds.Token)
	values.Set("user", creds.User)
	values.Set("message", m.Message)

	if m.Title != "" {
		values.Set("title", m.Title)
	}
	if m.Priority != nil {
		values.Set("priority", formatDecimal(*m.Priority))
	}
	if m.Sound != "" {
		values.Set("sound", m.Sound)
	}
	if m.URL != "" {
		values.Set("url", m.URL)
	}
	if m.URLTitle != "" {
		values.Set("url_title", m.URLTitle)
	}
	if m.Device != "" {
		values.Set("device", m.Device)
	}
	if m.Retry != nil {
		values.Set("retry", strconv.Itoa(*m.Retry))
	}
	if m.Expire != nil {
		values.Set("expire", strconv.Itoa(*m.Expire))
	}
	return values
}

// formatDecimal renders a priority value in its exact decimal form,
// independent of locale. Integral values render without a fraction.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
