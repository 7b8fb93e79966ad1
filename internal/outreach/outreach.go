// Package outreach normalizes contact channels and derives the best
// channel for a member from engagement signals. All four channels are
// closed labels; anything unrecognized normalizes to "".
package outreach

import (
	"strings"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// Channel labels.
const (
	Phone = "Phone"
	SMS   = "SMS"
	Email = "Email"
	Mail  = "Mail"
)

// AllMethods is the full method set in display order.
func AllMethods() []string {
	return []string{Phone, SMS, Email, Mail}
}

// NormalizeChannel maps free-form channel text to one of the closed
// labels, "" when nothing matches. SMS is checked before Phone so that
// combined values like "phone/sms" prefer the more specific match.
func NormalizeChannel(v string) string {
	key := strings.ToLower(strings.TrimSpace(v))
	switch {
	case key == "":
		return ""
	case strings.Contains(key, "sms"):
		return SMS
	case strings.Contains(key, "phone"):
		return Phone
	case strings.Contains(key, "email"):
		return Email
	case strings.Contains(key, "mail"):
		return Mail
	}
	return ""
}

// NormalizeMethods maps a stored outreach method list to the closed
// label set, expanding combined "phone/sms" entries, deduplicating, and
// preserving first-seen order. A nil list or a list that normalizes to
// nothing yields the full method set.
func NormalizeMethods(methods []string) []string {
	if methods == nil {
		return AllMethods()
	}
	var normalized []string
	for _, m := range methods {
		key := strings.ToLower(strings.TrimSpace(m))
		if key == "" {
			continue
		}
		switch {
		case strings.Contains(key, "phone") && strings.Contains(key, "sms"):
			normalized = append(normalized, Phone, SMS)
		case strings.Contains(key, "sms"):
			normalized = append(normalized, SMS)
		case strings.Contains(key, "phone"):
			normalized = append(normalized, Phone)
		case strings.Contains(key, "email"):
			normalized = append(normalized, Email)
		case strings.Contains(key, "mail"):
			normalized = append(normalized, Mail)
		}
	}
	seen := make(map[string]bool, 4)
	out := normalized[:0]
	for _, m := range normalized {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		return AllMethods()
	}
	return out
}

// DeriveChannel picks the outreach channel for a member. An explicit
// override wins, then a channel recorded in the data, then a cascade of
// engagement and access signals. Always returns a non-empty channel.
func DeriveChannel(m *member.Member, override string) string {
	if ch := NormalizeChannel(override); ch != "" {
		return ch
	}
	if ch := NormalizeChannel(m.Extra["Channel"]); ch != "" {
		return ch
	}

	phoneAvailable := member.Truthy(m.Extra["phone"])
	mailAvailable := member.Truthy(m.Extra["mail"])
	responded := member.Truthy(m.Extra["Response_Flag"])
	read := member.Truthy(m.Extra["Read_Flag"])
	delivered := member.Truthy(m.Extra["Delivered_Flag"])
	attempts := member.ParseNumeric(m.Extra["OutreachAttemptCount"])

	highDigital := m.DigitalDisadvantage != nil && *m.DigitalDisadvantage >= 0.6
	highRural := m.RuralityIndex != nil && *m.RuralityIndex >= 0.6
	older := m.Age != nil && *m.Age >= 65
	highRisk := m.RiskFull != nil && *m.RiskFull >= 2.3

	if phoneAvailable && (responded || (attempts != nil && *attempts >= 2) || (highRisk && !highDigital)) {
		return Phone
	}
	if mailAvailable && (highDigital || highRural || older) {
		return Mail
	}
	if read || delivered {
		return Email
	}
	if phoneAvailable {
		return SMS
	}
	if mailAvailable {
		return Mail
	}
	return Email
}
