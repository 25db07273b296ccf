package telephony

import (
	"fmt"
	"strconv"
	"strings"

	"leadcapture-platform/internal/leads"
)

// MapCallStatus translates a provider call outcome into a lead status.
// Total and deterministic: every input maps somewhere, unknown values take
// the safe default "new" so a provider vocabulary change cannot drop events.
func MapCallStatus(providerStatus string) leads.Status {
	switch strings.ToLower(providerStatus) {
	case "completed":
		return leads.StatusContacted
	case "no-answer", "busy", "failed":
		return leads.StatusNew
	default:
		return leads.StatusNew
	}
}

// ParseDialDuration parses DialCallDuration. Absent means 0 (no connect);
// a present but non-numeric or negative value is a malformed payload and is
// rejected rather than silently coerced to 0.
func ParseDialDuration(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("telephony: non-numeric DialCallDuration %q", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("telephony: negative DialCallDuration %d", n)
	}
	return n, nil
}
