package telephony

import (
	"net/http"
	"strings"
	"time"
)

// CallEventForm captures the subset of call-status webhook fields we care
// about. The provider delivers them as query parameters on a GET to the
// tenant's webhook URL (Exotel-style passthru applet).
//
// Keep it raw and provider-adapter-only; mapping to internal types happens
// in the handler.
type CallEventForm struct {
	CallSid          string
	From             string
	To               string
	CallStatus       string
	Direction        string
	DialCallDuration string
	StartTime        string
	RecordingURL     string
}

func ParseCallEvent(r *http.Request) CallEventForm {
	q := r.URL.Query()
	return CallEventForm{
		CallSid:          strings.TrimSpace(q.Get("CallSid")),
		From:             strings.TrimSpace(q.Get("From")),
		To:               strings.TrimSpace(q.Get("To")),
		CallStatus:       strings.TrimSpace(q.Get("CallStatus")),
		Direction:        strings.TrimSpace(q.Get("Direction")),
		DialCallDuration: strings.TrimSpace(q.Get("DialCallDuration")),
		StartTime:        strings.TrimSpace(q.Get("StartTime")),
		RecordingURL:     strings.TrimSpace(q.Get("RecordingUrl")),
	}
}

// Incoming reports whether the event describes an inbound call.
// Direction comparison is case-insensitive; anything that is not "incoming"
// (outbound legs, click-to-call callbacks) never becomes a lead.
func (f CallEventForm) Incoming() bool {
	return strings.EqualFold(f.Direction, "incoming")
}

// startTimeLayouts are the timestamp shapes observed from the provider.
// RFC3339 in newer accounts, a bare "2006-01-02 15:04:05" historically.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveCallTimestamp parses the provider StartTime. Absent or malformed
// values fall back to now: a bad timestamp must never abort ingestion.
func (f CallEventForm) ResolveCallTimestamp(now time.Time) time.Time {
	if f.StartTime == "" {
		return now
	}
	for _, layout := range startTimeLayouts {
		if ts, err := time.Parse(layout, f.StartTime); err == nil {
			return ts
		}
	}
	return now
}
