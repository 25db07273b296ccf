package telephony

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadcapture-platform/internal/clients"
	"leadcapture-platform/internal/leads"

	"github.com/gin-gonic/gin"
)

type fakeResolver struct {
	byToken map[string]clients.Client
}

func (f fakeResolver) FindByToken(ctx context.Context, token string) (clients.Client, error) {
	c, ok := f.byToken[token]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

// fakeLeadStore mimics the natural-key upsert: same key updates in place
// (last write wins, recording URL only on non-empty) and reports created.
type fakeLeadStore struct {
	byKey map[string]leads.Lead
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{byKey: map[string]leads.Lead{}}
}

func key(p leads.UpsertParams) string {
	return p.ClientID + "|" + p.CustomerNumber + "|" + p.CallTimestamp.UTC().Format(time.RFC3339Nano)
}

func (f *fakeLeadStore) Capture(ctx context.Context, p leads.UpsertParams) (leads.Lead, bool, error) {
	k := key(p)
	if cur, ok := f.byKey[k]; ok {
		cur.Status = p.Status
		cur.CallDuration = p.CallDuration
		if p.RecordingURL != "" {
			cur.RecordingURL = p.RecordingURL
		}
		f.byKey[k] = cur
		return cur, false, nil
	}
	l := leads.Lead{
		ID:             "lead-" + p.CustomerNumber,
		ClientID:       p.ClientID,
		CustomerNumber: p.CustomerNumber,
		Status:         p.Status,
		CreatedAt:      p.ReceivedAt,
		CallTimestamp:  p.CallTimestamp,
		CallDuration:   p.CallDuration,
		RecordingURL:   p.RecordingURL,
	}
	f.byKey[k] = l
	return l, true, nil
}

func newWebhookRouter(store *fakeLeadStore, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := WebhookHandler{
		Clients: fakeResolver{byToken: map[string]clients.Client{
			"t1": {ID: "c-acme", BusinessName: "Acme", WebhookToken: "t1"},
		}},
		Leads: store,
		Now:   func() time.Time { return now },
	}
	r := gin.New()
	r.GET("/webhook/:token", h.HandleCallEvent)
	return r
}

func doWebhook(t *testing.T, r *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return w, body
}

func TestWebhook_CreatesLeadFromCompletedCall(t *testing.T) {
	store := newFakeLeadStore()
	r := newWebhookRouter(store, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	w, body := doWebhook(t, r,
		"/webhook/t1?CallSid=c1&From=%2B1555&Direction=incoming&CallStatus=completed&DialCallDuration=45&StartTime=2025-01-01T00%3A00%3A00Z")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if body["message"] != "Lead processed" || body["created"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(store.byKey) != 1 {
		t.Fatalf("expected exactly one lead, got %d", len(store.byKey))
	}
	for _, l := range store.byKey {
		if l.Status != leads.StatusContacted {
			t.Fatalf("expected status contacted, got %q", l.Status)
		}
		if l.CallDuration != 45 {
			t.Fatalf("expected duration 45, got %d", l.CallDuration)
		}
		if !l.CallTimestamp.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected call timestamp %v", l.CallTimestamp)
		}
	}
}

func TestWebhook_RedeliveryReconcilesInsteadOfDuplicating(t *testing.T) {
	store := newFakeLeadStore()
	r := newWebhookRouter(store, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	first := "/webhook/t1?CallSid=c1&From=%2B1555&Direction=incoming&CallStatus=completed&DialCallDuration=45&StartTime=2025-01-01T00%3A00%3A00Z"
	second := "/webhook/t1?CallSid=c1&From=%2B1555&Direction=incoming&CallStatus=busy&DialCallDuration=0&StartTime=2025-01-01T00%3A00%3A00Z"

	if w, body := doWebhook(t, r, first); w.Code != 200 || body["created"] != true {
		t.Fatalf("first delivery: %d %v", w.Code, body)
	}
	w, body := doWebhook(t, r, second)
	if w.Code != http.StatusOK || body["created"] != false {
		t.Fatalf("second delivery: %d %v", w.Code, body)
	}
	if len(store.byKey) != 1 {
		t.Fatalf("redelivery must not create a second lead, got %d", len(store.byKey))
	}
	for _, l := range store.byKey {
		if l.Status != leads.StatusNew || l.CallDuration != 0 {
			t.Fatalf("expected last-write-wins (new, 0), got %q, %d", l.Status, l.CallDuration)
		}
	}
}

func TestWebhook_OutboundIsIgnored(t *testing.T) {
	store := newFakeLeadStore()
	r := newWebhookRouter(store, time.Now())

	w, body := doWebhook(t, r, "/webhook/t1?CallSid=c1&From=%2B1555&Direction=outbound&CallStatus=completed")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["message"] != "Only incoming calls are processed" {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(store.byKey) != 0 {
		t.Fatalf("outbound calls must never produce leads")
	}
}

func TestWebhook_UnknownTokenIsUnauthorized(t *testing.T) {
	store := newFakeLeadStore()
	r := newWebhookRouter(store, time.Now())

	w, body := doWebhook(t, r, "/webhook/nope?CallSid=c1&From=%2B1555&Direction=incoming&CallStatus=completed")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if body["error"] != "Unauthorized" {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(store.byKey) != 0 {
		t.Fatalf("unauthorized requests must never write")
	}
}

func TestWebhook_MissingRequiredFields(t *testing.T) {
	store := newFakeLeadStore()
	r := newWebhookRouter(store, time.Now())

	for _, url := range []string{
		"/webhook/t1?From=%2B1555&Direction=incoming",        // no CallSid
		"/webhook/t1?CallSid=c1&Direction=incoming",          // no From
		"/webhook/t1?Direction=incoming&CallStatus=completed", // neither
	} {
		w, body := doWebhook(t, r, url)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", url, w.Code)
		}
		if body["error"] != "Missing required fields" {
			t.Fatalf("%s: unexpected body: %v", url, body)
		}
	}
	if len(store.byKey) != 0 {
		t.Fatalf("validation failures must never write")
	}
}

func TestWebhook_NonNumericDurationRejected(t *testing.T) {
	store := newFakeLeadStore()
	r := newWebhookRouter(store, time.Now())

	w, _ := doWebhook(t, r, "/webhook/t1?CallSid=c1&From=%2B1555&Direction=incoming&DialCallDuration=abc")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric duration, got %d", w.Code)
	}
	if len(store.byKey) != 0 {
		t.Fatalf("rejected payloads must never write")
	}
}

func TestWebhook_MalformedStartTimeFallsBackToNow(t *testing.T) {
	store := newFakeLeadStore()
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	r := newWebhookRouter(store, now)

	w, body := doWebhook(t, r, "/webhook/t1?CallSid=c1&From=%2B1555&Direction=incoming&CallStatus=no-answer&StartTime=garbage")
	if w.Code != http.StatusOK || body["created"] != true {
		t.Fatalf("malformed StartTime must not abort: %d %v", w.Code, body)
	}
	for _, l := range store.byKey {
		if !l.CallTimestamp.Equal(now) {
			t.Fatalf("expected fallback to now, got %v", l.CallTimestamp)
		}
		if l.Status != leads.StatusNew || l.CallDuration != 0 {
			t.Fatalf("expected defaults (new, 0), got %q, %d", l.Status, l.CallDuration)
		}
	}
}
