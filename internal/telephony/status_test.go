package telephony

import (
	"testing"

	"leadcapture-platform/internal/leads"
)

func TestMapCallStatus(t *testing.T) {
	cases := []struct {
		in   string
		want leads.Status
	}{
		{"completed", leads.StatusContacted},
		{"COMPLETED", leads.StatusContacted},
		{"Completed", leads.StatusContacted},
		{"no-answer", leads.StatusNew},
		{"busy", leads.StatusNew},
		{"failed", leads.StatusNew},
		{"BUSY", leads.StatusNew},
		{"", leads.StatusNew},
		{"in-progress", leads.StatusNew},
		{"something-the-provider-invented", leads.StatusNew},
	}
	for _, tc := range cases {
		if got := MapCallStatus(tc.in); got != tc.want {
			t.Fatalf("MapCallStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDialDuration(t *testing.T) {
	if n, err := ParseDialDuration(""); err != nil || n != 0 {
		t.Fatalf("absent duration should default to 0, got %d, %v", n, err)
	}
	if n, err := ParseDialDuration("45"); err != nil || n != 45 {
		t.Fatalf("expected 45, got %d, %v", n, err)
	}
	if n, err := ParseDialDuration("0"); err != nil || n != 0 {
		t.Fatalf("expected 0, got %d, %v", n, err)
	}
	if _, err := ParseDialDuration("abc"); err == nil {
		t.Fatalf("non-numeric duration must be rejected")
	}
	if _, err := ParseDialDuration("12.5"); err == nil {
		t.Fatalf("fractional duration must be rejected")
	}
	if _, err := ParseDialDuration("-3"); err == nil {
		t.Fatalf("negative duration must be rejected")
	}
}
