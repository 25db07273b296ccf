package analytics

import "time"

// DashboardRequest asks for one tenant's dashboard aggregates.
// KPIs and status counts are all-time; the daily series covers the trailing
// WindowDays ending at Now.
type DashboardRequest struct {
	ClientID   string    `json:"client_id"`
	WindowDays int       `json:"window_days"`
	Now        time.Time `json:"-"`
}

type DashboardSummary struct {
	ClientID string `json:"client_id"`

	KPIs           KPIs          `json:"kpis"`
	LeadsByStatus  []StatusCount `json:"leads_by_status"`
	LeadsOverTime  []DayCount    `json:"leads_over_time"`
}

type KPIs struct {
	TotalLeads       int `json:"total_leads"`
	TotalMissedCalls int `json:"total_missed_calls"`
	ConvertedLeads   int `json:"converted_leads"`

	// Rates are percentages, 0 when there are no leads.
	ConversionRate float64 `json:"conversion_rate"`
	MissedCallRate float64 `json:"missed_call_rate"`

	// AvgResponseSeconds averages first_contacted_at - created_at over leads
	// that have been contacted; rounded to whole seconds.
	AvgResponseSeconds int `json:"avg_response_seconds"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DayCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}
