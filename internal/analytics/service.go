package analytics

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"leadcapture-platform/internal/leads"
)

var ErrInvalidRequest = errors.New("analytics: invalid request")

const defaultWindowDays = 30

// Repository abstracts data access for analytics.
//
// Implementations must enforce client filtering; aggregation happens here,
// over the tenant's full lead set. Volumes are small-business scale, so
// pulling the rows beats maintaining materialized aggregates.
type Repository interface {
	ListLeads(ctx context.Context, clientID string) ([]leads.Lead, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) DashboardSummary(ctx context.Context, req DashboardRequest) (DashboardSummary, error) {
	if req.ClientID == "" {
		return DashboardSummary{}, ErrInvalidRequest
	}
	if req.WindowDays < 0 {
		return DashboardSummary{}, ErrInvalidRequest
	}
	if req.WindowDays == 0 {
		req.WindowDays = defaultWindowDays
	}
	if req.Now.IsZero() {
		req.Now = time.Now().UTC()
	}
	if s.repo == nil {
		return DashboardSummary{}, errors.New("analytics: repository not configured")
	}

	rows, err := s.repo.ListLeads(ctx, req.ClientID)
	if err != nil {
		return DashboardSummary{}, err
	}

	out := DashboardSummary{ClientID: req.ClientID}

	byStatus := map[string]int{}
	byDay := map[string]int{}
	windowStart := req.Now.AddDate(0, 0, -req.WindowDays)

	var responseTotal time.Duration
	var responseSamples int

	for _, l := range rows {
		out.KPIs.TotalLeads++
		if l.Missed() {
			out.KPIs.TotalMissedCalls++
		}
		if l.Status == leads.StatusConverted {
			out.KPIs.ConvertedLeads++
		}
		byStatus[string(l.Status)]++

		if !l.CallTimestamp.Before(windowStart) {
			byDay[l.CallTimestamp.UTC().Format("2006-01-02")]++
		}

		if l.FirstContactedAt != nil {
			responseTotal += l.FirstContactedAt.Sub(l.CreatedAt)
			responseSamples++
		}
	}

	if out.KPIs.TotalLeads > 0 {
		total := float64(out.KPIs.TotalLeads)
		out.KPIs.ConversionRate = float64(out.KPIs.ConvertedLeads) / total * 100
		out.KPIs.MissedCallRate = float64(out.KPIs.TotalMissedCalls) / total * 100
	}
	if responseSamples > 0 {
		avg := responseTotal.Seconds() / float64(responseSamples)
		out.KPIs.AvgResponseSeconds = int(math.Round(avg))
	}

	out.LeadsByStatus = make([]StatusCount, 0, len(byStatus))
	for status, n := range byStatus {
		out.LeadsByStatus = append(out.LeadsByStatus, StatusCount{Status: status, Count: n})
	}
	sort.Slice(out.LeadsByStatus, func(i, j int) bool {
		return out.LeadsByStatus[i].Status < out.LeadsByStatus[j].Status
	})

	out.LeadsOverTime = make([]DayCount, 0, len(byDay))
	for day, n := range byDay {
		out.LeadsOverTime = append(out.LeadsOverTime, DayCount{Day: day, Count: n})
	}
	sort.Slice(out.LeadsOverTime, func(i, j int) bool {
		return out.LeadsOverTime[i].Day < out.LeadsOverTime[j].Day
	})

	return out, nil
}
