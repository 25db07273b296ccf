package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"leadcapture-platform/internal/analytics"
	"leadcapture-platform/internal/audit"
	"leadcapture-platform/internal/auth"
	"leadcapture-platform/internal/clients"
	"leadcapture-platform/internal/leads"
	"leadcapture-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ClientDirectory is the client surface the API needs.
type ClientDirectory interface {
	Onboard(ctx context.Context, userID, businessName string) (clients.Client, error)
	ForUser(ctx context.Context, userID string) (clients.Client, error)
	List(ctx context.Context) ([]clients.Client, error)
	AdminUpdate(ctx context.Context, id, businessName, virtualNumber string) (clients.Client, error)
}

// LeadStore is the lead surface the API needs.
type LeadStore interface {
	List(ctx context.Context, clientID string, f leads.ListFilter) ([]leads.Lead, error)
	Get(ctx context.Context, clientID, id string) (leads.Lead, error)
	Update(ctx context.Context, clientID, id string, req leads.UpdateRequest) (leads.Lead, error)
}

// AnalyticsProvider computes on-demand dashboard aggregates.
type AnalyticsProvider interface {
	DashboardSummary(ctx context.Context, req analytics.DashboardRequest) (analytics.DashboardSummary, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Clients   ClientDirectory
	Leads     LeadStore
	Analytics AnalyticsProvider
	Audit     *audit.Service
}

// resolveClient maps the authenticated user to their tenant, the same way
// the dashboard resolves "my business". 404 body matches the pre-onboarding
// state the frontend checks for.
func (h Handlers) resolveClient(c *gin.Context) (clients.Client, bool) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return clients.Client{}, false
	}
	client, err := h.Clients.ForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Client profile not found"})
			return clients.Client{}, false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "client lookup failed"})
		return clients.Client{}, false
	}
	return client, true
}

// --- Auth ---

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a token pair. Credential-based login is handled by the
// identity frontend; this service only verifies and reissues.
func (h Handlers) Refresh(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), claims.UserID, claims.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Clients ---

type onboardRequest struct {
	BusinessName string `json:"business_name"`
}

// OnboardClient creates the caller's tenant. One client per user; the
// webhook token and virtual number are server-assigned.
func (h Handlers) OnboardClient(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req onboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	client, err := h.Clients.Onboard(c.Request.Context(), userID, req.BusinessName)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "business_name required"})
		case errors.Is(err, clients.ErrAlreadyOnboarded):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "client already exists"})
		default:
			logger.FromGin(c).Error("onboarding failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "onboarding failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client, "webhook_path": client.WebhookPath()})
}

// GetMyClient returns the caller's tenant profile, webhook path included.
func (h Handlers) GetMyClient(c *gin.Context) {
	client, ok := h.resolveClient(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client, "webhook_path": client.WebhookPath()})
}

// --- Leads ---

// ListLeads returns the tenant's leads, newest call first.
// Filters: status, duration (0|1-30|31-120|121+), search, days.
func (h Handlers) ListLeads(c *gin.Context) {
	client, ok := h.resolveClient(c)
	if !ok {
		return
	}

	f := leads.ListFilter{
		Status:         leads.Status(c.Query("status")),
		DurationBucket: c.Query("duration"),
		Search:         c.Query("search"),
	}
	if f.Status != "" && !leads.ValidStatus(f.Status) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	if daysRaw := c.Query("days"); daysRaw != "" {
		days, err := strconv.Atoi(daysRaw)
		if err != nil || days <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		f.Since = time.Now().UTC().AddDate(0, 0, -days)
	}

	out, err := h.Leads.List(c.Request.Context(), client.ID, f)
	if err != nil {
		logger.FromGin(c).Error("lead list failed", "client_id", client.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": out})
}

type updateLeadRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateLead applies a partial edit to one of the tenant's leads.
// Moving to "contacted" stamps first_contacted_at exactly once.
func (h Handlers) UpdateLead(c *gin.Context) {
	client, ok := h.resolveClient(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req updateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Status == nil && req.Notes == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	var prevStatus leads.Status
	if req.Status != nil {
		cur, err := h.Leads.Get(c.Request.Context(), client.ID, id)
		if err != nil {
			if errors.Is(err, leads.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lead not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead lookup failed"})
			return
		}
		prevStatus = cur.Status
	}

	upd := leads.UpdateRequest{Notes: req.Notes}
	if req.Status != nil {
		s := leads.Status(*req.Status)
		upd.Status = &s
	}

	lead, err := h.Leads.Update(c.Request.Context(), client.ID, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		case errors.Is(err, leads.ErrInvalidStatus):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		default:
			logger.FromGin(c).Error("lead update failed", "client_id", client.ID, "lead_id", id, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead update failed"})
		}
		return
	}

	if req.Status != nil && lead.Status != prevStatus {
		userID, _ := auth.UserID(c.Request.Context())
		role, _ := auth.Role(c.Request.Context())
		if err := h.Audit.LogLeadStatusChange(c.Request.Context(), client.ID, lead.ID, userID, role, string(prevStatus), string(lead.Status)); err != nil {
			logger.FromGin(c).Warn("audit append failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// --- Analytics ---

// Dashboard returns the tenant's KPI block and chart series.
func (h Handlers) Dashboard(c *gin.Context) {
	client, ok := h.resolveClient(c)
	if !ok {
		return
	}

	req := analytics.DashboardRequest{ClientID: client.ID}
	if daysRaw := c.Query("days"); daysRaw != "" {
		days, err := strconv.Atoi(daysRaw)
		if err != nil || days <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		req.WindowDays = days
	}

	out, err := h.Analytics.DashboardSummary(c.Request.Context(), req)
	if err != nil {
		logger.FromGin(c).Error("dashboard summary failed", "client_id", client.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Admin ---

func (h Handlers) AdminListClients(c *gin.Context) {
	out, err := h.Clients.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "client list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

type adminUpdateClientRequest struct {
	BusinessName  string `json:"business_name"`
	VirtualNumber string `json:"virtual_number"`
}

// AdminUpdateClient is the only path allowed to mutate a client after
// creation. The webhook token is immutable and not accepted here.
func (h Handlers) AdminUpdateClient(c *gin.Context) {
	id := c.Param("id")

	var req adminUpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	client, err := h.Clients.AdminUpdate(c.Request.Context(), id, req.BusinessName, req.VirtualNumber)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "client not found"})
		case errors.Is(err, clients.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		default:
			logger.FromGin(c).Error("admin client update failed", "client_id", id, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "client update failed"})
		}
		return
	}

	userID, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	if err := h.Audit.LogAdminClientUpdate(c.Request.Context(), client.ID, userID, role, c.ClientIP(), "client profile updated"); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}
