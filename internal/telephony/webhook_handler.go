package telephony

import (
	"context"
	"errors"
	"net/http"
	"time"

	"leadcapture-platform/internal/clients"
	"leadcapture-platform/internal/leads"
	"leadcapture-platform/internal/monitoring"
	"leadcapture-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LeadWriter is the one write surface the ingestion path uses.
type LeadWriter interface {
	Capture(ctx context.Context, p leads.UpsertParams) (leads.Lead, bool, error)
}

// WebhookHandler turns provider call-status notifications into leads.
//
// The token in the URL path is the only authentication: resolve it first,
// and fail with a constant-shape 401 no matter why the lookup missed.
// Everything after tenant resolution is synchronous; the provider owns
// retries, we own idempotency via the natural-key upsert.
type WebhookHandler struct {
	Clients clients.Resolver
	Leads   LeadWriter
	Metrics *monitoring.Metrics

	Now func() time.Time
}

func (h WebhookHandler) HandleCallEvent(c *gin.Context) {
	log := logger.FromGin(c)

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	if h.Clients == nil || h.Leads == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ingestion not configured"})
		return
	}

	token := c.Param("token")
	client, err := h.Clients.FindByToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, clients.ErrNotFound) {
			log.Error("tenant lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		// Same body for malformed and unknown tokens; do not leak which.
		h.Metrics.WebhookOutcome(monitoring.OutcomeUnauthorized)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	form := ParseCallEvent(c.Request)

	if !form.Incoming() {
		h.Metrics.WebhookOutcome(monitoring.OutcomeIgnored)
		c.JSON(http.StatusOK, gin.H{"message": "Only incoming calls are processed"})
		return
	}

	if form.CallSid == "" || form.From == "" {
		h.Metrics.WebhookOutcome(monitoring.OutcomeInvalid)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	duration, err := ParseDialDuration(form.DialCallDuration)
	if err != nil {
		log.Warn("rejected call event", "client_id", client.ID, "call_sid", form.CallSid, "err", err)
		h.Metrics.WebhookOutcome(monitoring.OutcomeInvalid)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid DialCallDuration"})
		return
	}

	receivedAt := now().UTC()
	lead, created, err := h.Leads.Capture(c.Request.Context(), leads.UpsertParams{
		ClientID:       client.ID,
		CustomerNumber: form.From,
		Status:         MapCallStatus(form.CallStatus),
		CallTimestamp:  form.ResolveCallTimestamp(receivedAt),
		CallDuration:   duration,
		RecordingURL:   form.RecordingURL,
		ReceivedAt:     receivedAt,
	})
	if err != nil {
		log.Error("lead write failed", "client_id", client.ID, "call_sid", form.CallSid, "err", err)
		h.Metrics.WebhookOutcome(monitoring.OutcomeError)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead write failed"})
		return
	}

	if created {
		h.Metrics.WebhookOutcome(monitoring.OutcomeCreated)
		h.Metrics.LeadCaptured(string(lead.Status))
	} else {
		h.Metrics.WebhookOutcome(monitoring.OutcomeReconciled)
	}
	log.Debug("lead processed", "client_id", client.ID, "lead_id", lead.ID, "created", created)
	c.JSON(http.StatusOK, gin.H{"message": "Lead processed", "created": created})
}
