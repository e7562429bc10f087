package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/stonecluster/internal/api/apierr"
	"github.com/mcoot/stonecluster/internal/api/response"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/relay"
)

// HubStats is the part of the relay hub the health check reads
type HubStats interface {
	Stats(ctx context.Context) (relay.Stats, error)
}

const statsTimeout = 2 * time.Second

// MetaHandler serves health and ruleset endpoints
type MetaHandler struct {
	hub   HubStats
	rules model.Ruleset
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(hub HubStats, rules model.Ruleset) *MetaHandler {
	return &MetaHandler{hub: hub, rules: rules}
}

// Health handles GET /api/v1/health
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statsTimeout)
	defer cancel()

	stats, err := h.hub.Stats(ctx)
	if err != nil {
		WriteError(w, apierr.NewUnavailableError("relay loop is not running"))
		return
	}
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Connections: stats.Connections,
		Seated:      stats.Seated,
	})
}

// Rules handles GET /api/v1/rules
func (h *MetaHandler) Rules(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RulesFromModel(h.rules))
}
