package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Sessions    string `json:"sessions"`
	Backend     string `json:"backend"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sessions := "ok"
	if err := h.redis.Ping(ctx).Err(); err != nil {
		sessions = "error"
		h.log.Error().Err(err).Msg("redis ping failed")
	}

	backend := "ok"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.Backend.BaseURL, nil)
	if err == nil {
		resp, reqErr := h.baseTransport.RoundTrip(req)
		if reqErr != nil {
			backend = "error"
			h.log.Error().Err(reqErr).Msg("backend probe failed")
		} else {
			resp.Body.Close()
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Sessions:    sessions,
		Backend:     backend,
		Environment: h.cfg.Environment,
	})
}
