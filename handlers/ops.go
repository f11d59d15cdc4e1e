package handlers

import (
	"context"
	"net/http"
	"time"

	"food-court-api/models"
	"food-court-api/statemachine"

	"github.com/gin-gonic/gin"
)

// Check is the liveness probe
func (h *Handler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, "Api running...")
}

// CacheClear reloads .env and the runtime listing/auth policy
func (h *Handler) CacheClear(c *gin.Context) {
	p := h.Runtime.Reload()
	h.Logger.Infow("runtime policy reloaded",
		"menu_available_only", p.MenuAvailableOnly,
		"pre_orders_require_auth", p.PreOrdersRequireAuth,
	)
	c.JSON(http.StatusOK, "Cache cleared...")
}

// Health reports database reachability
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "error"
	}

	status, code := "healthy", http.StatusOK
	if dbStatus != "ok" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now(),
		"services":  gin.H{"database": dbStatus},
	})
}

// StateMachine describes the pre-order lifecycle for clients
func (h *Handler) StateMachine(c *gin.Context) {
	terminal := []models.PreOrderStatus{}
	for _, s := range []models.PreOrderStatus{
		models.PreOrderPending, models.PreOrderConfirmed, models.PreOrderReady,
		models.PreOrderCollected, models.PreOrderCancelled,
	} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"description":     "Pre-order lifecycle",
	})
}
