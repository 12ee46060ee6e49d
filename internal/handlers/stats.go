package handlers

import (
	"net/http"

	"clicker-backend/internal/middleware"
	"clicker-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	counterService *services.CounterService
	coordinator    *services.PressCoordinator
	resolver       middleware.Authenticator
}

func NewStatsHandler(counterService *services.CounterService, coordinator *services.PressCoordinator, resolver middleware.Authenticator) *StatsHandler {
	return &StatsHandler{counterService: counterService, coordinator: coordinator, resolver: resolver}
}

type DisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required" example:"Alice"`
}

// GetStats godoc
// @Summary      Current snapshot
// @Description  Global total, the caller's own count (0 when anonymous) and the top of the leaderboard
// @Tags         stats
// @Produce      json
// @Success      200 {object} services.Snapshot
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID, _ := h.resolver.Resolve(c.Request)

	snap, err := h.counterService.ReadSnapshot(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read stats"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// UpdateDisplayName godoc
// @Summary      Update display name
// @Description  Store a new display name and push a refreshed leaderboard to all live connections
// @Tags         stats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DisplayNameRequest true "New display name"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/me/name [put]
func (h *StatsHandler) UpdateDisplayName(c *gin.Context) {
	var req DisplayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	if err := h.coordinator.SetNameAndRefresh(userID, req.DisplayName); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to update display name"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "display name updated"})
}
