package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rajeev-ju/flight-booking-system/internal/domain"
	"github.com/rajeev-ju/flight-booking-system/internal/repository"
)

// ScheduleHandler exposes the seat source of record directly: availability
// reads plus the guarded reserve and the unconditional release.
type ScheduleHandler struct {
	schedules repository.ScheduleRepository
}

type seatOperationRequest struct {
	Seats int `json:"seats" binding:"required,gt=0"`
}

func NewScheduleHandler(schedules repository.ScheduleRepository) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

func (h *ScheduleHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/seats", h.availableSeats)
	router.POST("/:id/reserve", h.reserve)
	router.POST("/:id/release", h.release)
}

func (h *ScheduleHandler) availableSeats(c *gin.Context) {
	scheduleID, ok := h.scheduleID(c)
	if !ok {
		return
	}

	available, err := h.schedules.AvailableSeats(c.Request.Context(), scheduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"availableSeats": available},
	})
}

func (h *ScheduleHandler) reserve(c *gin.Context) {
	h.seatOperation(c, h.schedules.ReserveSeats, "seats reserved")
}

func (h *ScheduleHandler) release(c *gin.Context) {
	h.seatOperation(c, h.schedules.ReleaseSeats, "seats released")
}

func (h *ScheduleHandler) seatOperation(c *gin.Context, op func(context.Context, uuid.UUID, int) error, message string) {
	scheduleID, ok := h.scheduleID(c)
	if !ok {
		return
	}

	var req seatOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": string(domain.CodeValidation), "error": err.Error()})
		return
	}

	if err := op(c.Request.Context(), scheduleID, req.Seats); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func (h *ScheduleHandler) scheduleID(c *gin.Context) (uuid.UUID, bool) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, domain.Validation("invalid schedule id"))
		return uuid.Nil, false
	}
	return scheduleID, true
}
