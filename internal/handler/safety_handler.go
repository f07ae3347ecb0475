package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flitz/internal/middleware"
	"flitz/internal/models"
	"flitz/internal/repository"
)

type SafetyHandler struct {
	safetyRepo *repository.SafetyRepository
}

func NewSafetyHandler(safetyRepo *repository.SafetyRepository) *SafetyHandler {
	return &SafetyHandler{safetyRepo: safetyRepo}
}

func (h *SafetyHandler) Block(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot block yourself"})
		return
	}
	if err := h.safetyRepo.CreateBlock(userID, req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "block failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SafetyHandler) Unblock(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.safetyRepo.DeleteBlock(userID, req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unblock failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UpsertZone configures the caller's wave safety zone (at most one).
func (h *SafetyHandler) UpsertZone(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Latitude            *float64 `json:"latitude" binding:"required"`
		Longitude           *float64 `json:"longitude" binding:"required"`
		RadiusMeters        float64  `json:"radius_meters" binding:"required,gt=0"`
		IsEnabled           bool     `json:"is_enabled"`
		EnableWaveAfterExit bool     `json:"enable_wave_after_exit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	zone := &models.UserWaveSafetyZone{
		UserID:              userID,
		Latitude:            *req.Latitude,
		Longitude:           *req.Longitude,
		RadiusMeters:        req.RadiusMeters,
		IsEnabled:           req.IsEnabled,
		EnableWaveAfterExit: req.EnableWaveAfterExit,
	}
	if err := h.safetyRepo.UpsertZone(zone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SafetyHandler) GetZone(c *gin.Context) {
	userID := middleware.GetUserID(c)
	zone, err := h.safetyRepo.ZoneOf(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if zone == nil {
		c.JSON(http.StatusOK, gin.H{"zone": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"zone": zone})
}
