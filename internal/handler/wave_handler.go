package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flitz/internal/middleware"
	"flitz/internal/service"
)

type WaveHandler struct {
	wave *service.WaveMatcher
}

func NewWaveHandler(wave *service.WaveMatcher) *WaveHandler {
	return &WaveHandler{wave: wave}
}

func (h *WaveHandler) StartDiscovery(c *gin.Context) {
	userID := middleware.GetUserID(c)
	session, err := h.wave.StartDiscovery(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "start failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID})
}

func (h *WaveHandler) StopDiscovery(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.wave.StopDiscovery(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stop failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_success": true})
}

func (h *WaveHandler) ReportDiscovery(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		SessionID           uint     `json:"session_id" binding:"required"`
		DiscoveredSessionID uint     `json:"discovered_session_id" binding:"required"`
		Latitude            *float64 `json:"latitude" binding:"required"`
		Longitude           *float64 `json:"longitude" binding:"required"`
		Altitude            float64  `json:"altitude"`
		Accuracy            float64  `json:"accuracy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matched, err := h.wave.ReportDiscovery(userID, req.SessionID, req.DiscoveredSessionID, service.DiscoveryReport{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Altitude:  req.Altitude,
		Accuracy:  req.Accuracy,
	})
	switch err {
	case nil:
	case service.ErrSameSession, service.ErrInactiveSession, service.ErrNotSessionOwner:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched": matched})
}
