package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flitz/internal/middleware"
	"flitz/internal/models"
	"flitz/internal/repository"
)

type LocationHandler struct {
	locRepo *repository.LocationRepository
}

func NewLocationHandler(locRepo *repository.LocationRepository) *LocationHandler {
	return &LocationHandler{locRepo: locRepo}
}

// Update upserts the caller's location. Bucket key and timezone are derived
// server-side and returned so clients can observe their current cell.
func (h *LocationHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
		Altitude  float64  `json:"altitude"`
		Accuracy  float64  `json:"accuracy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc := &models.UserLocation{
		UserID:    userID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Altitude:  req.Altitude,
		Accuracy:  req.Accuracy,
	}
	if err := h.locRepo.Upsert(loc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bucket": loc.Geohash, "timezone": loc.Timezone})
}
