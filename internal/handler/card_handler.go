package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"flitz/internal/middleware"
	"flitz/internal/models"
	"flitz/internal/repository"
)

type CardHandler struct {
	cardRepo *repository.CardRepository
	userRepo *repository.UserRepository
}

func NewCardHandler(cardRepo *repository.CardRepository, userRepo *repository.UserRepository) *CardHandler {
	return &CardHandler{cardRepo: cardRepo, userRepo: userRepo}
}

func (h *CardHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Title   string          `json:"title" binding:"required,max=32"`
		Content json.RawMessage `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	card := &models.Card{
		UserID:  userID,
		Title:   req.Title,
		Content: string(req.Content),
	}
	if err := h.cardRepo.Create(card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": card.ID})
}

// SetMain designates one of the caller's cards as their main card, the one
// exchanged by the matchers.
func (h *CardHandler) SetMain(c *gin.Context) {
	userID := middleware.GetUserID(c)
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}
	card, err := h.cardRepo.GetByID(uint(cardID))
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if card.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your card"})
		return
	}
	if err := h.userRepo.SetMainCard(userID, card.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListReceived returns the caller's live distributions. Card content is
// withheld unless the distribution is fully revealed.
func (h *CardHandler) ListReceived(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ds, err := h.cardRepo.DistributionsFor(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	out := make([]gin.H, 0, len(ds))
	for i := range ds {
		d := &ds[i]
		item := gin.H{
			"id":           d.ID,
			"reveal_phase": d.RevealPhase.String(),
			"received_at":  d.CreatedAt,
		}
		if d.RevealPhase == models.RevealFullyRevealed {
			item["card"] = gin.H{
				"id":      d.Card.ID,
				"title":   d.Card.Title,
				"content": json.RawMessage(d.Card.Content),
			}
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"distributions": out})
}

func (h *CardHandler) Dismiss(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid distribution id"})
		return
	}
	err = h.cardRepo.DismissDistribution(uint(id), userID)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "distribution not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dismiss failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
