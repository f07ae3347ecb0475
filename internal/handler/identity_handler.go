package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"flitz/internal/domain"
	"flitz/internal/middleware"
	"flitz/internal/models"
	"flitz/internal/repository"
)

type IdentityHandler struct {
	userRepo *repository.UserRepository
}

func NewIdentityHandler(userRepo *repository.UserRepository) *IdentityHandler {
	return &IdentityHandler{userRepo: userRepo}
}

// Upsert writes the caller's identity. Gender sets cross the API as string
// arrays; they only become bitmasks at the storage boundary.
func (h *IdentityHandler) Upsert(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Gender                []string `json:"gender"`
		IsTrans               bool     `json:"is_trans"`
		DisplayTransToOthers  bool     `json:"display_trans_to_others"`
		PreferredGenders      []string `json:"preferred_genders"`
		WelcomesTrans         bool     `json:"welcomes_trans"`
		TransPrefersSafeMatch bool     `json:"trans_prefers_safe_match"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gender, err := domain.ParseGenderSet(req.Gender)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preferred, err := domain.ParseGenderSet(req.PreferredGenders)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident := &models.UserIdentity{
		UserID:                userID,
		Gender:                gender,
		IsTrans:               req.IsTrans,
		DisplayTransToOthers:  req.DisplayTransToOthers,
		PreferredGenders:      preferred,
		WelcomesTrans:         req.WelcomesTrans,
		TransPrefersSafeMatch: req.TransPrefersSafeMatch,
	}
	if err := h.userRepo.UpsertIdentity(ident); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *IdentityHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ident, err := h.userRepo.IdentityOf(userID)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "identity not set"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gender":                   ident.Gender.Strings(),
		"is_trans":                 ident.IsTrans,
		"display_trans_to_others":  ident.DisplayTransToOthers,
		"preferred_genders":        ident.PreferredGenders.Strings(),
		"welcomes_trans":           ident.WelcomesTrans,
		"trans_prefers_safe_match": ident.TransPrefersSafeMatch,
	})
}
