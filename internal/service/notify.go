package service

import (
	"context"
	"encoding/json"
	"strconv"

	"flitz/internal/models"
	"flitz/internal/repository"
)

// Notifier is the event surface the core exposes. Each event carries enough
// identifiers for a dispatcher to act; delivery transport is not the core's
// concern.
type Notifier interface {
	DistributionCreated(recipientID, cardID, opponentID uint)
	DistributionRevealed(recipientID, cardID, opponentID uint)
	MatchFinalized(userA, userB uint)
}

// NopNotifier drops all events. Used in tests.
type NopNotifier struct{}

func (NopNotifier) DistributionCreated(uint, uint, uint)  {}
func (NopNotifier) DistributionRevealed(uint, uint, uint) {}
func (NopNotifier) MatchFinalized(uint, uint)             {}

// NotificationService persists notification rows and pushes via FCM.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm}
}

func (s *NotificationService) notify(userID uint, notifType, title, body string, data map[string]any) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	_ = s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	s.sendPush(userID, title, body, data)
}

func (s *NotificationService) sendPush(userID uint, title, body string, data map[string]any) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u.FCMToken == "" {
		return
	}
	push := make(map[string]string, len(data))
	for k, v := range data {
		switch t := v.(type) {
		case string:
			push[k] = t
		case uint:
			push[k] = strconv.FormatUint(uint64(t), 10)
		default:
			b, _ := json.Marshal(v)
			push[k] = string(b)
		}
	}
	_ = s.fcm.Send(context.Background(), u.FCMToken, title, body, push)
}

func (s *NotificationService) DistributionCreated(recipientID, cardID, opponentID uint) {
	s.notify(recipientID, "DISTRIBUTION_CREATED", "A card landed nearby",
		"Someone exchanged a card with you.",
		map[string]any{"card_id": cardID, "opponent_id": opponentID})
}

func (s *NotificationService) DistributionRevealed(recipientID, cardID, opponentID uint) {
	s.notify(recipientID, "DISTRIBUTION_REVEALED", "A card was revealed",
		"A card you received is now fully visible.",
		map[string]any{"card_id": cardID, "opponent_id": opponentID})
}

func (s *NotificationService) MatchFinalized(userA, userB uint) {
	s.notify(userA, "MATCH_FINALIZED", "It's a match",
		"You and another user discovered each other.",
		map[string]any{"opponent_id": userB})
	s.notify(userB, "MATCH_FINALIZED", "It's a match",
		"You and another user discovered each other.",
		map[string]any{"opponent_id": userA})
}
