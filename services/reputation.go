package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bug-bounty-system/models"
	"bug-bounty-system/utils"

	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "bounty:leaderboard:top"
	leaderboardCacheTTL = 2 * time.Minute
	leaderboardSize     = 20
)

// ReputationService is a read-only view over the reputation ledger. All
// writes go through the arbitration flow.
type ReputationService struct {
	DB *gorm.DB
}

func NewReputationService(db *gorm.DB) *ReputationService {
	return &ReputationService{DB: db}
}

// UserReputation bundles the score with its recent explaining events.
type UserReputation struct {
	UserID       string                   `json:"user_id"`
	Username     string                   `json:"username"`
	Reputation   int                      `json:"reputation"`
	RecentEvents []models.ReputationEvent `json:"recent_events"`
}

// GetUserReputation returns a user's score and the last 20 ledger events.
func (s *ReputationService) GetUserReputation(userID string) (*UserReputation, error) {
	var user models.BountyUser
	if err := s.DB.Where("external_user_id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}

	var events []models.ReputationEvent
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(20).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return &UserReputation{
		UserID:       user.ExternalUserID,
		Username:     user.Username,
		Reputation:   user.Reputation,
		RecentEvents: events,
	}, nil
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Reputation int    `json:"reputation"`
}

// Leaderboard returns the top users by reputation, served from the Redis
// snapshot when available.
func (s *ReputationService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if utils.RedisClient != nil {
		cached, err := utils.RedisClient.Get(ctx, leaderboardCacheKey).Result()
		if err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}
	return s.RefreshLeaderboard(ctx)
}

// RefreshLeaderboard recomputes the leaderboard from Postgres and writes the
// snapshot back to Redis. Also used by the periodic scheduler job.
func (s *ReputationService) RefreshLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := s.DB.Model(&models.BountyUser{}).
		Select("external_user_id AS user_id, username, reputation").
		Where("reputation > 0").
		Order("reputation DESC").
		Limit(leaderboardSize).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	if utils.RedisClient != nil {
		payload, err := json.Marshal(entries)
		if err == nil {
			if err := utils.RedisClient.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("[LEADERBOARD] ⚠️ Failed to cache snapshot: %v", err)
			}
		}
	}
	return entries, nil
}
