package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const chatHistoryLimit = 50
const chatHistoryTTL = 5 * time.Minute

type ChatRepository interface {
	Create(ctx context.Context, message *model.ChatMessage) error
	History(ctx context.Context, userID uint, assessmentID *uint) ([]model.ChatMessage, error)
}

// chatRepository caches the recent-history window in redis; the database
// stays the source of truth and the cache is dropped on every new message.
type chatRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewChatRepository(db *gorm.DB, rdb *redis.Client) ChatRepository {
	return &chatRepository{db: db, rdb: rdb}
}

func historyCacheKey(userID uint, assessmentID *uint) string {
	if assessmentID != nil {
		return fmt.Sprintf("chat:history:%d:assessment:%d", userID, *assessmentID)
	}
	return fmt.Sprintf("chat:history:%d", userID)
}

func (r *chatRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return err
	}
	if r.rdb != nil {
		keys := []string{historyCacheKey(message.UserID, nil)}
		if message.AssessmentID != nil {
			keys = append(keys, historyCacheKey(message.UserID, message.AssessmentID))
		}
		if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate chat history cache")
		}
	}
	return nil
}

func (r *chatRepository) History(ctx context.Context, userID uint, assessmentID *uint) ([]model.ChatMessage, error) {
	key := historyCacheKey(userID, assessmentID)

	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
			var messages []model.ChatMessage
			if err := json.Unmarshal(cached, &messages); err == nil {
				return messages, nil
			}
			log.Warn().Str("key", key).Msg("Dropping undecodable chat history cache entry")
			r.rdb.Del(ctx, key)
		}
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if assessmentID != nil {
		query = query.Where("assessment_id = ?", *assessmentID)
	}

	var messages []model.ChatMessage
	if err := query.Order("created_at ASC").Limit(chatHistoryLimit).Find(&messages).Error; err != nil {
		return nil, err
	}

	if r.rdb != nil {
		if encoded, err := json.Marshal(messages); err == nil {
			if err := r.rdb.Set(ctx, key, encoded, chatHistoryTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to cache chat history")
			}
		}
	}
	return messages, nil
}
