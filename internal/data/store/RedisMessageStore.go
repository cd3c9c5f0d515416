package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/data/redisStore"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/pkg/logger_i"
)

const chatKeyPrefix = "chat:"

var ErrUnknownChat = errors.New("unknown chat id")

type RedisMessageStore struct {
	store  *redisStore.Store
	window int64
	logger *logger_i.Logger
}

// GetRedisMessageStore returns nil when redis is unreachable. window limits the
// history returned to the last N turns, 0 keeps everything.
func GetRedisMessageStore(ctx context.Context, opts redisStore.Options, window int) *RedisMessageStore {
	s := redisStore.GetRedisStore(ctx, config.RedisMessageStore, opts)
	if s == nil {
		return nil
	}
	return NewRedisMessageStore(s, window)
}

func NewRedisMessageStore(s *redisStore.Store, window int) *RedisMessageStore {
	return &RedisMessageStore{
		store:  s,
		window: int64(window),
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.WithTrace(ctx).With("chatId", chatId)
	isFound, err := s.store.Exists(ctx, chatKeyPrefix+chatId)
	if err != nil {
		log.Error("Failed to check if chatId exists", "error", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, turn commonModels.ChatTurn) error {
	if !s.ValidateChatId(ctx, id) {
		s.logger.WithTrace(ctx).Error("Failed validation before saving", "chatId", id)
		return ErrUnknownChat
	}
	return s.push(ctx, id, turn)
}

func (s *RedisMessageStore) push(ctx context.Context, id string, turn commonModels.ChatTurn) error {
	log := s.logger.WithTrace(ctx).With("chatId", id)
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal chat turn: %w", err)
	}
	if err = s.store.ListPush(ctx, chatKeyPrefix+id, data, config.RedisMessageStoreTTL); err != nil {
		log.Error("error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat successfully")
	return nil
}

// InitNewChat resets the chat and writes an empty placeholder so the key exists.
func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	s.logger.WithTrace(ctx).Debug("Initializing new chat", "chatId", id)
	if err := s.store.Del(ctx, chatKeyPrefix+id); err != nil {
		return fmt.Errorf("reset chat: %w", err)
	}
	return s.push(ctx, id, commonModels.ChatTurn{})
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
	log := s.logger.WithTrace(ctx).With("chatId", chatId)
	log.Debug("Getting message history")

	raw, err := s.store.ListGetLast(ctx, chatKeyPrefix+chatId, s.window)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}
	return decodeTurns(raw, log), nil
}

func (s *RedisMessageStore) GetTranscript(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
	raw, err := s.store.ListGetAll(ctx, chatKeyPrefix+chatId)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return decodeTurns(raw, s.logger.WithTrace(ctx).With("chatId", chatId)), nil
}

// decodeTurns drops the placeholder turn and anything that no longer parses.
func decodeTurns(raw []string, log *logger_i.Logger) []commonModels.ChatTurn {
	turns := make([]commonModels.ChatTurn, 0, len(raw))
	for _, r := range raw {
		var turn commonModels.ChatTurn
		if err := json.Unmarshal([]byte(r), &turn); err != nil {
			log.Warn("Skipping unreadable chat turn", "error", err)
			continue
		}
		if turn.IsEmpty() {
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}

func (s *RedisMessageStore) DeleteChat(ctx context.Context, chatId string) error {
	if !s.ValidateChatId(ctx, chatId) {
		return ErrUnknownChat
	}
	return s.store.Del(ctx, chatKeyPrefix+chatId)
}
