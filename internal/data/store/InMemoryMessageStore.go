package store

import (
	"context"
	"sync"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/patrickmn/go-cache"
)

// InMemoryMessageStore keeps chat memory in process with the same TTL as redis.
type InMemoryMessageStore struct {
	chatLock sync.Mutex
	chats    *cache.Cache
	window   int
	logger   *logger_i.Logger
}

func InitMessageStore(window int) *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chats:  cache.New(config.RedisMessageStoreTTL, config.RedisMessageStoreTTL/4),
		window: window,
		logger: logger_i.NewLogger("InMem MessageStore"),
	}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	_, ok := store.chats.Get(chatId)
	return ok
}

func (store *InMemoryMessageStore) TrySaveChat(ctx context.Context, id string, turn commonModels.ChatTurn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()

	v, ok := store.chats.Get(id)
	if !ok {
		return ErrUnknownChat
	}
	turns := v.([]commonModels.ChatTurn)
	next := make([]commonModels.ChatTurn, len(turns), len(turns)+1)
	copy(next, turns)
	store.chats.SetDefault(id, append(next, turn))
	store.logger.WithTrace(ctx).Debug("Saved turn to chat message store", "chatId", id)
	return nil
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chats.SetDefault(id, []commonModels.ChatTurn{})
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
	return store.lastTurns(chatId, store.window), nil
}

func (store *InMemoryMessageStore) GetTranscript(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
	return store.lastTurns(chatId, 0), nil
}

// lastTurns copies the last n turns, all of them when n <= 0.
func (store *InMemoryMessageStore) lastTurns(chatId string, n int) []commonModels.ChatTurn {
	v, ok := store.chats.Get(chatId)
	if !ok {
		return nil
	}
	turns := v.([]commonModels.ChatTurn)
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]commonModels.ChatTurn, len(turns))
	copy(out, turns)
	return out
}

func (store *InMemoryMessageStore) DeleteChat(ctx context.Context, chatId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	if _, ok := store.chats.Get(chatId); !ok {
		return ErrUnknownChat
	}
	store.chats.Delete(chatId)
	return nil
}
