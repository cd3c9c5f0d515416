package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/data/redisStore"
	"github.com/akolanti/newschat/internal/data/store"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisMessageStore(t *testing.T, window int) (*store.RedisMessageStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisMessageStore(redisStore.NewTestStore(client), window), mr
}

// both implementations must behave the same way
func messageStores(t *testing.T, window int) map[string]jobModel.MessageStore {
	redisBacked, _ := newRedisMessageStore(t, window)
	return map[string]jobModel.MessageStore{
		"redis":    redisBacked,
		"inMemory": store.InitMessageStore(window),
	}
}

func TestMessageStore_Conversation(t *testing.T) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "mem-trace")

	for name, s := range messageStores(t, 0) {
		t.Run(name, func(t *testing.T) {
			if s.ValidateChatId(ctx, "c1") {
				t.Fatal("chat should not exist before InitNewChat")
			}
			if err := s.TrySaveChat(ctx, "c1", commonModels.ChatTurn{Question: "q"}); !errors.Is(err, store.ErrUnknownChat) {
				t.Fatalf("TrySaveChat on unknown chat = %v, want ErrUnknownChat", err)
			}

			if err := s.InitNewChat(ctx, "c1"); err != nil {
				t.Fatalf("InitNewChat failed: %v", err)
			}
			if !s.ValidateChatId(ctx, "c1") {
				t.Fatal("chat should exist after InitNewChat")
			}

			history, err := s.GetMessageHistory(ctx, "c1")
			if err != nil || len(history) != 0 {
				t.Fatalf("new chat history = %v, %v; want empty", history, err)
			}

			for i := 1; i <= 3; i++ {
				turn := commonModels.ChatTurn{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)}
				if err := s.TrySaveChat(ctx, "c1", turn); err != nil {
					t.Fatalf("TrySaveChat failed: %v", err)
				}
			}

			history, err = s.GetMessageHistory(ctx, "c1")
			if err != nil {
				t.Fatalf("GetMessageHistory failed: %v", err)
			}
			if len(history) != 3 || history[0].Question != "q1" || history[2].Answer != "a3" {
				t.Errorf("history out of order or incomplete: %+v", history)
			}

			if err := s.DeleteChat(ctx, "c1"); err != nil {
				t.Fatalf("DeleteChat failed: %v", err)
			}
			if s.ValidateChatId(ctx, "c1") {
				t.Error("chat should be gone after DeleteChat")
			}
			if err := s.DeleteChat(ctx, "c1"); !errors.Is(err, store.ErrUnknownChat) {
				t.Errorf("second DeleteChat = %v, want ErrUnknownChat", err)
			}
		})
	}
}

func TestMessageStore_Window(t *testing.T) {
	ctx := context.Background()

	for name, s := range messageStores(t, 2) {
		t.Run(name, func(t *testing.T) {
			_ = s.InitNewChat(ctx, "w")
			for _, q := range []string{"one", "two", "three"} {
				_ = s.TrySaveChat(ctx, "w", commonModels.ChatTurn{Question: q, Answer: q})
			}
			history, err := s.GetMessageHistory(ctx, "w")
			if err != nil {
				t.Fatal(err)
			}
			if len(history) != 2 || history[0].Question != "two" || history[1].Question != "three" {
				t.Errorf("windowed history = %+v, want [two three]", history)
			}

			transcript, err := s.GetTranscript(ctx, "w")
			if err != nil {
				t.Fatal(err)
			}
			if len(transcript) != 3 || transcript[0].Question != "one" {
				t.Errorf("transcript = %+v, want all three turns", transcript)
			}
		})
	}
}

func TestRedisMessageStore_TTLRefreshed(t *testing.T) {
	s, mr := newRedisMessageStore(t, 0)
	ctx := context.Background()

	_ = s.InitNewChat(ctx, "ttl")
	mr.FastForward(config.RedisMessageStoreTTL / 2)
	_ = s.TrySaveChat(ctx, "ttl", commonModels.ChatTurn{Question: "q", Answer: "a"})

	if ttl := mr.TTL("chat:ttl"); ttl != config.RedisMessageStoreTTL {
		t.Errorf("TTL after write = %v, want %v", ttl, config.RedisMessageStoreTTL)
	}
}
