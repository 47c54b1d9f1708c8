package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	impl "github.com/emberwatch/emberwatch/internal/application/services"
	"github.com/emberwatch/emberwatch/internal/core/domain/event"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	tmocks "github.com/emberwatch/emberwatch/test/mocks"
	"github.com/sirupsen/logrus"
)

func testEvent() *event.Event {
	return &event.Event{
		ID:        "aaaabbbbccccddddeeeeffff00001111",
		Message:   "connection reset by peer",
		GroupHash: "deadbeefdeadbeefdeadbeefdeadbeef",
		Exceptions: []event.Exception{
			{Type: "ConnectionError", Value: "connection reset by peer"},
		},
	}
}

func TestSuggest_CacheHitSkipsModel(t *testing.T) {
	cache := &tmocks.CacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		if key != "ai:deadbeefdeadbeefdeadbeefdeadbeef" {
			t.Fatalf("unexpected cache key %q", key)
		}
		return []byte("cached suggestion"), true, nil
	}}
	llm := &tmocks.ChatCompleterMock{CompleteFn: func(ctx context.Context, messages []ports.ChatMessage) (string, error) {
		t.Fatalf("model should not be called on cache hit")
		return "", nil
	}}

	svc := impl.NewSuggestionService(cache, llm, time.Minute, logrus.New())
	got, err := svc.Suggest(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "cached suggestion" {
		t.Fatalf("expected cached suggestion, got %q", got)
	}
}

func TestSuggest_CacheMissCallsModelAndCaches(t *testing.T) {
	var setKey string
	var setValue []byte
	var setTTL time.Duration
	cache := &tmocks.CacheMock{
		SetFn: func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
			setKey, setValue, setTTL = key, value, ttl
			return nil
		},
	}

	var sawUserPayload string
	llm := &tmocks.ChatCompleterMock{CompleteFn: func(ctx context.Context, messages []ports.ChatMessage) (string, error) {
		if len(messages) != 2 {
			t.Fatalf("expected system + user message, got %d", len(messages))
		}
		if messages[0].Role != ports.ChatRoleSystem || messages[1].Role != ports.ChatRoleUser {
			t.Fatalf("unexpected message roles: %s, %s", messages[0].Role, messages[1].Role)
		}
		sawUserPayload = messages[1].Content
		return "restart the flux capacitor", nil
	}}

	svc := impl.NewSuggestionService(cache, llm, time.Minute, logrus.New())
	got, err := svc.Suggest(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "restart the flux capacitor" {
		t.Fatalf("unexpected suggestion %q", got)
	}
	if setKey != "ai:deadbeefdeadbeefdeadbeefdeadbeef" {
		t.Fatalf("suggestion cached under wrong key %q", setKey)
	}
	if string(setValue) != got {
		t.Fatalf("cached value %q does not match reply", setValue)
	}
	if setTTL != time.Minute {
		t.Fatalf("expected ttl of 1m, got %v", setTTL)
	}
	if !strings.Contains(sawUserPayload, "ConnectionError") {
		t.Fatalf("user message should carry the event description, got %q", sawUserPayload)
	}
}

func TestSuggest_ModelErrorPropagates(t *testing.T) {
	cache := &tmocks.CacheMock{}
	llm := &tmocks.ChatCompleterMock{CompleteFn: func(ctx context.Context, messages []ports.ChatMessage) (string, error) {
		return "", errors.New("model unavailable")
	}}

	svc := impl.NewSuggestionService(cache, llm, time.Minute, logrus.New())
	_, err := svc.Suggest(context.Background(), testEvent())
	if err == nil {
		t.Fatalf("expected error from model")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("error should wrap the model failure, got %v", err)
	}
}

func TestSuggest_ConcurrentMissesCoalesced(t *testing.T) {
	var mu sync.Mutex
	store := make(map[string][]byte)
	cache := &tmocks.CacheMock{
		GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
			mu.Lock()
			defer mu.Unlock()
			v, ok := store[key]
			return v, ok, nil
		},
		SetFn: func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			store[key] = value
			return nil
		},
	}

	var calls int32
	release := make(chan struct{})
	llm := &tmocks.ChatCompleterMock{CompleteFn: func(ctx context.Context, messages []ports.ChatMessage) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "one reply", nil
	}}

	svc := impl.NewSuggestionService(cache, llm, time.Minute, logrus.New())
	ev := testEvent()

	const workers = 8
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Suggest(context.Background(), ev)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- got
		}()
	}

	// let the workers pile onto the in-flight request, then let it finish
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for got := range results {
		if got != "one reply" {
			t.Fatalf("every caller must see the shared reply, got %q", got)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("concurrent misses for one group must share one model call, got %d", n)
	}
}

func TestSuggest_CacheReadErrorFallsBackToModel(t *testing.T) {
	cache := &tmocks.CacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		return nil, false, errors.New("redis down")
	}}
	llm := &tmocks.ChatCompleterMock{CompleteFn: func(ctx context.Context, messages []ports.ChatMessage) (string, error) {
		return "fresh reply", nil
	}}

	svc := impl.NewSuggestionService(cache, llm, time.Minute, logrus.New())
	got, err := svc.Suggest(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("cache failure must not fail the request: %v", err)
	}
	if got != "fresh reply" {
		t.Fatalf("unexpected suggestion %q", got)
	}
}
