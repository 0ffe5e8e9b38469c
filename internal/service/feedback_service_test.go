package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/errors"
)

// fakeFeedbackQueue keeps per-key lists and values in memory and signals
// pushed so tests can wait for the background generation instead of sleeping.
type fakeFeedbackQueue struct {
	mu     sync.Mutex
	lists  map[string][][]byte
	values map[string][]byte
	ttls   map[string]time.Duration
	pushed chan string
}

func newFakeFeedbackQueue() *fakeFeedbackQueue {
	return &fakeFeedbackQueue{
		lists:  make(map[string][][]byte),
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
		pushed: make(chan string, 8),
	}
}

func (f *fakeFeedbackQueue) RPush(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.lists[key] = append(f.lists[key], data)
	f.mu.Unlock()
	f.pushed <- key
	return nil
}

func (f *fakeFeedbackQueue) SetExpiry(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	f.ttls[key] = ttl
	f.mu.Unlock()
	return nil
}

func (f *fakeFeedbackQueue) BLPop(_ context.Context, _ time.Duration, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.lists[key]
	if len(list) == 0 {
		return nil, client.ErrCacheMiss
	}
	f.lists[key] = list[1:]
	return list[0], nil
}

func (f *fakeFeedbackQueue) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.values[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeFeedbackQueue) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	for _, key := range keys {
		delete(f.values, key)
		delete(f.lists, key)
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeFeedbackQueue) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok, nil
}

// fakeChat answers with a fixed reply; an optional gate holds the reply back
// until the test releases it.
type fakeChat struct {
	reply string
	err   error
	gate  chan struct{}
}

func (f *fakeChat) Available() bool { return true }

func (f *fakeChat) Chat(_ context.Context, _, _, _ string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.reply, f.err
}

func waitForPush(t *testing.T, queue *fakeFeedbackQueue) {
	t.Helper()
	select {
	case <-queue.pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("no feedback result was queued")
	}
}

// waitForPendingClear waits until generation has removed the pending marker,
// which happens after the result push.
func waitForPendingClear(t *testing.T, queue *fakeFeedbackQueue, requestID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ok, _ := queue.Exists(context.Background(), feedbackPendingKeyPrefix+requestID)
		if !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("pending marker never cleared")
}

func newTestSubmission() *SubmitResponse {
	return &SubmitResponse{
		BlockID:  uuid.New(),
		Score:    1,
		MaxScore: 2,
		Outcomes: []ExerciseOutcome{
			{ExerciseID: "ex-1", Correct: true, Topic: "dative case", Answer: "dem Mann"},
			{ExerciseID: "ex-2", Correct: false, Topic: "word order", Answer: "falsch", CorrectAnswer: "richtig"},
		},
	}
}

func TestFeedbackServiceRequestAndGet(t *testing.T) {
	queue := newFakeFeedbackQueue()
	svc := NewFeedbackService(nil, queue, &fakeChat{reply: "  Gut gemacht!  "}, zerolog.Nop())

	requestID, err := svc.RequestFeedback(context.Background(), uuid.New(), newTestSubmission())
	if err != nil {
		t.Fatalf("RequestFeedback() error = %v", err)
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("RequestFeedback() id = %q, want uuid", requestID)
	}
	waitForPush(t, queue)

	result, err := svc.GetFeedback(context.Background(), requestID)
	if err != nil {
		t.Fatalf("GetFeedback() error = %v", err)
	}
	if result.RequestID != requestID {
		t.Errorf("result request id = %q, want %q", result.RequestID, requestID)
	}
	if result.Status != FeedbackStatusDone || result.Feedback != "Gut gemacht!" {
		t.Errorf("result = %+v, want done with trimmed feedback", result)
	}

	if ttl := queue.ttls[feedbackResultKeyPrefix+requestID]; ttl != feedbackResultTTL {
		t.Errorf("result ttl = %v, want %v", ttl, feedbackResultTTL)
	}

	// The result is consumed by the pop; polling again finds nothing.
	waitForPendingClear(t, queue, requestID)
	_, err = svc.GetFeedback(context.Background(), requestID)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrNotFound {
		t.Errorf("GetFeedback() after consumption error = %v, want not found", err)
	}
}

func TestFeedbackServiceGetFeedbackPending(t *testing.T) {
	queue := newFakeFeedbackQueue()
	chat := &fakeChat{reply: "Weiter so!", gate: make(chan struct{})}
	svc := NewFeedbackService(nil, queue, chat, zerolog.Nop())

	requestID, err := svc.RequestFeedback(context.Background(), uuid.New(), newTestSubmission())
	if err != nil {
		t.Fatalf("RequestFeedback() error = %v", err)
	}

	// Generation is held back by the gate, so the poll sees it in flight.
	result, err := svc.GetFeedback(context.Background(), requestID)
	if err != nil {
		t.Fatalf("GetFeedback() while generating error = %v", err)
	}
	if result.Status != FeedbackStatusPending {
		t.Errorf("result status = %q, want %q", result.Status, FeedbackStatusPending)
	}

	close(chat.gate)
	waitForPush(t, queue)

	result, err = svc.GetFeedback(context.Background(), requestID)
	if err != nil {
		t.Fatalf("GetFeedback() after generation error = %v", err)
	}
	if result.Status != FeedbackStatusDone || result.Feedback != "Weiter so!" {
		t.Errorf("result = %+v, want done", result)
	}
}

func TestFeedbackServiceGetFeedbackProviderError(t *testing.T) {
	queue := newFakeFeedbackQueue()
	svc := NewFeedbackService(nil, queue, &fakeChat{err: errors.New(errors.ErrAIService, "provider down")}, zerolog.Nop())

	requestID, err := svc.RequestFeedback(context.Background(), uuid.New(), newTestSubmission())
	if err != nil {
		t.Fatalf("RequestFeedback() error = %v", err)
	}
	waitForPush(t, queue)

	_, err = svc.GetFeedback(context.Background(), requestID)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrAIService {
		t.Errorf("GetFeedback() error = %v, want AI service error", err)
	}
}

func TestFeedbackServiceRequestValidation(t *testing.T) {
	queue := newFakeFeedbackQueue()
	svc := NewFeedbackService(nil, queue, &fakeChat{reply: "ok"}, zerolog.Nop())

	if _, err := svc.RequestFeedback(context.Background(), uuid.New(), &SubmitResponse{}); err == nil {
		t.Error("RequestFeedback() without outcomes expected error, got nil")
	}
	if _, err := svc.GetFeedback(context.Background(), "not-a-uuid"); err == nil {
		t.Error("GetFeedback() with malformed id expected error, got nil")
	}
}
