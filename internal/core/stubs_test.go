package core

import (
	"context"
	"sync"
)

type stubDispatcher struct {
	mu       sync.Mutex
	sent     []*EmailTemplate
	sendFunc func(ctx context.Context, tpl *EmailTemplate) (string, error)
}

func (s *stubDispatcher) Send(ctx context.Context, tpl *EmailTemplate) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, tpl)
	s.mu.Unlock()
	if s.sendFunc != nil {
		return s.sendFunc(ctx, tpl)
	}
	return "Queued. Thank you.", nil
}

func (s *stubDispatcher) calls() []*EmailTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*EmailTemplate(nil), s.sent...)
}

type stubChat struct {
	mu       sync.Mutex
	posted   []*ChatMessage
	sendFunc func(ctx context.Context, msg *ChatMessage) (*ChatResponse, error)
}

func (s *stubChat) SendMessage(ctx context.Context, msg *ChatMessage) (*ChatResponse, error) {
	s.mu.Lock()
	s.posted = append(s.posted, msg)
	s.mu.Unlock()
	if s.sendFunc != nil {
		return s.sendFunc(ctx, msg)
	}
	return &ChatResponse{Channel: msg.Channel, TS: "1700000000.000100"}, nil
}

type stubSummarizer struct {
	summarizeFunc func(ctx context.Context, email *ReceivedEmail) (string, error)
}

func (s *stubSummarizer) Summarize(ctx context.Context, email *ReceivedEmail) (string, error) {
	return s.summarizeFunc(ctx, email)
}

// mapLog is a ResponseLog without cooldown expiry
type mapLog struct {
	mu       sync.Mutex
	sent     map[string]bool
	reserves int
}

func newMapLog() *mapLog {
	return &mapLog{sent: make(map[string]bool)}
}

func (l *mapLog) CanSend(address string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.sent[address]
}

func (l *mapLog) LogSend(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent[address] = true
}

func (l *mapLog) TryReserve(address string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reserves++
	if l.sent[address] {
		return false
	}
	l.sent[address] = true
	return true
}

func (l *mapLog) CooldownMinutes() int64 {
	return 10
}

type suppressAll map[string]bool

func (s suppressAll) IsSuppressed(address string) bool {
	return s[address]
}
