package ai

import (
	"context"
	"sync"
)

// stubTransport replays canned replies and counts calls
type stubTransport struct {
	mu      sync.Mutex
	calls   int
	last    Request
	replies []stubReply
}

type stubReply struct {
	text string
	err  error
}

func replyWith(text string) *stubTransport {
	return &stubTransport{replies: []stubReply{{text: text}}}
}

func (s *stubTransport) Generate(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = req
	idx := s.calls
	s.calls++
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	r := s.replies[idx]
	return r.text, r.err
}

func (s *stubTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
