package service

import (
	"context"
	"sync"
)

// RequestTracker реализует правило "побеждает последний запрос" для
// каждого ключа (обычно чат и экран). Новый запрос отменяет контекст
// предыдущего, а результат вытесненного запроса отбрасывается.
type RequestTracker struct {
	mu     sync.Mutex
	seq    map[string]uint64
	cancel map[string]context.CancelFunc
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{
		seq:    make(map[string]uint64),
		cancel: make(map[string]context.CancelFunc),
	}
}

type trackedRequest struct {
	ctx    context.Context
	key    string
	seq    uint64
	cancel context.CancelFunc
}

func (t *RequestTracker) begin(parent context.Context, key string) *trackedRequest {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.cancel[key]; ok {
		prev()
	}
	t.seq[key]++
	t.cancel[key] = cancel
	return &trackedRequest{ctx: ctx, key: key, seq: t.seq[key], cancel: cancel}
}

func (t *RequestTracker) latest(r *trackedRequest) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq[r.key] == r.seq
}

func (t *RequestTracker) finish(r *trackedRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r.cancel()
	if t.seq[r.key] == r.seq {
		delete(t.cancel, r.key)
	}
}

// Latest выполняет fn под ключом key. Если за время выполнения пришел
// более новый запрос с тем же ключом, возвращается ErrStaleRequest.
func Latest[T any](t *RequestTracker, ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	req := t.begin(ctx, key)
	defer t.finish(req)

	out, err := fn(req.ctx)
	if !t.latest(req) {
		var zero T
		return zero, ErrStaleRequest
	}
	return out, err
}
