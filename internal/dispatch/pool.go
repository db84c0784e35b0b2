package dispatch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
)

// ErrPoolStopped is returned by Submit after Stop
var ErrPoolStopped = errors.New("worker pool stopped")

// DefaultQueueSize is the per-worker queue length
const DefaultQueueSize = 64

// Handler processes one message
type Handler func(ctx context.Context, msg *core.Message)

// Pool runs a fixed set of workers. Messages of one chat always land on the
// same worker, so they are handled one at a time in submission order.
type Pool struct {
	handler Handler
	logger  *zap.Logger
	queues  []chan *core.Message
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewPool starts workers goroutines that call handler with ctx
func NewPool(ctx context.Context, workers, queueSize int, handler Handler, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	p := &Pool{
		handler: handler,
		logger:  logger,
		queues:  make([]chan *core.Message, workers),
	}
	for i := range p.queues {
		p.queues[i] = make(chan *core.Message, queueSize)
		p.wg.Add(1)
		go p.work(ctx, p.queues[i])
	}

	logger.Debug("Started worker pool", zap.Int("workers", workers), zap.Int("queue_size", queueSize))
	return p
}

func (p *Pool) work(ctx context.Context, queue <-chan *core.Message) {
	defer p.wg.Done()
	for msg := range queue {
		p.handler(ctx, msg)
	}
}

// worker picks the queue for a chat. Negative ids (groups) are mapped via
// their unsigned value.
func (p *Pool) worker(chatID int64) int {
	return int(uint64(chatID) % uint64(len(p.queues)))
}

// Submit queues msg on its chat's worker. It blocks while that worker's
// queue is full, until ctx is done.
func (p *Pool) Submit(ctx context.Context, msg *core.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queues[p.worker(msg.Chat.ID)] <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queues and waits until queued messages are handled
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Debug("Stopped worker pool")
}
