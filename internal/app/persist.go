package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/core"
	"github.com/chancia/quizlive/internal/domain"
)

// Record is one member's final result for one game.
type Record struct {
	Member domain.MemberID
	Room   domain.RoomKey
	Score  int
}

// Persister writes final results through a bounded queue with bounded
// retry, so a slow or dead sink can never stall the broadcast path. When
// the queue is full the record is dropped and logged; gameplay wins.
type Persister struct {
	sink     core.ScorePersister
	queue    chan Record
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

func NewPersister(sink core.ScorePersister, queueSize, attempts int, backoff, timeout time.Duration) *Persister {
	if queueSize <= 0 {
		queueSize = 256
	}
	if attempts <= 0 {
		attempts = 3
	}
	return &Persister{
		sink:     sink,
		queue:    make(chan Record, queueSize),
		attempts: attempts,
		backoff:  backoff,
		timeout:  timeout,
	}
}

// Enqueue never blocks. Nil-safe so callers don't care whether persistence
// is configured.
func (p *Persister) Enqueue(rec Record) {
	if p == nil || p.sink == nil {
		return
	}
	select {
	case p.queue <- rec:
	default:
		log.Warn().Str("module", "app.persist").Str("sid", string(rec.Member)).Str("room", string(rec.Room)).Msg("persist queue full, dropping record")
	}
}

// Run drains the queue until ctx is canceled. Start it once from main.
func (p *Persister) Run(ctx context.Context) {
	if p == nil || p.sink == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-p.queue:
			p.store(ctx, rec)
		}
	}
}

func (p *Persister) store(ctx context.Context, rec Record) {
	for attempt := 1; attempt <= p.attempts; attempt++ {
		actx := ctx
		var cancel context.CancelFunc = func() {}
		if p.timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, p.timeout)
		}
		err := p.sink.Record(actx, rec.Member, rec.Room, rec.Score)
		cancel()
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("module", "app.persist").Int("attempt", attempt).Str("room", string(rec.Room)).Msg("score persist failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.backoff):
		}
	}
	log.Error().Str("module", "app.persist").Str("sid", string(rec.Member)).Str("room", string(rec.Room)).Msg("giving up on score persist")
}
