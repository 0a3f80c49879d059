package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftden/draftden/internal/database"
	"github.com/draftden/draftden/internal/database/draft/model"
	"github.com/draftden/draftden/internal/logging"
	"github.com/valyala/fastrand"
)

var ErrConcurrencyExhausted = fmt.Errorf("conflicting writes exhausted retries")

// Store is the versioned draft store the guard drives. Put must return
// database.ErrConflict when the document changed since Fetch.
type Store interface {
	Fetch(id string) (*model.Draft, error)
	Put(draft *model.Draft) error
}

// Guard serializes draft mutations optimistically: fetch, apply, put,
// and on a version conflict reload and reapply after a jittered pause.
type Guard struct {
	store    Store
	attempts int
	delay    time.Duration
}

func New(store Store, attempts int, delay time.Duration) *Guard {
	if attempts <= 0 {
		attempts = 1
	}
	return &Guard{store: store, attempts: attempts, delay: delay}
}

// Update fetches the draft, applies fn and writes it back, retrying on
// write conflicts. Errors returned by fn abort immediately and are
// passed through, so invalid requests never burn retries. The returned
// draft is the successfully written state.
func (g *Guard) Update(ctx context.Context, id string, fn func(*model.Draft) error) (*model.Draft, error) {
	logger := logging.FromContext(ctx)

	for attempt := 0; attempt < g.attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, jitter(g.delay)); err != nil {
				return nil, err
			}
		}

		draft, err := g.store.Fetch(id)
		if err != nil {
			return nil, fmt.Errorf("fetch draft: %w", err)
		}

		if err := fn(draft); err != nil {
			return nil, err
		}

		err = g.store.Put(draft)
		if err == nil {
			return draft, nil
		}
		if !errors.Is(err, database.ErrConflict) {
			return nil, fmt.Errorf("put draft: %w", err)
		}
		logger.Debugf("draft %s write conflict, attempt %d", id, attempt+1)
	}

	return nil, ErrConcurrencyExhausted
}

// Retry runs fn until it stops returning a version conflict, with the
// same attempt budget and backoff as Update. Meant for stores whose
// reload logic lives inside fn, like deck saves.
func (g *Guard) Retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < g.attempts; attempt++ {
		if attempt > 0 {
			if serr := sleep(ctx, jitter(g.delay)); serr != nil {
				return serr
			}
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrConflict) {
			return err
		}
	}

	return ErrConcurrencyExhausted
}

// jitter spreads retries across half to full delay so colliding writers
// desynchronize.
func jitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	half := uint32(delay / 2)
	return time.Duration(half + fastrand.Uint32n(half+1))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
