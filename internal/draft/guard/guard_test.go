package guard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/draftden/draftden/internal/database"
	"github.com/draftden/draftden/internal/database/draft/model"
	"github.com/stretchr/testify/require"
)

// stubStore conflicts on the first n puts, then accepts.
type stubStore struct {
	draft     *model.Draft
	conflicts int
	fetches   int
	puts      int
}

func (s *stubStore) Fetch(id string) (*model.Draft, error) {
	if s.draft == nil || s.draft.ID != id {
		return nil, database.ErrNotFound
	}
	s.fetches++
	copied := *s.draft
	return &copied, nil
}

func (s *stubStore) Put(draft *model.Draft) error {
	s.puts++
	if s.conflicts > 0 {
		s.conflicts--
		return database.ErrConflict
	}
	s.draft = draft
	return nil
}

func TestUpdateAppliesMutation(t *testing.T) {
	store := &stubStore{draft: &model.Draft{ID: "d1"}}
	g := New(store, 3, time.Millisecond)

	draft, err := g.Update(context.Background(), "d1", func(d *model.Draft) error {
		d.Host = "alice"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "alice", draft.Host)
	require.Equal(t, "alice", store.draft.Host)
}

func TestUpdateRetriesConflicts(t *testing.T) {
	store := &stubStore{draft: &model.Draft{ID: "d1"}, conflicts: 2}
	g := New(store, 3, time.Millisecond)

	_, err := g.Update(context.Background(), "d1", func(d *model.Draft) error {
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, store.fetches)
}

func TestUpdateExhaustsRetries(t *testing.T) {
	store := &stubStore{draft: &model.Draft{ID: "d1"}, conflicts: 10}
	g := New(store, 3, time.Millisecond)

	_, err := g.Update(context.Background(), "d1", func(d *model.Draft) error {
		return nil
	})
	require.True(t, errors.Is(err, ErrConcurrencyExhausted))
	require.Equal(t, 3, store.puts)
}

func TestUpdateDoesNotRetryFnErrors(t *testing.T) {
	store := &stubStore{draft: &model.Draft{ID: "d1"}}
	g := New(store, 3, time.Millisecond)

	wantErr := fmt.Errorf("bad pick")
	_, err := g.Update(context.Background(), "d1", func(d *model.Draft) error {
		return wantErr
	})
	require.True(t, errors.Is(err, wantErr))
	require.Equal(t, 1, store.fetches)
	require.Zero(t, store.puts)
}

func TestUpdateMissingDraft(t *testing.T) {
	g := New(&stubStore{}, 3, time.Millisecond)

	_, err := g.Update(context.Background(), "nope", func(d *model.Draft) error {
		return nil
	})
	require.True(t, errors.Is(err, database.ErrNotFound))
}

func TestRetry(t *testing.T) {
	g := New(&stubStore{}, 3, time.Millisecond)

	calls := 0
	err := g.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return database.ErrConflict
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	err = g.Retry(context.Background(), func() error {
		return database.ErrConflict
	})
	require.True(t, errors.Is(err, ErrConcurrencyExhausted))
}
