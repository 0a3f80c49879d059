package engine

import (
	"context"
	"fmt"

	"github.com/draftden/draftden/internal/cards"
	"github.com/draftden/draftden/internal/database/draft/model"
	"github.com/draftden/draftden/internal/logging"
	"github.com/valyala/fastrand"
)

// Scorer rates a candidate against the cards a seat already holds.
type Scorer interface {
	Score(candidate cards.Card, pool []cards.Card) float64
}

// RatingScorer rates by card strength, nudged toward the colors the
// seat has committed to.
type RatingScorer struct {
	// SynergyWeight scales the color-overlap bonus; zero means rating only
	SynergyWeight float64
}

func (s RatingScorer) Score(candidate cards.Card, pool []cards.Card) float64 {
	score := cards.BotWeight(candidate)
	if len(pool) == 0 || len(candidate.Colors) == 0 || s.SynergyWeight == 0 {
		return score
	}

	matched := 0
	for _, held := range pool {
		if sharesColor(candidate, held) {
			matched++
		}
	}
	synergy := float64(matched) / float64(len(pool))

	return score * (1 + s.SynergyWeight*synergy)
}

func sharesColor(a, b cards.Card) bool {
	for _, ca := range a.Colors {
		for _, cb := range b.Colors {
			if ca == cb {
				return true
			}
		}
	}
	return false
}

// BotPicker drives every bot seat of a draft until none can act.
type BotPicker struct {
	cards  cards.DB
	scorer Scorer
}

func NewBotPicker(cardDB cards.DB, scorer Scorer) *BotPicker {
	return &BotPicker{cards: cardDB, scorer: scorer}
}

// BotResult summarizes one drain pass.
type BotResult struct {
	Picks []PickRecord
	Done  bool
}

// TryBotPicks repeatedly makes the best available pick for every bot
// seat holding an active pack, until no bot can act. Calling it when no
// bot can act is a no-op, so human clients may poll it freely.
func (b *BotPicker) TryBotPicks(ctx context.Context, d *model.Draft) (BotResult, error) {
	logger := logging.FromContext(ctx)

	var result BotResult
	progress := true
	for progress && !d.Complete {
		progress = false
		for _, seat := range d.BotSeats() {
			st := &d.Seats[seat]
			if !st.HasActivePack() {
				continue
			}

			choice, err := b.choose(d, st)
			if err != nil {
				return result, fmt.Errorf("choose for seat %d: %w", seat, err)
			}

			record, err := Pick(d, seat, choice, "", true)
			if err != nil {
				return result, fmt.Errorf("bot pick at seat %d: %w", seat, err)
			}
			result.Picks = append(result.Picks, record)
			progress = true

			if d.Complete {
				break
			}
		}
	}

	result.Done = d.Complete
	if len(result.Picks) > 0 {
		logger.Debugf("bots advanced draft %s by %d picks", d.ID, len(result.Picks))
	}

	return result, nil
}

// choose returns the index into the active pack the scorer likes best.
// Unresolvable cards score zero instead of failing the drain.
func (b *BotPicker) choose(d *model.Draft, st *model.Seat) (int, error) {
	pack := st.ActivePack()
	if pack == nil || len(pack.Cards) == 0 {
		return 0, ErrNoActivePack
	}

	pool := make([]cards.Card, 0, len(st.Pickorder))
	for _, idx := range st.Pickorder {
		if card, err := b.lookup(d, idx); err == nil {
			pool = append(pool, card)
		}
	}

	best := 0
	bestScore := -1.0
	ties := uint32(0)
	for i, idx := range pack.Cards {
		var score float64
		if card, err := b.lookup(d, idx); err == nil {
			score = b.scorer.Score(card, pool)
		}
		switch {
		case score > bestScore:
			best = i
			bestScore = score
			ties = 1
		case score == bestScore:
			// reservoir pick among tied cards so equal-rated pools
			// do not always drain left to right
			ties++
			if fastrand.Uint32n(ties) == 0 {
				best = i
			}
		}
	}

	return best, nil
}

func (b *BotPicker) lookup(d *model.Draft, idx int) (cards.Card, error) {
	if idx < 0 || idx >= len(d.Cards) {
		return cards.Card{}, cards.ErrNotFound
	}
	return b.cards.CardFromID(d.Cards[idx])
}
