package lobby

import (
	"fmt"

	"github.com/draftden/draftden/internal/cards"
	"github.com/draftden/draftden/internal/database/draft/model"
	"github.com/draftden/draftden/internal/draft/engine"
	"github.com/draftden/draftden/internal/draft/packbuilder"
	"github.com/draftden/draftden/internal/hashutil"
)

var (
	ErrUnauthorized   = fmt.Errorf("only the host may do that")
	ErrAlreadyStarted = fmt.Errorf("draft already started")
	ErrUnknownPlayer  = fmt.Errorf("player is not in the lobby")
)

// Join adds userID to the lobby at the first free seat. Joining twice
// is a no-op, and a full or already started lobby leaves the roster
// unchanged so late arrivals become spectators.
func Join(d *model.Draft, userID string) {
	if d.Initialized {
		return
	}
	if _, ok := d.Lobby.SeatOrder[userID]; ok {
		return
	}
	if len(d.Lobby.Players) >= len(d.Seats) {
		return
	}

	if d.Lobby.SeatOrder == nil {
		d.Lobby.SeatOrder = make(map[string]int)
	}

	taken := make(map[int]bool, len(d.Lobby.SeatOrder))
	for _, seat := range d.Lobby.SeatOrder {
		taken[seat] = true
	}
	for seat := 0; seat < len(d.Seats); seat++ {
		if !taken[seat] {
			d.Lobby.Players = append(d.Lobby.Players, userID)
			d.Lobby.SeatOrder[userID] = seat
			return
		}
	}
}

// Reorder replaces the seat assignment. Only the host may call it, and
// every entry must name a joined player and a valid seat.
func Reorder(d *model.Draft, requester string, order map[string]int) error {
	if requester != d.Host {
		return ErrUnauthorized
	}
	if d.Initialized {
		return ErrAlreadyStarted
	}

	joined := make(map[string]bool, len(d.Lobby.Players))
	for _, p := range d.Lobby.Players {
		joined[p] = true
	}

	next := make(map[string]int, len(order))
	seats := make(map[int]bool, len(order))
	for userID, seat := range order {
		if !joined[userID] {
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, userID)
		}
		if seat < 0 || seat >= len(d.Seats) {
			return fmt.Errorf("seat %d out of range", seat)
		}
		if seats[seat] {
			return fmt.Errorf("seat %d assigned twice", seat)
		}
		seats[seat] = true
		next[userID] = seat
	}
	for _, p := range d.Lobby.Players {
		if _, ok := next[p]; !ok {
			return fmt.Errorf("%w: %s dropped from order", ErrUnknownPlayer, p)
		}
	}

	d.Lobby.SeatOrder = next
	return nil
}

// Start freezes the lobby into seats, fills the rest with bots, deals
// balanced packs and opens the first round. Starting an already started
// draft is a no-op so duplicate requests are harmless.
func Start(d *model.Draft, requester string, cardDB cards.DB, balanceAttempts int) error {
	if requester != d.Host {
		return ErrUnauthorized
	}
	if d.Initialized {
		return nil
	}

	seats := len(d.Seats)
	rounds := d.TotalPacks

	weight := func(id string) float64 {
		card, err := cardDB.CardFromID(id)
		if err != nil {
			return 0
		}
		return cards.BotWeight(card)
	}

	// basics stay out of rotation, packs draw from the rest of the pool
	basic := make(map[int]bool, len(d.Basics))
	for _, idx := range d.Basics {
		basic[idx] = true
	}
	var eligible []int
	var pool []string
	for idx, id := range d.Cards {
		if basic[idx] {
			continue
		}
		eligible = append(eligible, idx)
		pool = append(pool, id)
	}

	seed := hashutil.SeedFromParts(d.ID, d.CubeID)
	result, err := packbuilder.BuildBalanced(pool, d.PackSize, seats*rounds, seed, balanceAttempts, weight)
	if err != nil {
		return fmt.Errorf("deal packs: %w", err)
	}
	d.MaxBotWeight = result.MaxBotWeight

	for _, pack := range result.Packs {
		for i, idx := range pack {
			pack[i] = eligible[idx]
		}
	}

	owners := make(map[int]string, len(d.Lobby.SeatOrder))
	for userID, seat := range d.Lobby.SeatOrder {
		owners[seat] = userID
	}

	d.Unopened = make([][]model.Pack, seats)
	for s := 0; s < seats; s++ {
		for r := 0; r < rounds; r++ {
			d.Unopened[s] = append(d.Unopened[s], model.Pack{
				Round:  r,
				Origin: s,
				Cards:  result.Packs[s*rounds+r],
			})
		}

		steps := engine.StepQueue(rounds, d.PackSize, d.StepTemplate)
		if owner, ok := owners[s]; ok {
			d.Seats[s] = model.Seat{Owner: owner, Name: owner, Steps: steps}
		} else {
			d.Seats[s] = model.Seat{Bot: true, Name: model.BotName(s), Steps: steps}
		}
	}

	engine.OpenPack(d)
	d.Initialized = true

	return nil
}
