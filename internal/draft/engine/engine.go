package engine

import (
	"fmt"

	"github.com/draftden/draftden/internal/database/draft/model"
)

var (
	ErrDraftComplete    = fmt.Errorf("draft already complete")
	ErrInvalidSeat      = fmt.Errorf("seat out of range")
	ErrUnauthorizedPick = fmt.Errorf("seat belongs to another player")
	ErrNoActivePack     = fmt.Errorf("seat has no active pack")
	ErrInvalidPick      = fmt.Errorf("card not available in the active pack")
)

// PickRecord describes one applied pick for callers that relay results.
type PickRecord struct {
	Seat   int
	Card   int
	Action model.StepAction
	Passed bool
	To     int
}

// Pick applies one pick or trash at seat. pick indexes into the active
// pack. actor must own the seat unless asBot drives a bot seat. The
// transition consumes the seat's action step, any padding steps behind
// it, forwards or retires the emptied pack, and opens the next round or
// finishes the draft when every pack in flight is exhausted.
func Pick(d *model.Draft, seat, pick int, actor string, asBot bool) (PickRecord, error) {
	var record PickRecord

	if d.Complete {
		return record, ErrDraftComplete
	}
	if seat < 0 || seat >= len(d.Seats) {
		return record, ErrInvalidSeat
	}

	st := &d.Seats[seat]
	if st.Bot {
		if !asBot {
			return record, ErrUnauthorizedPick
		}
	} else if actor == "" || actor != st.Owner {
		return record, ErrUnauthorizedPick
	}

	if !st.HasActivePack() {
		return record, ErrNoActivePack
	}
	pack := st.ActivePack()
	if pick < 0 || pick >= len(pack.Cards) {
		return record, ErrInvalidPick
	}

	step := popStep(st)
	card := pack.Cards[pick]
	pack.Cards = append(pack.Cards[:pick], pack.Cards[pick+1:]...)

	if step.IsTrash() {
		st.Trashorder = append(st.Trashorder, card)
	} else {
		st.Pickorder = append(st.Pickorder, card)
	}

	record = PickRecord{Seat: seat, Card: card, Action: step.Action, To: seat}
	routePack(d, seat, &record)

	if packDone(d) {
		if roundsRemain(d) {
			OpenPack(d)
		} else {
			d.Complete = true
		}
	}

	return record, nil
}

// routePack consumes the padding steps behind an action step and moves
// the active pack accordingly: a pass run forwards it, an endpack or an
// emptied pack retires it.
func routePack(d *model.Draft, seat int, record *PickRecord) {
	st := &d.Seats[seat]
	round := d.CurrentPack - 1

	for len(st.Steps) > 0 && st.Steps[0].IsPadding() {
		if st.Steps[0].Action == model.StepEndPack {
			popStep(st)
			retirePack(st)
			return
		}

		// contiguous pass run travels as one hop
		amount := 0
		for len(st.Steps) > 0 && st.Steps[0].Action == model.StepPass {
			step := popStep(st)
			if step.Amount <= 0 {
				step.Amount = 1
			}
			amount += step.Amount
		}

		pack := st.ActivePack()
		if pack == nil {
			return
		}
		if len(pack.Cards) == 0 {
			retirePack(st)
			return
		}

		to := NextSeat(seat, len(d.Seats), round, amount)
		forwarded := *pack
		retirePack(st)
		d.Seats[to].Packs = append(d.Seats[to].Packs, forwarded)
		record.Passed = true
		record.To = to
		return
	}

	// no padding behind the action; retire the pack once it empties
	if pack := st.ActivePack(); pack != nil && len(pack.Cards) == 0 {
		retirePack(st)
	}
}

// OpenPack deals every seat its next unopened pack and advances the
// round counter.
func OpenPack(d *model.Draft) {
	for i := range d.Seats {
		if len(d.Unopened[i]) == 0 {
			continue
		}
		pack := d.Unopened[i][0]
		d.Unopened[i] = d.Unopened[i][1:]
		d.Seats[i].Packs = append(d.Seats[i].Packs, pack)
	}
	d.CurrentPack++
}

func popStep(st *model.Seat) model.Step {
	if len(st.Steps) == 0 {
		return model.Step{Action: model.StepPick}
	}
	step := st.Steps[0]
	st.Steps = st.Steps[1:]
	return step
}

func retirePack(st *model.Seat) {
	if len(st.Packs) == 0 {
		return
	}
	st.Packs = st.Packs[1:]
}

// packDone reports whether no cards remain in any pack in flight.
func packDone(d *model.Draft) bool {
	for i := range d.Seats {
		for _, pack := range d.Seats[i].Packs {
			if len(pack.Cards) > 0 {
				return false
			}
		}
	}
	return true
}

func roundsRemain(d *model.Draft) bool {
	for i := range d.Unopened {
		if len(d.Unopened[i]) > 0 {
			return true
		}
	}
	return false
}
