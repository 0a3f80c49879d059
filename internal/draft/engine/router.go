package engine

import "github.com/draftden/draftden/internal/database/draft/model"

// Direction returns which way packs travel in a 0-based round: left
// (seat+1) in even rounds, right in odd rounds.
func Direction(round int) int {
	if round%2 == 0 {
		return 1
	}
	return -1
}

// NextSeat computes where a pack goes when passed from seat, moving
// passAmount seats in the round's direction.
func NextSeat(seat, seatCount, round, passAmount int) int {
	next := (seat + Direction(round)*passAmount) % seatCount
	if next < 0 {
		next += seatCount
	}
	return next
}

// PassAmount returns how many seats the active pack will travel when the
// seat's next pass comes up: the length of the first contiguous run of
// pass steps remaining in its queue, or 0 when no pass remains.
func PassAmount(d *model.Draft, seat int) int {
	passes := 0
	for _, step := range d.Seats[seat].Steps {
		if step.Action == model.StepPass {
			amount := step.Amount
			if amount <= 0 {
				amount = 1
			}
			passes += amount
			continue
		}
		if passes > 0 {
			break
		}
	}
	return passes
}
