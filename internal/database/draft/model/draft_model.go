package model

import (
	"strconv"
	"time"

	"github.com/draftden/draftden/internal/strpool"
	"github.com/enescakir/emoji"
)

type StepAction string

const (
	StepPick        StepAction = "pick"
	StepPickRandom  StepAction = "pickrandom"
	StepTrash       StepAction = "trash"
	StepTrashRandom StepAction = "trashrandom"
	StepPass        StepAction = "pass"
	StepEndPack     StepAction = "endpack"
)

// Step is one required action on a pack. Amount is only meaningful in
// unexpanded format templates; queued steps are always single actions.
type Step struct {
	Action StepAction `json:"action"`
	Amount int        `json:"amount,omitempty"`
}

// IsPadding reports whether the step is consumed automatically after a
// pick rather than by a player action.
func (s Step) IsPadding() bool {
	return s.Action == StepPass || s.Action == StepEndPack
}

// IsTrash reports whether the picked card leaves the draft instead of
// joining the seat's pool.
func (s Step) IsTrash() bool {
	return s.Action == StepTrash || s.Action == StepTrashRandom
}

// Pack is a booster, unopened or in flight. Cards are indices into the
// draft's card pool.
type Pack struct {
	Round  int   `json:"round"`
	Origin int   `json:"origin"`
	Cards  []int `json:"cards"`
}

type Seat struct {
	Bot   bool   `json:"bot"`
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name"`

	// Packs queued at this seat, Packs[0] is the active one
	Packs []Pack `json:"packs"`

	Pickorder  []int `json:"pickorder"`
	Trashorder []int `json:"trashorder"`

	// Steps still to consume, front to back, across all rounds
	Steps []Step `json:"steps"`
}

func (s *Seat) ActivePack() *Pack {
	if len(s.Packs) == 0 {
		return nil
	}
	return &s.Packs[0]
}

func (s *Seat) HasActivePack() bool {
	p := s.ActivePack()
	return p != nil && len(p.Cards) > 0
}

// Lobby is the pre-start seat claim state.
type Lobby struct {
	// Players in join order, capped at seat capacity
	Players []string `json:"players"`
	// SeatOrder maps userId to the seat index the player will occupy
	SeatOrder map[string]int `json:"seatOrder"`
}

type Draft struct {
	ID     string `json:"id"`
	CubeID string `json:"cube"`
	Host   string `json:"host"`

	Seats    []Seat `json:"seats"`
	PackSize int    `json:"packSize"`

	// Unopened[seat] holds the rounds not yet dealt to that seat
	Unopened [][]Pack `json:"unopened"`

	// CurrentPack counts opened rounds, so the 0-based round in play is
	// CurrentPack-1
	CurrentPack int `json:"currentPack"`
	TotalPacks  int `json:"totalPacks"`

	// Cards is the pool; packs and picks reference cards by index into it
	Cards  []string `json:"cards"`
	Basics []int    `json:"basics"`

	// StepTemplate optionally overrides the per-round step list; nil means
	// the default pick/pass cadence for the pack size
	StepTemplate [][]Step `json:"stepTemplate,omitempty"`

	Lobby Lobby `json:"lobby"`

	Initialized  bool    `json:"initialized"`
	Complete     bool    `json:"complete"`
	MaxBotWeight float64 `json:"maxBotWeight,omitempty"`

	// Version backs the store's compare-and-swap; never set by callers
	Version uint64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
}

// SeatFor returns the seat index owned by userID.
func (d *Draft) SeatFor(userID string) (int, bool) {
	for i := range d.Seats {
		if !d.Seats[i].Bot && d.Seats[i].Owner == userID {
			return i, true
		}
	}
	return 0, false
}

// BotSeats lists the indices of bot-controlled seats.
func (d *Draft) BotSeats() []int {
	var seats []int
	for i := range d.Seats {
		if d.Seats[i].Bot {
			seats = append(seats, i)
		}
	}
	return seats
}

// BotName renders the display name for an unowned seat.
func BotName(seat int) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()

	buf.WriteString(emoji.Robot.String())
	buf.WriteString(" Bot ")
	buf.WriteString(strconv.Itoa(seat + 1))

	return buf.String()
}
