package engine

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/draftden/draftden/internal/database/draft/model"
	"github.com/stretchr/testify/require"
)

// testDraft builds an initialized draft where seat i's round r pack
// holds consecutive pool indices, dealt in order.
func testDraft(seats, rounds, packSize int) *model.Draft {
	d := &model.Draft{
		ID:         "d-test",
		PackSize:   packSize,
		TotalPacks: rounds,
	}

	next := 0
	d.Unopened = make([][]model.Pack, seats)
	for s := 0; s < seats; s++ {
		for r := 0; r < rounds; r++ {
			pack := model.Pack{Round: r, Origin: s}
			for c := 0; c < packSize; c++ {
				pack.Cards = append(pack.Cards, next)
				next++
			}
			d.Unopened[s] = append(d.Unopened[s], pack)
		}
	}
	for i := 0; i < next; i++ {
		d.Cards = append(d.Cards, fmt.Sprintf("card-%03d", i))
	}

	d.Seats = make([]model.Seat, seats)
	for s := range d.Seats {
		d.Seats[s] = model.Seat{
			Owner: fmt.Sprintf("user-%d", s),
			Name:  fmt.Sprintf("user-%d", s),
			Steps: StepQueue(rounds, packSize, nil),
		}
	}

	OpenPack(d)
	d.Initialized = true

	return d
}

func TestDefaultSteps(t *testing.T) {
	steps := DefaultSteps(3)
	require.Equal(t, []model.Step{
		{Action: model.StepPick, Amount: 1},
		{Action: model.StepPass, Amount: 1},
		{Action: model.StepPick, Amount: 1},
		{Action: model.StepPass, Amount: 1},
		{Action: model.StepPick, Amount: 1},
	}, steps)
}

func TestFlatten(t *testing.T) {
	flat := Flatten([]model.Step{
		{Action: model.StepPick, Amount: 2},
		{Action: model.StepPass, Amount: 2},
		{Action: model.StepEndPack},
	})
	require.Equal(t, []model.Step{
		{Action: model.StepPick},
		{Action: model.StepPick},
		{Action: model.StepPass, Amount: 2},
		{Action: model.StepEndPack},
	}, flat)
}

func TestDirection(t *testing.T) {
	require.Equal(t, 1, Direction(0))
	require.Equal(t, -1, Direction(1))
	require.Equal(t, 1, Direction(2))
}

func TestNextSeat(t *testing.T) {
	require.Equal(t, 1, NextSeat(0, 4, 0, 1))
	require.Equal(t, 0, NextSeat(3, 4, 0, 1))
	require.Equal(t, 3, NextSeat(0, 4, 1, 1))
	require.Equal(t, 2, NextSeat(0, 4, 1, 2))
	require.Equal(t, 2, NextSeat(0, 4, 0, 6))
}

func TestPassAmount(t *testing.T) {
	d := testDraft(2, 1, 3)
	require.Equal(t, 1, PassAmount(d, 0))

	d.Seats[0].Steps = []model.Step{
		{Action: model.StepPick},
		{Action: model.StepPass, Amount: 2},
		{Action: model.StepPass},
		{Action: model.StepPick},
	}
	require.Equal(t, 3, PassAmount(d, 0))

	d.Seats[0].Steps = []model.Step{{Action: model.StepPick}}
	require.Equal(t, 0, PassAmount(d, 0))
}

func TestPickValidation(t *testing.T) {
	d := testDraft(2, 1, 3)

	_, err := Pick(d, 5, 0, "user-0", false)
	require.True(t, errors.Is(err, ErrInvalidSeat))

	_, err = Pick(d, 0, 0, "someone-else", false)
	require.True(t, errors.Is(err, ErrUnauthorizedPick))

	_, err = Pick(d, 0, 9, "user-0", false)
	require.True(t, errors.Is(err, ErrInvalidPick))

	d.Complete = true
	_, err = Pick(d, 0, 0, "user-0", false)
	require.True(t, errors.Is(err, ErrDraftComplete))
}

func TestPickNoActivePack(t *testing.T) {
	d := testDraft(2, 1, 3)

	// seat 0 picks and passes; its queue is empty until seat 1 passes back
	_, err := Pick(d, 0, 0, "user-0", false)
	require.NoError(t, err)

	_, err = Pick(d, 0, 0, "user-0", false)
	require.True(t, errors.Is(err, ErrNoActivePack))
}

func TestTwoSeatPlaythrough(t *testing.T) {
	d := testDraft(2, 1, 3)

	type turn struct {
		seat int
		user string
	}
	turns := []turn{
		{0, "user-0"}, {1, "user-1"},
		{0, "user-0"}, {1, "user-1"},
		{0, "user-0"}, {1, "user-1"},
	}

	for i, tn := range turns {
		record, err := Pick(d, tn.seat, 0, tn.user, false)
		require.NoError(t, err, "turn %d", i)
		// the first two picks of each pack travel to the other seat
		if i < 4 {
			require.True(t, record.Passed, "turn %d", i)
			require.Equal(t, 1-tn.seat, record.To, "turn %d", i)
		} else {
			require.False(t, record.Passed, "turn %d", i)
		}
	}

	require.True(t, d.Complete)
	require.Equal(t, []int{0, 4, 2}, d.Seats[0].Pickorder)
	require.Equal(t, []int{3, 1, 5}, d.Seats[1].Pickorder)

	requireConserved(t, d, 6)
}

func TestSingleSharedPack(t *testing.T) {
	// one pack of three cards rotating between two seats
	d := &model.Draft{
		ID:         "d-shared",
		PackSize:   3,
		TotalPacks: 1,
		Cards:      []string{"A", "B", "C"},
		Unopened:   [][]model.Pack{{{Round: 0, Origin: 0, Cards: []int{0, 1, 2}}}, {}},
		Seats: []model.Seat{
			{Owner: "user-0", Steps: StepQueue(1, 3, nil)},
			{Owner: "user-1", Steps: StepQueue(1, 3, nil)},
		},
	}
	OpenPack(d)
	d.Initialized = true

	_, err := Pick(d, 0, 0, "user-0", false)
	require.NoError(t, err)
	_, err = Pick(d, 1, 0, "user-1", false)
	require.NoError(t, err)
	_, err = Pick(d, 0, 0, "user-0", false)
	require.NoError(t, err)

	require.True(t, d.Complete)
	require.Equal(t, []int{0, 2}, d.Seats[0].Pickorder)
	require.Equal(t, []int{1}, d.Seats[1].Pickorder)
}

func TestStalePickRejected(t *testing.T) {
	d := testDraft(2, 1, 3)

	_, err := Pick(d, 0, 2, "user-0", false)
	require.NoError(t, err)

	// resubmitting the same pick fails instead of consuming another card
	_, err = Pick(d, 0, 2, "user-0", false)
	require.Error(t, err)
	require.Len(t, d.Seats[0].Pickorder, 1)
}

func TestRoundAdvanceAndCompletion(t *testing.T) {
	d := testDraft(2, 2, 2)
	require.Equal(t, 1, d.CurrentPack)

	// round one: each seat picks twice
	for _, tn := range []int{0, 1, 0, 1} {
		_, err := Pick(d, tn, 0, fmt.Sprintf("user-%d", tn), false)
		require.NoError(t, err)
	}

	require.False(t, d.Complete)
	require.Equal(t, 2, d.CurrentPack)
	require.True(t, d.Seats[0].HasActivePack())
	require.True(t, d.Seats[1].HasActivePack())

	for _, tn := range []int{0, 1, 0, 1} {
		_, err := Pick(d, tn, 0, fmt.Sprintf("user-%d", tn), false)
		require.NoError(t, err)
	}

	require.True(t, d.Complete)
	requireConserved(t, d, 8)
}

func TestTrashStepRemovesCardFromPool(t *testing.T) {
	d := testDraft(2, 1, 2)
	template := [][]model.Step{{
		{Action: model.StepTrash},
		{Action: model.StepPass},
		{Action: model.StepPick},
	}}
	for s := range d.Seats {
		d.Seats[s].Steps = StepQueue(1, 2, template)
	}

	record, err := Pick(d, 0, 1, "user-0", false)
	require.NoError(t, err)
	require.Equal(t, model.StepTrash, record.Action)
	require.Equal(t, []int{1}, d.Seats[0].Trashorder)
	require.Empty(t, d.Seats[0].Pickorder)
}

// requireConserved checks every dealt card ended up in exactly one
// pickorder or trashorder.
func requireConserved(t *testing.T, d *model.Draft, total int) {
	t.Helper()

	var all []int
	for i := range d.Seats {
		all = append(all, d.Seats[i].Pickorder...)
		all = append(all, d.Seats[i].Trashorder...)
		for _, pack := range d.Seats[i].Packs {
			all = append(all, pack.Cards...)
		}
	}
	for i := range d.Unopened {
		for _, pack := range d.Unopened[i] {
			all = append(all, pack.Cards...)
		}
	}

	require.Len(t, all, total)
	sort.Ints(all)
	for i, card := range all {
		require.Equal(t, i, card)
	}
}
