package lobby

import (
	"errors"
	"fmt"
	"testing"

	"github.com/draftden/draftden/internal/cards"
	"github.com/draftden/draftden/internal/database/draft/model"
	"github.com/stretchr/testify/require"
)

func testDraft(seats, rounds, packSize, poolSize int) *model.Draft {
	d := &model.Draft{
		ID:         "d1",
		CubeID:     "c1",
		Host:       "alice",
		PackSize:   packSize,
		TotalPacks: rounds,
		Seats:      make([]model.Seat, seats),
	}
	for i := 0; i < poolSize; i++ {
		d.Cards = append(d.Cards, fmt.Sprintf("card-%03d", i))
	}
	return d
}

func testCardDB(d *model.Draft) cards.DB {
	list := make([]cards.Card, len(d.Cards))
	for i, id := range d.Cards {
		list[i] = cards.Card{ID: id, Name: id, Elo: 1200}
	}
	return cards.NewMemoryDB(list)
}

func TestJoinAssignsFirstFreeSeat(t *testing.T) {
	d := testDraft(4, 3, 15, 200)

	Join(d, "alice")
	Join(d, "bob")
	require.Equal(t, []string{"alice", "bob"}, d.Lobby.Players)
	require.Equal(t, 0, d.Lobby.SeatOrder["alice"])
	require.Equal(t, 1, d.Lobby.SeatOrder["bob"])
}

func TestJoinIdempotent(t *testing.T) {
	d := testDraft(4, 3, 15, 200)

	Join(d, "alice")
	Join(d, "alice")
	require.Equal(t, []string{"alice"}, d.Lobby.Players)
}

func TestJoinFullLobbyIsSilent(t *testing.T) {
	d := testDraft(2, 3, 15, 200)

	Join(d, "alice")
	Join(d, "bob")
	Join(d, "carol")
	require.Equal(t, []string{"alice", "bob"}, d.Lobby.Players)
	_, ok := d.Lobby.SeatOrder["carol"]
	require.False(t, ok)
}

func TestReorderHostOnly(t *testing.T) {
	d := testDraft(2, 3, 15, 200)
	Join(d, "alice")
	Join(d, "bob")

	err := Reorder(d, "bob", map[string]int{"alice": 1, "bob": 0})
	require.True(t, errors.Is(err, ErrUnauthorized))

	require.NoError(t, Reorder(d, "alice", map[string]int{"alice": 1, "bob": 0}))
	require.Equal(t, 1, d.Lobby.SeatOrder["alice"])
	require.Equal(t, 0, d.Lobby.SeatOrder["bob"])
}

func TestReorderValidation(t *testing.T) {
	d := testDraft(2, 3, 15, 200)
	Join(d, "alice")
	Join(d, "bob")

	err := Reorder(d, "alice", map[string]int{"alice": 0, "mallory": 1})
	require.True(t, errors.Is(err, ErrUnknownPlayer))

	err = Reorder(d, "alice", map[string]int{"alice": 0, "bob": 5})
	require.Error(t, err)

	err = Reorder(d, "alice", map[string]int{"alice": 0})
	require.True(t, errors.Is(err, ErrUnknownPlayer))
}

func TestStartSeatsPlayersAndBots(t *testing.T) {
	d := testDraft(4, 3, 15, 4*3*15)
	Join(d, "alice")
	Join(d, "bob")

	require.NoError(t, Start(d, "alice", testCardDB(d), 5))

	require.True(t, d.Initialized)
	require.Equal(t, 1, d.CurrentPack)
	require.False(t, d.Seats[0].Bot)
	require.Equal(t, "alice", d.Seats[0].Owner)
	require.False(t, d.Seats[1].Bot)
	require.True(t, d.Seats[2].Bot)
	require.True(t, d.Seats[3].Bot)
	require.NotEmpty(t, d.Seats[2].Name)

	for s := range d.Seats {
		require.Len(t, d.Seats[s].Packs, 1)
		require.Len(t, d.Seats[s].Packs[0].Cards, 15)
		require.Len(t, d.Unopened[s], 2)
		require.NotEmpty(t, d.Seats[s].Steps)
	}
	require.Greater(t, d.MaxBotWeight, 0.0)
}

func TestStartHostOnlyAndIdempotent(t *testing.T) {
	d := testDraft(2, 1, 3, 6)
	Join(d, "alice")

	err := Start(d, "bob", testCardDB(d), 5)
	require.True(t, errors.Is(err, ErrUnauthorized))

	require.NoError(t, Start(d, "alice", testCardDB(d), 5))
	before := d.Seats[0].Packs[0].Cards

	require.NoError(t, Start(d, "alice", testCardDB(d), 5))
	require.Equal(t, before, d.Seats[0].Packs[0].Cards)
}

func TestStartInsufficientPool(t *testing.T) {
	d := testDraft(8, 3, 15, 40)
	Join(d, "alice")

	err := Start(d, "alice", testCardDB(d), 5)
	require.Error(t, err)
}

func TestStartKeepsBasicsOutOfPacks(t *testing.T) {
	d := testDraft(2, 1, 3, 10)
	d.Basics = []int{0, 1, 2, 3}
	Join(d, "alice")

	require.NoError(t, Start(d, "alice", testCardDB(d), 5))

	for s := range d.Seats {
		for _, pack := range d.Seats[s].Packs {
			for _, idx := range pack.Cards {
				require.GreaterOrEqual(t, idx, 4)
			}
		}
	}
}

func TestJoinAfterStartIsSilent(t *testing.T) {
	d := testDraft(2, 1, 3, 6)
	Join(d, "alice")
	require.NoError(t, Start(d, "alice", testCardDB(d), 5))

	Join(d, "bob")
	_, ok := d.Lobby.SeatOrder["bob"]
	require.False(t, ok)
}
