package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftden/draftden/internal/cards"
	"github.com/draftden/draftden/internal/database"
	deckmodel "github.com/draftden/draftden/internal/database/deck/model"
	"github.com/draftden/draftden/internal/database/draft/model"
	usermodel "github.com/draftden/draftden/internal/database/user/model"
	"github.com/draftden/draftden/internal/draft/engine"
	"github.com/draftden/draftden/internal/draft/guard"
	"github.com/draftden/draftden/internal/draft/lobby"
	"github.com/draftden/draftden/internal/draft/packbuilder"
	"github.com/draftden/draftden/internal/logging"
	"github.com/google/uuid"
)

var (
	ErrNotSeated      = fmt.Errorf("user holds no seat in this draft")
	ErrNotInitialized = fmt.Errorf("draft has not started")
)

// DeckDB is the deck document store the manager writes finished and
// edited decks to.
type DeckDB interface {
	FetchByDraft(draftID string) (*deckmodel.Deck, error)
	Put(deck *deckmodel.Deck) error
}

// UserDB resolves user ids for lobby rosters.
type UserDB interface {
	FetchMany(userIDs []string) (map[string]usermodel.User, error)
}

// Manager owns draft lifecycle end to end: lobby, picks, bots and deck
// handoff. All mutations run through the write guard so concurrent
// clients converge on one history.
type Manager struct {
	config *Config

	drafts guard.Store
	decks  DeckDB
	users  UserDB
	cardDB cards.DB

	guard *guard.Guard
	bots  *engine.BotPicker
}

func NewManager(config *Config, drafts guard.Store, decks DeckDB, users UserDB, cardDB cards.DB) *Manager {
	return &Manager{
		config: config,
		drafts: drafts,
		decks:  decks,
		users:  users,
		cardDB: cardDB,
		guard:  guard.New(drafts, config.RetryAttempts, config.RetryDelay),
		bots: engine.NewBotPicker(cardDB, engine.RatingScorer{
			SynergyWeight: config.BotSynergyWeight,
		}),
	}
}

// CreateRequest describes a new draft lobby.
type CreateRequest struct {
	CubeID   string         `json:"cube"`
	Host     string         `json:"-"`
	Seats    int            `json:"seats"`
	Packs    int            `json:"packs"`
	PackSize int            `json:"cards"`
	Cards    []string       `json:"pool"`
	Basics   []int          `json:"basics"`
	Steps    [][]model.Step `json:"steps,omitempty"`
}

// CreateDraft creates the draft document and seats the host in the
// lobby. The pool is validated up front so a doomed lobby never opens.
func (m *Manager) CreateDraft(ctx context.Context, req CreateRequest) (*model.Draft, error) {
	logger := logging.FromContext(ctx)

	if req.Seats < 2 {
		return nil, fmt.Errorf("draft needs at least 2 seats, got %d", req.Seats)
	}
	if req.Packs < 1 || req.PackSize < 1 {
		return nil, fmt.Errorf("invalid pack shape %dx%d", req.Packs, req.PackSize)
	}
	draftable := len(req.Cards) - len(req.Basics)
	if need := req.Seats * req.Packs * req.PackSize; draftable < need {
		return nil, fmt.Errorf("%w: have %d, need %d", packbuilder.ErrInsufficientCards, draftable, need)
	}

	d := &model.Draft{
		ID:           uuid.NewString(),
		CubeID:       req.CubeID,
		Host:         req.Host,
		Seats:        make([]model.Seat, req.Seats),
		PackSize:     req.PackSize,
		TotalPacks:   req.Packs,
		Cards:        req.Cards,
		Basics:       req.Basics,
		StepTemplate: req.Steps,
		CreatedAt:    time.Now().UTC(),
	}
	lobby.Join(d, req.Host)

	if err := m.drafts.Put(d); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}

	logger.Infof("draft %s created by %s, %d seats %dx%d", d.ID, d.Host, req.Seats, req.Packs, req.PackSize)
	return d, nil
}

// JoinLobby adds the user and returns the updated roster.
func (m *Manager) JoinLobby(ctx context.Context, draftID, userID string) (*model.Lobby, error) {
	d, err := m.guard.Update(ctx, draftID, func(d *model.Draft) error {
		lobby.Join(d, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d.Lobby, nil
}

// LobbyState returns the roster and current seat assignment.
func (m *Manager) LobbyState(ctx context.Context, draftID string) (*model.Lobby, error) {
	d, err := m.drafts.Fetch(draftID)
	if err != nil {
		return nil, err
	}
	return &d.Lobby, nil
}

// UpdateLobbySeats applies a host reorder of the seat assignment.
func (m *Manager) UpdateLobbySeats(ctx context.Context, draftID, requester string, order map[string]int) (*model.Lobby, error) {
	d, err := m.guard.Update(ctx, draftID, func(d *model.Draft) error {
		return lobby.Reorder(d, requester, order)
	})
	if err != nil {
		return nil, err
	}
	return &d.Lobby, nil
}

// StartDraft freezes the lobby, deals packs and opens the first round.
func (m *Manager) StartDraft(ctx context.Context, draftID, requester string) error {
	logger := logging.FromContext(ctx)

	d, err := m.guard.Update(ctx, draftID, func(d *model.Draft) error {
		return lobby.Start(d, requester, m.cardDB, m.config.BalanceAttempts)
	})
	if err != nil {
		return err
	}

	logger.Infof("draft %s started, max pack weight %.2f", d.ID, d.MaxBotWeight)
	return nil
}

// GetSeat returns the seat index the user occupies.
func (m *Manager) GetSeat(ctx context.Context, draftID, userID string) (int, error) {
	d, err := m.drafts.Fetch(draftID)
	if err != nil {
		return 0, err
	}
	if !d.Initialized {
		if seat, ok := d.Lobby.SeatOrder[userID]; ok {
			return seat, nil
		}
		return 0, ErrNotSeated
	}
	seat, ok := d.SeatFor(userID)
	if !ok {
		return 0, ErrNotSeated
	}
	return seat, nil
}

// IsInitialized reports whether the draft started, plus the final seat
// assignment clients use to route into their draft view.
func (m *Manager) IsInitialized(ctx context.Context, draftID string) (bool, map[string]int, error) {
	d, err := m.drafts.Fetch(draftID)
	if err != nil {
		return false, nil, err
	}
	return d.Initialized, d.Lobby.SeatOrder, nil
}

// Pack returns the cards of the seat's active pack and the steps left in
// its queue. An empty card list means the seat is waiting.
func (m *Manager) Pack(ctx context.Context, draftID string, seat int) ([]int, []model.Step, error) {
	d, err := m.drafts.Fetch(draftID)
	if err != nil {
		return nil, nil, err
	}
	if !d.Initialized {
		return nil, nil, ErrNotInitialized
	}
	if seat < 0 || seat >= len(d.Seats) {
		return nil, nil, engine.ErrInvalidSeat
	}

	st := &d.Seats[seat]
	var packCards []int
	if pack := st.ActivePack(); pack != nil {
		packCards = append(packCards, pack.Cards...)
	}
	steps := append([]model.Step(nil), st.Steps...)

	return packCards, steps, nil
}

// Picks returns the seat's pick history in pick order.
func (m *Manager) Picks(ctx context.Context, draftID string, seat int) ([]int, error) {
	d, err := m.drafts.Fetch(draftID)
	if err != nil {
		return nil, err
	}
	if seat < 0 || seat >= len(d.Seats) {
		return nil, engine.ErrInvalidSeat
	}
	return append([]int(nil), d.Seats[seat].Pickorder...), nil
}

// Draftpick applies one human pick and finishes the draft when it was
// the last one.
func (m *Manager) Draftpick(ctx context.Context, draftID string, seat, pick int, actor string) (engine.PickRecord, error) {
	var record engine.PickRecord
	d, err := m.guard.Update(ctx, draftID, func(d *model.Draft) error {
		if !d.Initialized {
			return ErrNotInitialized
		}
		r, err := engine.Pick(d, seat, pick, actor, false)
		if err != nil {
			return err
		}
		record = r
		return nil
	})
	if err != nil {
		return record, err
	}

	if d.Complete {
		if err := m.finishDraft(ctx, d); err != nil {
			return record, err
		}
	}
	return record, nil
}

// TryBotPicks drains every bot seat that can act. Clients poll it after
// their own pick; a draft with nothing to do reports inProgress.
func (m *Manager) TryBotPicks(ctx context.Context, draftID string) (engine.BotResult, error) {
	var result engine.BotResult
	d, err := m.guard.Update(ctx, draftID, func(d *model.Draft) error {
		if !d.Initialized {
			return ErrNotInitialized
		}
		r, err := m.bots.TryBotPicks(ctx, d)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return result, err
	}

	if d.Complete {
		if err := m.finishDraft(ctx, d); err != nil {
			return result, err
		}
	}
	return result, nil
}

// finishDraft materializes the deck document from the final pick state.
// Creating it twice is harmless, the first write wins.
func (m *Manager) finishDraft(ctx context.Context, d *model.Draft) error {
	logger := logging.FromContext(ctx)

	if _, err := m.decks.FetchByDraft(d.ID); err == nil {
		return nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("fetch deck: %w", err)
	}

	deck := &deckmodel.Deck{
		ID:        uuid.NewString(),
		DraftID:   d.ID,
		CubeID:    d.CubeID,
		Cards:     d.Cards,
		Basics:    d.Basics,
		CreatedAt: time.Now().UTC(),
	}
	for i := range d.Seats {
		st := &d.Seats[i]
		seat := deckmodel.DeckSeat{
			Bot:       st.Bot,
			Owner:     st.Owner,
			Name:      st.Name,
			Mainboard: deckmodel.NewBoard(2, 8),
			Sideboard: deckmodel.NewBoard(1, 8),
			Pickorder: append([]int(nil), st.Pickorder...),
		}
		for _, idx := range st.Pickorder {
			row, col := 1, 0
			if idx >= 0 && idx < len(d.Cards) {
				if card, err := m.cardDB.CardFromID(d.Cards[idx]); err == nil {
					row, col = cards.Row(card), cards.Col(card)
				}
			}
			seat.Mainboard[row][col] = append(seat.Mainboard[row][col], idx)
		}
		deck.Seats = append(deck.Seats, seat)
	}

	if err := m.decks.Put(deck); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil
		}
		return fmt.Errorf("store deck: %w", err)
	}

	logger.Infof("draft %s finished, deck %s created", d.ID, deck.ID)
	return nil
}

// EditDeckByDraft replaces the caller's boards on the finished deck.
func (m *Manager) EditDeckByDraft(ctx context.Context, draftID, actor string, seat int, mainboard, sideboard deckmodel.Board) (*deckmodel.Deck, error) {
	var deck *deckmodel.Deck
	err := m.guard.Retry(ctx, func() error {
		fetched, err := m.decks.FetchByDraft(draftID)
		if err != nil {
			return err
		}
		if seat < 0 || seat >= len(fetched.Seats) {
			return engine.ErrInvalidSeat
		}
		if fetched.Seats[seat].Owner != actor {
			return engine.ErrUnauthorizedPick
		}

		fetched.Seats[seat].Mainboard = mainboard
		fetched.Seats[seat].Sideboard = sideboard
		if err := m.decks.Put(fetched); err != nil {
			return err
		}
		deck = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// Usernames resolves a batch of user ids to profiles.
func (m *Manager) Usernames(ctx context.Context, userIDs []string) (map[string]usermodel.User, error) {
	return m.users.FetchMany(userIDs)
}
