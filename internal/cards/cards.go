package cards

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/draftden/draftden/internal/cache"
)

var ErrNotFound = fmt.Errorf("card not found")

// Card is the oracle data the draft engine needs about a printing.
type Card struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Colors []string `json:"colors"`
	CMC    int      `json:"cmc"`
	Elo    float64  `json:"elo"`
}

// DB resolves card ids and names to oracle data.
type DB interface {
	CardFromID(id string) (Card, error)
	// GetMostReasonable returns the preferred printing for a card name.
	GetMostReasonable(name string) (Card, error)
}

// BotWeight converts a card's rating to the weight bots and pack
// balancing draw from, 10^(elo/400)-1. A 400 point rating edge is worth
// roughly a tenfold weight edge.
func BotWeight(card Card) float64 {
	return math.Pow(10, card.Elo/400) - 1
}

// Col buckets a card into a deck column by mana value, capped at 7.
func Col(card Card) int {
	if card.CMC > 7 {
		return 7
	}
	if card.CMC < 0 {
		return 0
	}
	return card.CMC
}

// Row buckets creatures into the top deck row, everything else below.
func Row(card Card) int {
	if strings.Contains(card.Type, "Creature") {
		return 0
	}
	return 1
}

type MemoryDB struct {
	byID   map[string]Card
	byName map[string][]Card
}

var _ DB = (*MemoryDB)(nil)

func NewMemoryDB(cards []Card) *MemoryDB {
	db := &MemoryDB{
		byID:   make(map[string]Card, len(cards)),
		byName: make(map[string][]Card),
	}
	for _, card := range cards {
		db.byID[card.ID] = card
		key := normalizeName(card.Name)
		db.byName[key] = append(db.byName[key], card)
	}
	return db
}

// LoadFile builds a MemoryDB from a JSON array of cards on disk.
func LoadFile(path string) (*MemoryDB, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cards file: %w", err)
	}

	var cards []Card
	if err := json.Unmarshal(bytes, &cards); err != nil {
		return nil, fmt.Errorf("unmarshal cards file: %w", err)
	}

	return NewMemoryDB(cards), nil
}

func (db *MemoryDB) CardFromID(id string) (Card, error) {
	card, ok := db.byID[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	return card, nil
}

// GetMostReasonable picks the highest rated printing for a name.
func (db *MemoryDB) GetMostReasonable(name string) (Card, error) {
	printings, ok := db.byName[normalizeName(name)]
	if !ok || len(printings) == 0 {
		return Card{}, ErrNotFound
	}

	best := printings[0]
	for _, printing := range printings[1:] {
		if printing.Elo > best.Elo {
			best = printing
		}
	}
	return best, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Cached wraps a DB with an LRU over id lookups, the hot path during
// bot scoring.
type Cached struct {
	db    DB
	cache cache.Cache
}

var _ DB = (*Cached)(nil)

func NewCached(db DB, cache cache.Cache) *Cached {
	return &Cached{db: db, cache: cache}
}

func (c *Cached) CardFromID(id string) (Card, error) {
	if v, ok := c.cache.Get(id); ok {
		return v.(Card), nil
	}

	card, err := c.db.CardFromID(id)
	if err != nil {
		return Card{}, err
	}

	c.cache.Add(id, card)
	return card, nil
}

func (c *Cached) GetMostReasonable(name string) (Card, error) {
	return c.db.GetMostReasonable(name)
}
