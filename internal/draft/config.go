package draft

import (
	"time"

	"github.com/draftden/draftden/internal/database"
)

type Config struct {
	Debug bool `envconfig:"DRAFTDEN_DEBUG" default:"false"`

	Port     string `envconfig:"DRAFTDEN_PORT" default:"8080"`
	ProfPort string `envconfig:"DRAFTDEN_PROF_PORT" default:"8881"`

	// CardsFile is the JSON card oracle loaded at boot
	CardsFile string `envconfig:"DRAFTDEN_CARDS_FILE" default:"cards.json"`
	CacheSize int    `envconfig:"DRAFTDEN_CACHE_SIZE" default:"4096"`

	// write conflict retry budget for concurrent picks
	RetryAttempts int           `envconfig:"DRAFTDEN_RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"DRAFTDEN_RETRY_DELAY" default:"150ms"`

	// reshuffle budget when balancing pack strength
	BalanceAttempts int `envconfig:"DRAFTDEN_BALANCE_ATTEMPTS" default:"25"`

	// bot color synergy bonus, 0 disables it
	BotSynergyWeight float64 `envconfig:"DRAFTDEN_BOT_SYNERGY_WEIGHT" default:"0.4"`

	Db database.Config
}
