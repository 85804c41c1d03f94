package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Rules are the per-session rule settings.
type Rules struct {
	StartingScore int `env:"STARTING_SCORE" envDefault:"25000" json:"startingScore"`
	NoWinPenalty  int `env:"NO_WIN_PENALTY" envDefault:"8000" json:"noWinPenalty"`
	RiichiStake   int `env:"RIICHI_STAKE" envDefault:"1000" json:"riichiStake"`

	// House yaku toggles handed to the judge.
	Daisharin       bool `env:"DAISHARIN" envDefault:"false" json:"daisharin"`
	RenhouAsYakuman bool `env:"RENHOU_AS_YAKUMAN" envDefault:"false" json:"renhouAsYakuman"`

	// LegacyHandBounds restores the index bound of len(hand)-kans and the
	// card count of len(hand)+4*kans used by the first server.
	LegacyHandBounds bool `env:"LEGACY_HAND_BOUNDS" envDefault:"false" json:"legacyHandBounds"`
	// FuritenGate rejects ron on a tile the claimant has already discarded.
	FuritenGate bool `env:"FURITEN_GATE" envDefault:"false" json:"furitenGate"`
}

type Config struct {
	HTTPAddr       string `env:"CHINITSU_HTTP_ADDR" envDefault:":8000"`
	LogLevel       string `env:"CHINITSU_LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"CHINITSU_LOG_DEVELOPMENT" envDefault:"false"`

	// DebugCode selects a pre-arranged wall; 0 shuffles normally.
	DebugCode int `env:"CHINITSU_DEBUG_CODE" envDefault:"0"`

	OTelEndpoint string `env:"CHINITSU_OTEL_ENDPOINT"`

	WriteWait  time.Duration `env:"CHINITSU_WS_WRITE_WAIT" envDefault:"10s"`
	PongWait   time.Duration `env:"CHINITSU_WS_PONG_WAIT" envDefault:"60s"`
	SendBuffer int           `env:"CHINITSU_WS_SEND_BUFFER" envDefault:"32"`

	Rules Rules `envPrefix:"CHINITSU_RULE_"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no
// environment overrides.
func Default() Config {
	var cfg Config
	// Defaults cannot fail to parse.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// DefaultRules is shorthand for Default().Rules.
func DefaultRules() Rules {
	return Default().Rules
}
