package constants

import (
	"math"
	"time"
)

const (
	SessionTTL        = 2 * time.Hour
	SessionSweepEvery = 10 * time.Minute
	HandoffKey        = "kvk_session"
)

const (
	ExternalAPITimeout = 60 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 90 * time.Second
	ExportTimeout      = 45 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Reference scoring rules of the game.
const (
	DefaultWeightT5 = 20
	DefaultWeightT4 = 8
	MinWeight       = 1
	MaxWeight       = 100
)

const (
	ReadingValueCount = 8
	// Four counts of a tier must sum without overflowing int64.
	MaxKillCount     = math.MaxInt64 / 4
	MaxUploadBytes   = 20 << 20
	ExtractMaxTokens = 300
)
