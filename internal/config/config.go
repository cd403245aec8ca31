package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"medquiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	SRS         SRS
	Battle      Battle
	Leaderboard Leaderboard
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache + state store configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// SRS groups spaced-repetition defaults.
type SRS struct {
	AvgAnswerMs  int64 `env:"SRS_AVG_ANSWER_MS" envDefault:"15000"`
	SessionLimit int   `env:"SRS_SESSION_LIMIT" envDefault:"20"`
}

// Battle groups real-time gameplay defaults.
type Battle struct {
	QuestionCount      int           `env:"BATTLE_QUESTION_COUNT" envDefault:"10"`
	PerQuestionSeconds int           `env:"BATTLE_PER_QUESTION_SECONDS" envDefault:"15"`
	CountdownSeconds   int           `env:"BATTLE_COUNTDOWN_SECONDS" envDefault:"3"`
	RevealDelay        time.Duration `env:"BATTLE_REVEAL_DELAY" envDefault:"2s"`
	AnswerGrace        time.Duration `env:"BATTLE_ANSWER_GRACE" envDefault:"3s"`
	FinishedRoomGrace  time.Duration `env:"BATTLE_FINISHED_ROOM_GRACE" envDefault:"30s"`
	TicketTTL          time.Duration `env:"BATTLE_ROOM_CODE_TTL" envDefault:"5m"`
	BankSize           int           `env:"BATTLE_BANK_SIZE" envDefault:"500"`
}

// Leaderboard governs the XP standings endpoint.
type Leaderboard struct {
	TopN int `env:"LEADERBOARD_TOP" envDefault:"50"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
