package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/ostanin/lending-service/pkg/kafka"
	"github.com/ostanin/lending-service/pkg/logger"
	"github.com/ostanin/lending-service/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"15s"`
	WriteTimeout time.Duration
}

// Policy holds the lending business knobs. All money values are cents.
type Policy struct {
	LoanPeriodDays        int           `envconfig:"LOAN_PERIOD_DAYS" default:"14"`
	DailyOverdueRateCents int64         `envconfig:"DAILY_OVERDUE_RATE_CENTS" default:"50"`
	MaxOverdueFineCents   int64         `envconfig:"MAX_OVERDUE_FINE_CENTS" default:"1000"`
	UnpaidFineLimitCents  int64         `envconfig:"UNPAID_FINE_LIMIT_CENTS" default:"500"`
	ReplacementFeeCents   int64         `envconfig:"REPLACEMENT_FEE_CENTS" default:"2500"`
	MembershipYears       int           `envconfig:"MEMBERSHIP_YEARS" default:"1"`
	DefaultReservationTTL int           `envconfig:"DEFAULT_RESERVATION_TTL_DAYS" default:"7"`
	ClaimWindow           time.Duration `envconfig:"CLAIM_WINDOW" default:"48h"`
	ExpireSweepInterval   time.Duration `envconfig:"EXPIRE_SWEEP_INTERVAL" default:"1m"`
	ClaimSweepInterval    time.Duration `envconfig:"CLAIM_SWEEP_INTERVAL" default:"1m"`
	OverdueSweepInterval  time.Duration `envconfig:"OVERDUE_SWEEP_INTERVAL" default:"10m"`
}

type Config struct {
	Server   HTTPServer `yaml:"server"`
	Database postgres.Config
	Kafka    kafka.Config
	Policy   Policy
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithWriteTimeout(t time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = t
	}
}
