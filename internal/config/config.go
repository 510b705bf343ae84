package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN,required"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS"     envDefault:"25"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS"     envDefault:"25"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME"  envDefault:"30m"`
}

// WalletConfig holds the provider-facing settings of the callback engine.
type WalletConfig struct {
	Secret          string        `env:"WALLET_SECRET,required,unset"`
	SignatureScheme string        `env:"WALLET_SIGNATURE_SCHEME" envDefault:"md5"`
	LockTimeout     time.Duration `env:"WALLET_LOCK_TIMEOUT"     envDefault:"3s"`
	MaxInFlight     int           `env:"WALLET_MAX_INFLIGHT"     envDefault:"256"`
	QueueTimeout    time.Duration `env:"WALLET_QUEUE_TIMEOUT"    envDefault:"1s"`
}

// RedisConfig configures the optional replay cache. An empty Addr disables it.
type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR"`
	Password  string        `env:"REDIS_PASSWORD,unset"`
	DB        int           `env:"REDIS_DB"         envDefault:"0"`
	ReplayTTL time.Duration `env:"REDIS_REPLAY_TTL" envDefault:"24h"`
}

func (rc RedisConfig) Enabled() bool {
	return rc.Addr != ""
}
