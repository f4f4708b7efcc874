package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Query    QueryConfig    `yaml:"query"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings. AcquireTimeout
// bounds connection establishment, including the startup ping.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AcquireTimeout  time.Duration `yaml:"acquire_timeout"    env:"DATABASE_ACQUIRE_TIMEOUT"    env-default:"5s"`
}

// QueryConfig holds query admission and diagnostics settings.
type QueryConfig struct {
	MaxComplexity           int           `yaml:"max_complexity"           env:"QUERY_MAX_COMPLEXITY"           env-default:"1000"`
	MaxDepth                int           `yaml:"max_depth"                env:"QUERY_MAX_DEPTH"                env-default:"15"`
	IntrospectionComplexity int           `yaml:"introspection_complexity" env:"QUERY_INTROSPECTION_COMPLEXITY" env-default:"100"`
	PerformanceMonitoring   bool          `yaml:"performance_monitoring"   env:"QUERY_PERFORMANCE_MONITORING"   env-default:"true"`
	SlowQueryThreshold      time.Duration `yaml:"slow_query_threshold"     env:"QUERY_SLOW_THRESHOLD"           env-default:"1s"`
	RetryBackoff            time.Duration `yaml:"retry_backoff"            env:"QUERY_RETRY_BACKOFF"            env-default:"100ms"`
}

// CacheConfig holds result-cache tier settings.
type CacheConfig struct {
	Capacity         int           `yaml:"capacity"          env:"CACHE_CAPACITY"          env-default:"10000"`
	NumShards        int           `yaml:"num_shards"        env:"CACHE_NUM_SHARDS"        env-default:"64"`
	TTLModerate      time.Duration `yaml:"ttl_moderate"      env:"CACHE_TTL_MODERATE"      env-default:"5m"`
	TTLHeavy         time.Duration `yaml:"ttl_heavy"         env:"CACHE_TTL_HEAVY"         env-default:"15m"`
	TTLComprehensive time.Duration `yaml:"ttl_comprehensive" env:"CACHE_TTL_COMPREHENSIVE" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
