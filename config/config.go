package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete runtime configuration.
type Config struct {
	Gateway struct {
		BaseURL   string        `mapstructure:"base_url"`
		Timeout   time.Duration `mapstructure:"timeout"`
		Retries   int           `mapstructure:"retries"`
		UserEmail string        `mapstructure:"user_email"`
		Premium   bool          `mapstructure:"premium"`
	} `mapstructure:"gateway"`
	Generation struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"generation"`
	Player struct {
		Output string        `mapstructure:"output"` // "silent" or "ffplay"
		Tick   time.Duration `mapstructure:"tick"`
	} `mapstructure:"player"`
	Blob struct {
		Provider     string        `mapstructure:"provider"` // "local" or "s3"
		Dir          string        `mapstructure:"dir"`
		Bucket       string        `mapstructure:"bucket"`
		Region       string        `mapstructure:"region"`
		Profile      string        `mapstructure:"profile"`
		Prefix       string        `mapstructure:"prefix"`
		UsePathStyle bool          `mapstructure:"use_path_style"`
		PresignTTL   time.Duration `mapstructure:"presign_ttl"`
	} `mapstructure:"blob"`
	Slideshow struct {
		Debounce      time.Duration `mapstructure:"debounce"`
		Cache         string        `mapstructure:"cache"` // "memory" or "redis"
		RedisAddr     string        `mapstructure:"redis_addr"`
		RedisPassword string        `mapstructure:"redis_password"`
		RedisDB       int           `mapstructure:"redis_db"`
		CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"slideshow"`
	Transcripts struct {
		File string `mapstructure:"file"`
	} `mapstructure:"transcripts"`
	API struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"api"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	History struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"history"`
	Schedule struct {
		Cron string `mapstructure:"cron"`
	} `mapstructure:"schedule"`
}

var keys = []string{
	"gateway.base_url",
	"gateway.timeout",
	"gateway.retries",
	"gateway.user_email",
	"gateway.premium",
	"generation.timeout",
	"player.output",
	"player.tick",
	"blob.provider",
	"blob.dir",
	"blob.bucket",
	"blob.region",
	"blob.profile",
	"blob.prefix",
	"blob.use_path_style",
	"blob.presign_ttl",
	"slideshow.debounce",
	"slideshow.cache",
	"slideshow.redis_addr",
	"slideshow.redis_password",
	"slideshow.redis_db",
	"slideshow.cache_ttl",
	"transcripts.file",
	"api.addr",
	"kafka.brokers",
	"kafka.topic",
	"history.dsn",
	"schedule.cron",
}

// Load reads .env (if present), BRIEFCAST_* environment variables and an
// optional config.yaml, in increasing order of precedence for env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BRIEFCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.briefcast")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("⚠️ Config error: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.base_url", "http://localhost:8000")
	v.SetDefault("gateway.timeout", 2*time.Minute)
	v.SetDefault("gateway.retries", 2)
	v.SetDefault("generation.timeout", GenerationTimeout)
	v.SetDefault("player.output", "silent")
	v.SetDefault("player.tick", PlayerTick)
	v.SetDefault("blob.provider", "local")
	v.SetDefault("blob.presign_ttl", time.Hour)
	v.SetDefault("blob.prefix", "briefcast/")
	v.SetDefault("slideshow.debounce", SlideshowDebounce)
	v.SetDefault("slideshow.cache", "memory")
	v.SetDefault("slideshow.redis_addr", "localhost:6379")
	v.SetDefault("slideshow.cache_ttl", ImageCacheTTL)
	v.SetDefault("api.addr", ":8090")
	v.SetDefault("kafka.topic", "briefcast-playback-events")
	v.SetDefault("history.dsn", "briefcast-history.db")
	v.SetDefault("schedule.cron", "0 6 * * *")
}

// splitList accepts both YAML lists and a single comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
