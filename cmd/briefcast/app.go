package main

import (
	"context"
	"fmt"
	"log"

	"briefcast/blob"
	"briefcast/config"
	"briefcast/coordinator"
	"briefcast/events"
	"briefcast/gateway"
	"briefcast/history"
	"briefcast/library"
	"briefcast/metrics"
	"briefcast/player"
	"briefcast/session"
	"briefcast/slideshow"
	"briefcast/transcript"
)

// app is every long-lived component, built once from configuration.
type app struct {
	cfg     *config.Config
	gateway *gateway.Client
	session *session.Session
	history *history.Store
	metrics *metrics.Metrics
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}

	a.gateway = gateway.NewClient(gateway.Options{
		BaseURL:   cfg.Gateway.BaseURL,
		Timeout:   cfg.Gateway.Timeout,
		Retries:   cfg.Gateway.Retries,
		UserEmail: cfg.Gateway.UserEmail,
		Premium:   cfg.Gateway.Premium,
	})

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var out player.Output = player.SilentOutput{}
	var prober player.Prober
	if cfg.Player.Output == "ffplay" {
		out = player.NewFFPlayOutput()
		prober = player.FFProbe{}
	}
	engine := player.New(player.Options{Output: out, Prober: prober, Tick: cfg.Player.Tick})

	static, err := loadTranscripts(cfg)
	if err != nil {
		return nil, err
	}
	resolver := transcript.NewResolver(static, a.gateway, transcript.ReadabilityFetcher{})

	hooks := []coordinator.Hook{a.metrics}
	if store, err := history.Open(cfg.History.DSN); err != nil {
		log.Printf("⚠️  History disabled: %v", err)
	} else {
		a.history = store
		hooks = append(hooks, store)
		a.closers = append(a.closers, store.Close)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Printf("⚠️  Event publishing disabled: %v", err)
		} else {
			hooks = append(hooks, pub)
			a.closers = append(a.closers, pub.Close)
		}
	}

	coord := coordinator.New(coordinator.Options{
		Gateway:     a.gateway,
		Engine:      engine,
		Blobs:       blobs,
		Transcripts: resolver,
		Hooks:       hooks,
		Timeout:     cfg.Generation.Timeout,
		User:        cfg.Gateway.UserEmail,
	})

	slides := slideshow.New(slideshow.Options{
		Transcripts: resolver,
		Images:      a.gateway,
		Cache:       a.imageCache(cfg),
		Debounce:    cfg.Slideshow.Debounce,
		OnLookup:    a.metrics.ImageLookup,
	})

	a.session = session.New(session.Options{
		Coordinator: coord,
		Engine:      engine,
		Transcripts: resolver,
		Slides:      slides,
		Library:     library.New(a.gateway),
		Studio:      a.gateway,
		Blobs:       blobs,
	})
	return a, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Blob.Provider {
	case "s3":
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:       cfg.Blob.Bucket,
			Prefix:       cfg.Blob.Prefix,
			Region:       cfg.Blob.Region,
			Profile:      cfg.Blob.Profile,
			UsePathStyle: cfg.Blob.UsePathStyle,
			PresignTTL:   cfg.Blob.PresignTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init S3 audio store: %w", err)
		}
		log.Printf("✅ Audio stored in s3://%s/%s", cfg.Blob.Bucket, cfg.Blob.Prefix)
		return store, nil
	case "", "local":
		store, err := blob.NewLocalStore(cfg.Blob.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to init local audio store: %w", err)
		}
		log.Printf("✅ Audio stored in %s", store.Dir())
		return store, nil
	}
	return nil, fmt.Errorf("unknown blob provider %q", cfg.Blob.Provider)
}

func loadTranscripts(cfg *config.Config) (*transcript.Store, error) {
	if cfg.Transcripts.File != "" {
		return transcript.LoadFile(cfg.Transcripts.File)
	}
	return transcript.Builtin()
}

// imageCache falls back to memory when Redis is unreachable.
func (a *app) imageCache(cfg *config.Config) slideshow.Cache {
	if cfg.Slideshow.Cache != "redis" {
		return slideshow.NewMemoryCache()
	}
	rc, err := slideshow.NewRedisCache(slideshow.RedisConfig{
		Addr:     cfg.Slideshow.RedisAddr,
		Password: cfg.Slideshow.RedisPassword,
		DB:       cfg.Slideshow.RedisDB,
		TTL:      cfg.Slideshow.CacheTTL,
	})
	if err != nil {
		log.Printf("⚠️  Image cache falling back to memory: %v", err)
		return slideshow.NewMemoryCache()
	}
	a.closers = append(a.closers, rc.Close)
	return rc
}

// Close shuts the session down, then the sinks that its hooks write to.
func (a *app) Close() {
	a.session.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("⚠️  Shutdown: %v", err)
		}
	}
}
