// Package history records what the user listened to in a local SQLite
// database.
package history

import (
	"errors"
	"fmt"
	"log"
	"time"

	"briefcast/types"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Play is one started track.
type Play struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TrackID   string     `gorm:"index;not null" json:"track_id"`
	Title     string     `json:"title"`
	Src       string     `json:"src"`
	Cached    bool       `json:"cached"`
	Completed bool       `gorm:"default:false" json:"completed"`
	StartedAt time.Time  `gorm:"index" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Generation is one finished generation request.
type Generation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TrackID    string    `gorm:"index" json:"track_id"`
	Title      string    `json:"title"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `gorm:"index" json:"finished_at"`
}

// Store persists plays and generations.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open opens (and migrates) the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get history connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Play{}, &Generation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	log.Printf("✅ History database ready (%s)", dsn)
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TrackStarted inserts a play row.
func (s *Store) TrackStarted(track types.Track, cached bool) {
	p := Play{TrackID: track.ID, Title: track.Title, Src: track.Src, Cached: cached, StartedAt: s.now()}
	if err := s.db.Create(&p).Error; err != nil {
		log.Printf("⚠️  Failed to record play of %s: %v", track.ID, err)
	}
}

// TrackEnded marks the latest open play of the track as completed.
func (s *Store) TrackEnded(track types.Track) {
	var p Play
	err := s.db.Where("track_id = ? AND completed = ?", track.ID, false).
		Order("id desc").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	if err != nil {
		log.Printf("⚠️  Failed to look up play of %s: %v", track.ID, err)
		return
	}
	ended := s.now()
	if err := s.db.Model(&p).Updates(map[string]any{"completed": true, "ended_at": ended}).Error; err != nil {
		log.Printf("⚠️  Failed to complete play of %s: %v", track.ID, err)
	}
}

// GenerationFinished inserts a generation row.
func (s *Store) GenerationFinished(gen types.GenerationState, took time.Duration, err error) {
	g := Generation{TrackID: gen.ID, Title: gen.Title, DurationMS: took.Milliseconds(), FinishedAt: s.now()}
	if err != nil {
		g.Error = err.Error()
	}
	if dbErr := s.db.Create(&g).Error; dbErr != nil {
		log.Printf("⚠️  Failed to record generation of %s: %v", gen.ID, dbErr)
	}
}

// Recent returns the n most recent plays, newest first.
func (s *Store) Recent(n int) ([]Play, error) {
	var plays []Play
	if err := s.db.Order("started_at desc, id desc").Limit(n).Find(&plays).Error; err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return plays, nil
}

// Generations returns the n most recent generations, newest first.
func (s *Store) Generations(n int) ([]Generation, error) {
	var gens []Generation
	if err := s.db.Order("finished_at desc, id desc").Limit(n).Find(&gens).Error; err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	return gens, nil
}

// PlayCount returns how many times a track was started.
func (s *Store) PlayCount(trackID string) (int64, error) {
	var n int64
	if err := s.db.Model(&Play{}).Where("track_id = ?", trackID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return n, nil
}
