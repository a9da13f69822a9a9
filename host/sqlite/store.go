package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/host"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/observability"
)

// Store is a host.Backend on sqlite.
type Store struct {
	db     *gorm.DB
	log    *logger.Logger
	closed bool
	mu     sync.Mutex
}

var (
	_ host.Backend                = (*Store)(nil)
	_ observability.HealthChecker = (*Store)(nil)
)

// Open opens the store, creating the schema when missing.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sqlite config: %w", err)
	}
	if log == nil {
		log = logger.Get("sqlite")
	}
	db, err := open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// SaveDocument inserts or replaces a document.
func (s *Store) SaveDocument(ctx context.Context, doc host.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Internal(fmt.Errorf("encode document %s: %w", doc.ID, err))
	}
	rec := documentRecord{
		ID:      doc.ID,
		Module:  doc.Module,
		Name:    doc.Name,
		Body:    string(body),
		SavedAt: doc.SavedAt.UTC(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	return fromDatabase(err, "microflow", doc.ID)
}

func (s *Store) LoadDocument(ctx context.Context, id string) (host.Document, error) {
	var rec documentRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return host.Document{}, fromDatabase(err, "microflow", id)
	}
	return decodeDocument(rec)
}

func (s *Store) ListDocuments(ctx context.Context) ([]host.Document, error) {
	var recs []documentRecord
	if err := s.db.WithContext(ctx).Order("saved_at, id").Find(&recs).Error; err != nil {
		return nil, fromDatabase(err, "microflow", "")
	}
	docs := make([]host.Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := decodeDocument(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	host.SortDocuments(docs)
	return docs, nil
}

func (s *Store) ListModules(ctx context.Context) ([]host.Module, error) {
	var recs []moduleRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, fromDatabase(err, "module", "")
	}
	modules := make([]host.Module, len(recs))
	for i, rec := range recs {
		modules[i] = host.Module{Name: rec.Name, FromAppStore: rec.FromAppStore}
	}
	return modules, nil
}

func (s *Store) SaveModule(ctx context.Context, m host.Module) error {
	if m.Name == "" {
		return errors.InvalidInput("name", "module name is required")
	}
	rec := moduleRecord{Name: m.Name, FromAppStore: m.FromAppStore}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	return fromDatabase(err, "module", m.Name)
}

// CheckHealth pings the database.
func (s *Store) CheckHealth(ctx context.Context) observability.Health {
	start := time.Now()
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	h := observability.PingHealth("sqlite", time.Since(start), err)
	if err == nil {
		h.Details["open_connections"] = fmt.Sprint(sqlDB.Stats().OpenConnections)
	}
	return h
}

// Close closes the connection pool. Safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info("Closing sqlite store")
	s.closed = true
	return sqlDB.Close()
}

func decodeDocument(rec documentRecord) (host.Document, error) {
	var doc host.Document
	if err := json.Unmarshal([]byte(rec.Body), &doc); err != nil {
		return host.Document{}, errors.Internal(fmt.Errorf("decode document %s: %w", rec.ID, err))
	}
	return doc, nil
}
