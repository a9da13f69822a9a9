package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/host"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/observability"
)

// Store is a host.Backend on Redis. Documents are JSON strings under
// <prefix>:doc:<id>, indexed by the set <prefix>:docs. Modules live in the
// hash <prefix>:modules.
type Store struct {
	rdb       *goredis.Client
	log       *logger.Logger
	keyPrefix string
	closed    bool
	mu        sync.Mutex
}

var (
	_ host.Backend                = (*Store)(nil)
	_ observability.HealthChecker = (*Store)(nil)
)

// New creates a Store and verifies connectivity.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if log == nil {
		log = logger.Get("redis")
	}

	dialTimeout, _ := time.ParseDuration(cfg.DialTimeout)
	readTimeout, _ := time.ParseDuration(cfg.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.WriteTimeout)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info("Redis store connected", map[string]interface{}{
		"addr":       cfg.Addr,
		"db":         cfg.DB,
		"key_prefix": cfg.KeyPrefix,
	})
	return &Store{rdb: rdb, log: log, keyPrefix: cfg.KeyPrefix}, nil
}

func (s *Store) key(parts ...string) string {
	k := s.keyPrefix
	for _, p := range parts {
		if k == "" {
			k = p
			continue
		}
		k += ":" + p
	}
	return k
}

func (s *Store) SaveDocument(ctx context.Context, doc host.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Internal(fmt.Errorf("encode document %s: %w", doc.ID, err))
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key("doc", doc.ID), data, 0)
		pipe.SAdd(ctx, s.key("docs"), doc.ID)
		return nil
	})
	if err != nil {
		return errors.Internal(fmt.Errorf("save document %s: %w", doc.ID, err))
	}
	return nil
}

func (s *Store) LoadDocument(ctx context.Context, id string) (host.Document, error) {
	raw, err := s.rdb.Get(ctx, s.key("doc", id)).Result()
	if stderrors.Is(err, goredis.Nil) {
		return host.Document{}, errors.NotFound("microflow", id)
	}
	if err != nil {
		return host.Document{}, errors.Internal(fmt.Errorf("load document %s: %w", id, err))
	}
	return decodeDocument(id, raw)
}

// ListDocuments returns every indexed document. Index entries whose
// document has disappeared are skipped.
func (s *Store) ListDocuments(ctx context.Context) ([]host.Document, error) {
	ids, err := s.rdb.SMembers(ctx, s.key("docs")).Result()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("list documents: %w", err))
	}
	if len(ids) == 0 {
		return []host.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("doc", id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("list documents: %w", err))
	}

	docs := make([]host.Document, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.log.Warn("Dangling document index entry", logger.Fields("id", ids[i]))
			continue
		}
		doc, err := decodeDocument(ids[i], raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	host.SortDocuments(docs)
	return docs, nil
}

func (s *Store) ListModules(ctx context.Context) ([]host.Module, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key("modules")).Result()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("list modules: %w", err))
	}
	modules := make([]host.Module, 0, len(fields))
	for name, raw := range fields {
		var m host.Module
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, errors.Internal(fmt.Errorf("decode module %s: %w", name, err))
		}
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}

func (s *Store) SaveModule(ctx context.Context, m host.Module) error {
	if m.Name == "" {
		return errors.InvalidInput("name", "module name is required")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return errors.Internal(err)
	}
	if err := s.rdb.HSet(ctx, s.key("modules"), m.Name, data).Err(); err != nil {
		return errors.Internal(fmt.Errorf("save module %s: %w", m.Name, err))
	}
	return nil
}

// CheckHealth pings Redis.
func (s *Store) CheckHealth(ctx context.Context) observability.Health {
	start := time.Now()
	err := s.rdb.Ping(ctx).Err()
	return observability.PingHealth("redis", time.Since(start), err)
}

// Close closes the Redis connection. Safe to call multiple times.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.log.Info("Closing redis store")
	s.closed = true
	return s.rdb.Close()
}

// Unwrap returns the underlying go-redis client.
func (s *Store) Unwrap() *goredis.Client {
	return s.rdb
}

func decodeDocument(id, raw string) (host.Document, error) {
	var doc host.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return host.Document{}, errors.Internal(fmt.Errorf("decode document %s: %w", id, err))
	}
	return doc, nil
}
