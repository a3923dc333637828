package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/campushub/coursecat/internal/infrastructure/logging"
	"github.com/campushub/coursecat/internal/infrastructure/tracing"
)

// Store persists the course catalog as one pretty-printed JSON array in
// a flat file. Lifecycle is whole-file read on every load and whole-file
// rewrite on every save; there is no locking, so concurrent writers race
// (last writer wins). Single-writer deployments are the supported shape.
type Store struct {
	path   string
	tracer *tracing.Tracer
	logger *logging.Logger
	cache  *readCache

	// OnLoad feeds an externally owned counter per load outcome
	// ("cached", "ok", "missing", "error"). Wired at startup.
	OnLoad func(outcome string)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCache puts a ristretto read cache in front of catalog loads. The
// cache is invalidated on every save.
func WithCache(maxEntries int64) StoreOption {
	return func(s *Store) {
		cache, err := newReadCache(maxEntries)
		if err != nil {
			s.logger.Warn("failed to build catalog cache, reads go to disk", zap.Error(err))
			return
		}
		s.cache = cache
	}
}

// NewStore creates a store reading and writing the catalog file at path.
func NewStore(path string, tracer *tracing.Tracer, logger *logging.Logger, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		tracer: tracer,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the catalog file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole catalog. A missing file is an empty catalog, not
// an error; read and parse failures are recorded on the span, logged,
// and also surface as an empty catalog. The HTTP layer never sees a
// storage error.
func (s *Store) Load(ctx context.Context) []Course {
	ctx, span := s.tracer.StartSpan(ctx, "load_courses")
	defer span.End()

	if cached, ok := s.cacheGet(); ok {
		span.SetAttribute("course.cache_hit", true)
		span.SetAttribute("course.count", len(cached))
		s.countLoad("cached")
		return cached
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		span.SetAttribute("course.file_exists", false)
		s.countLoad("missing")
		return []Course{}
	}
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to read course catalog", zap.String("path", s.path), zap.Error(err))
		s.countLoad("error")
		return []Course{}
	}
	span.SetAttribute("course.file_exists", true)

	var courses []Course
	if err := json.Unmarshal(data, &courses); err != nil {
		span.RecordError(fmt.Errorf("parse course catalog: %w", err))
		s.logger.Error("failed to parse course catalog", zap.String("path", s.path), zap.Error(err))
		s.countLoad("error")
		return []Course{}
	}

	span.SetAttribute("course.count", len(courses))
	s.cacheSet(courses)
	s.countLoad("ok")
	return courses
}

// Append loads the catalog, appends the course, and rewrites the whole
// file. Field order and sibling records are preserved byte for byte.
func (s *Store) Append(ctx context.Context, course Course) error {
	ctx, span := s.tracer.StartSpan(ctx, "save_course")
	defer span.End()

	courses := s.Load(ctx)
	courses = append(courses, course)

	if err := s.write(courses); err != nil {
		span.RecordError(err)
		span.SetAttribute("course.saved", false)
		s.logger.Error("failed to save course catalog", zap.String("path", s.path), zap.Error(err))
		return err
	}

	span.SetAttribute("course.saved", true)
	span.SetAttribute("course.count", len(courses))
	s.cacheInvalidate()
	return nil
}

// FindByCode returns the first course matching code. Duplicate codes are
// possible; first match wins.
func (s *Store) FindByCode(ctx context.Context, code string) (Course, bool) {
	for _, course := range s.Load(ctx) {
		if course.Code == code {
			return course, true
		}
	}
	return Course{}, false
}

// Count returns the number of records currently in the catalog.
func (s *Store) Count(ctx context.Context) int {
	return len(s.Load(ctx))
}

func (s *Store) write(courses []Course) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(courses, "", "    ")
	if err != nil {
		return fmt.Errorf("encode course catalog: %w", err)
	}

	// Whole-file rewrite, no temp file and no lock. Matches the
	// documented single-writer contract.
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write course catalog: %w", err)
	}
	return nil
}

func (s *Store) countLoad(outcome string) {
	if s.OnLoad != nil {
		s.OnLoad(outcome)
	}
}

func (s *Store) cacheGet() ([]Course, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get()
}

func (s *Store) cacheSet(courses []Course) {
	if s.cache != nil {
		s.cache.Set(courses)
	}
}

func (s *Store) cacheInvalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
