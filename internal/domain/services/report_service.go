package services

import (
	"context"
	"fmt"
	"time"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/metrics"
	"appscore-lab/pkg/logger"
)

// ReportCache stores built reports by content hash. GetReport returns nil, nil on a miss.
type ReportCache interface {
	GetReport(ctx context.Context, key string) (*models.Report, error)
	SetReport(ctx context.Context, key string, report *models.Report, ttl time.Duration) error
	DeleteReport(ctx context.Context, key string) error
}

// BuildLocker is implemented by caches that can serialize writers per key
type BuildLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// PayloadSource reads raw tool payloads for a content hash
type PayloadSource interface {
	GetPayloads(ctx context.Context, contentHash string) (map[models.Tool]map[string]any, error)
}

// PayloadSink accepts raw tool payloads
type PayloadSink interface {
	PutPayload(ctx context.Context, contentHash string, tool models.Tool, payload map[string]any) error
}

// ReportStore keeps report history per package
type ReportStore interface {
	SaveReport(ctx context.Context, record models.ReportRecord) error
	ListReports(ctx context.Context, pkg string, limit int) ([]models.ReportRecord, error)
}

// ReportPurger removes stored payloads and history for a content hash. It
// reports whether anything was stored.
type ReportPurger interface {
	PurgeReport(ctx context.Context, contentHash string) (bool, error)
}

// EventPublisher announces built reports and comparisons
type EventPublisher interface {
	PublishReportBuilt(ctx context.Context, report *models.Report) error
	PublishReportCompared(ctx context.Context, result *models.ComparisonResult) error
}

// ReportServiceConfig tunes caching
type ReportServiceConfig struct {
	CacheTTL time.Duration
	LockTTL  time.Duration
}

// ReportServiceDeps are the collaborators of ReportService. Cache, Builder and
// Comparator are required; the rest may be nil.
type ReportServiceDeps struct {
	Builder    *ReportBuilder
	Comparator *Comparator
	Cache      ReportCache
	Payloads   PayloadSource
	Store      ReportStore
	Purger     ReportPurger
	Events     EventPublisher
	Metrics    *metrics.Metrics
}

// ReportService builds, caches, compares and records reports
type ReportService struct {
	cfg        ReportServiceConfig
	builder    *ReportBuilder
	comparator *Comparator
	cache      ReportCache
	payloads   PayloadSource
	store      ReportStore
	purger     ReportPurger
	events     EventPublisher
	metrics    *metrics.Metrics
	logger     *logger.Logger
	now        func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(cfg ReportServiceConfig, deps ReportServiceDeps, log *logger.Logger) *ReportService {
	return &ReportService{
		cfg:        cfg,
		builder:    deps.Builder,
		comparator: deps.Comparator,
		cache:      deps.Cache,
		payloads:   deps.Payloads,
		store:      deps.Store,
		purger:     deps.Purger,
		events:     deps.Events,
		metrics:    deps.Metrics,
		logger:     log.WithComponent("report-service"),
		now:        time.Now,
	}
}

// Build builds a report from explicit payloads and stores it
func (s *ReportService) Build(ctx context.Context, in BuildInput) (*models.Report, error) {
	report, err := s.builder.Build(in)
	if err != nil {
		return nil, err
	}
	s.metrics.ReportBuilt(string(report.ScoreMode))
	s.persist(ctx, report)
	return report, nil
}

// GetReport returns the cached report for a hash, rebuilding it from stored
// payloads on a miss
func (s *ReportService) GetReport(ctx context.Context, contentHash string) (*models.Report, error) {
	if contentHash == "" {
		return nil, &InvalidInputError{Field: "content_hash", Reason: "must not be empty"}
	}

	cached, err := s.cache.GetReport(ctx, contentHash)
	if err != nil {
		s.logger.Warn().Err(err).Str("content_hash", contentHash).Msg("report cache read failed, rebuilding")
	}
	if cached != nil {
		s.metrics.CacheHit()
		return cached, nil
	}
	s.metrics.CacheMiss()

	if s.payloads == nil {
		return nil, ErrReportNotFound
	}

	payloads, err := s.payloads.GetPayloads(ctx, contentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load payloads: %w", err)
	}
	if len(payloads) == 0 {
		return nil, ErrReportNotFound
	}

	return s.Build(ctx, BuildInput{ContentHash: contentHash, Payloads: payloads})
}

// IngestPayload stores one tool payload and drops the cached report for the hash
func (s *ReportService) IngestPayload(ctx context.Context, contentHash string, tool models.Tool, payload map[string]any) error {
	if contentHash == "" {
		return &InvalidInputError{Field: "content_hash", Reason: "must not be empty"}
	}
	if _, ok := models.ParseTool(string(tool)); !ok {
		return &InvalidInputError{Field: "tool", Value: tool, Reason: "unsupported tool"}
	}
	if payload == nil {
		return &InvalidInputError{Field: "payload", Reason: "must be a JSON object"}
	}

	sink, ok := s.payloads.(PayloadSink)
	if !ok {
		return ErrStorageUnavailable
	}
	if err := sink.PutPayload(ctx, contentHash, tool, payload); err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}

	return s.InvalidateReport(ctx, contentHash)
}

// InvalidateReport removes the cached report for a hash
func (s *ReportService) InvalidateReport(ctx context.Context, contentHash string) error {
	if err := s.cache.DeleteReport(ctx, contentHash); err != nil {
		return fmt.Errorf("failed to invalidate report: %w", err)
	}
	return nil
}

// DeleteReport removes the payloads, history entry and cached report for a hash
func (s *ReportService) DeleteReport(ctx context.Context, contentHash string) error {
	if contentHash == "" {
		return &InvalidInputError{Field: "content_hash", Reason: "must not be empty"}
	}
	if s.purger == nil {
		return ErrStorageUnavailable
	}

	found, err := s.purger.PurgeReport(ctx, contentHash)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if err := s.InvalidateReport(ctx, contentHash); err != nil {
		return err
	}
	if !found {
		return ErrReportNotFound
	}

	s.logger.WithContentHash(contentHash).Info().Msg("deleted report")
	return nil
}

// Compare diffs two already-built reports
func (s *ReportService) Compare(ctx context.Context, a, b *models.Report) (*models.ComparisonResult, error) {
	result, err := s.comparator.Compare(a, b)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishReportCompared(ctx, result); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish comparison event")
		}
	}
	return result, nil
}

// CompareByHash loads or rebuilds both reports, then diffs them
func (s *ReportService) CompareByHash(ctx context.Context, hashA, hashB string) (*models.ComparisonResult, error) {
	a, err := s.GetReport(ctx, hashA)
	if err != nil {
		return nil, fmt.Errorf("report_a: %w", err)
	}
	b, err := s.GetReport(ctx, hashB)
	if err != nil {
		return nil, fmt.Errorf("report_b: %w", err)
	}
	return s.Compare(ctx, a, b)
}

// History lists stored report records for a package, newest first
func (s *ReportService) History(ctx context.Context, pkg string, limit int) ([]models.ReportRecord, error) {
	if pkg == "" {
		return nil, &InvalidInputError{Field: "package", Reason: "must not be empty"}
	}
	if s.store == nil {
		return []models.ReportRecord{}, nil
	}
	return s.store.ListReports(ctx, pkg, limit)
}

// persist writes the report to cache, history and the event stream. Failures
// are logged; the built report is still returned to the caller.
func (s *ReportService) persist(ctx context.Context, report *models.Report) {
	if report.ContentHash == "" {
		return
	}
	log := s.logger.WithContentHash(report.ContentHash)

	if s.cacheWrite(ctx, report) {
		log.Debug().Msg("cached report")
	}

	if s.store != nil && report.AppInfo.Package != "" {
		if err := s.store.SaveReport(ctx, report.Record(s.now().UTC())); err != nil {
			log.Warn().Err(err).Msg("failed to record report history")
		}
	}

	if s.events != nil {
		if err := s.events.PublishReportBuilt(ctx, report); err != nil {
			log.Warn().Err(err).Msg("failed to publish report event")
		}
	}
}

// cacheWrite stores the report, taking the per-key lock when the cache offers
// one. A concurrent writer holding the lock is storing an identical build.
func (s *ReportService) cacheWrite(ctx context.Context, report *models.Report) bool {
	key := report.ContentHash

	if locker, ok := s.cache.(BuildLocker); ok {
		acquired, err := locker.AcquireLock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			s.logger.Warn().Err(err).Str("content_hash", key).Msg("failed to acquire build lock")
			return false
		}
		if !acquired {
			return false
		}
		defer func() {
			if err := locker.ReleaseLock(ctx, key); err != nil {
				s.logger.Warn().Err(err).Str("content_hash", key).Msg("failed to release build lock")
			}
		}()
	}

	if err := s.cache.SetReport(ctx, key, report, s.cfg.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("content_hash", key).Msg("failed to cache report")
		return false
	}
	return true
}
