package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/models"
	"github.com/justsurfingit/prep-pilot/internal/prep"
	"gorm.io/datatypes"
)

// Per-record outcomes.
const (
	StatusMigrated     = "migrated"
	StatusWouldMigrate = "would_migrate"
	StatusSkipped      = "skipped"
	StatusError        = "error"

	ReasonAlreadyCurrent  = "Already in new format"
	ReasonNotLegacy       = "Not legacy format"
	ReasonNormalizeFailed = "Normalization returned null"
)

// MigrationStore is the slice of the application store the runner needs.
type MigrationStore interface {
	ListWithInterviewPrep(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Application, error)
	UpdateInterviewPrep(ctx context.Context, id uuid.UUID, payload datatypes.JSON) error
}

// MigrationObserver receives outcome counts. *metrics.MigrationMetrics
// satisfies it.
type MigrationObserver interface {
	ObserveRecord(status string, dryRun bool)
	ObserveBatch(dryRun bool, err error, took time.Duration)
}

type MigrationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

type MigrationOptions struct {
	DryRun bool
	// Limit <= 0 means MigrationConfig.DefaultLimit.
	Limit int
	// AfterID resumes a keyset walk. HTTP callers leave it zero.
	AfterID uuid.UUID
}

type MigrationDetail struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	Error          string `json:"error,omitempty"`
	QuestionsCount *int   `json:"questionsCount,omitempty"`
}

type MigrationReport struct {
	Total    int               `json:"total"`
	Migrated int               `json:"migrated"`
	Skipped  int               `json:"skipped"`
	Errors   []string          `json:"errors"`
	Details  []MigrationDetail `json:"details"`

	// LastID is the id of the last fetched record, zero when nothing was fetched.
	LastID uuid.UUID `json:"-"`
}

type MigrationService struct {
	store MigrationStore
	log   *logger.Logger
	cfg   MigrationConfig
	now   func() time.Time

	observer MigrationObserver
}

func NewMigrationService(store MigrationStore, log *logger.Logger, cfg MigrationConfig) *MigrationService {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 1000
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(100, cfg.MaxLimit)
	}
	return &MigrationService{
		store: store,
		log:   log.With("service", "MigrationService"),
		cfg:   cfg,
		now:   time.Now,
	}
}

// WithObserver attaches an observer for record and batch outcomes.
func (s *MigrationService) WithObserver(o MigrationObserver) *MigrationService {
	s.observer = o
	return s
}

// EffectiveLimit applies the default and the ceiling to a requested batch size.
func (s *MigrationService) EffectiveLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// Run migrates one batch sequentially. The only returned error is a failed
// fetch; per-record problems are recorded in the report.
func (s *MigrationService) Run(ctx context.Context, opts MigrationOptions) (*MigrationReport, error) {
	limit := s.EffectiveLimit(opts.Limit)
	started := time.Now()

	apps, err := s.store.ListWithInterviewPrep(ctx, opts.AfterID, limit)
	if err != nil {
		if s.observer != nil {
			s.observer.ObserveBatch(opts.DryRun, err, time.Since(started))
		}
		return nil, fmt.Errorf("fetch applications with interview prep: %w", err)
	}

	report := &MigrationReport{
		Total:   len(apps),
		Errors:  []string{},
		Details: make([]MigrationDetail, 0, len(apps)),
	}

	for i := range apps {
		app := &apps[i]
		detail := s.migrateOne(ctx, app, opts.DryRun)

		switch detail.Status {
		case StatusMigrated, StatusWouldMigrate:
			report.Migrated++
		case StatusSkipped:
			report.Skipped++
		case StatusError:
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", detail.ID, detail.Error))
		}
		report.Details = append(report.Details, detail)
		report.LastID = app.ID
		if s.observer != nil {
			s.observer.ObserveRecord(detail.Status, opts.DryRun)
		}

		s.log.Debug("Interview prep record processed",
			"application_id", detail.ID, "status", detail.Status, "reason", detail.Reason, "dry_run", opts.DryRun)
	}

	if s.observer != nil {
		s.observer.ObserveBatch(opts.DryRun, nil, time.Since(started))
	}
	s.log.Info("Interview prep migration batch finished",
		"dry_run", opts.DryRun, "limit", limit,
		"total", report.Total, "migrated", report.Migrated, "skipped", report.Skipped, "errors", len(report.Errors))
	return report, nil
}

func (s *MigrationService) migrateOne(ctx context.Context, app *models.Application, dryRun bool) MigrationDetail {
	detail := MigrationDetail{ID: app.ID.String()}

	switch prep.Classify(app.InterviewPrep) {
	case prep.ShapeCurrent:
		detail.Status, detail.Reason = StatusSkipped, ReasonAlreadyCurrent
		return detail
	case prep.ShapeLegacy:
	default:
		detail.Status, detail.Reason = StatusSkipped, ReasonNotLegacy
		return detail
	}

	normalized, err := prep.Normalize(app.InterviewPrep, s.now())
	if err != nil || normalized == nil {
		detail.Status, detail.Reason = StatusSkipped, ReasonNormalizeFailed
		return detail
	}
	count := len(normalized.Questions)
	detail.QuestionsCount = &count

	if dryRun {
		detail.Status = StatusWouldMigrate
		return detail
	}

	payload, err := json.Marshal(normalized)
	if err != nil {
		detail.Status, detail.Error = StatusError, err.Error()
		return detail
	}
	if err := s.store.UpdateInterviewPrep(ctx, app.ID, datatypes.JSON(payload)); err != nil {
		s.log.Warn("Failed to persist migrated interview prep", "application_id", detail.ID, "error", err)
		detail.Status, detail.Error = StatusError, err.Error()
		detail.QuestionsCount = nil
		return detail
	}
	detail.Status = StatusMigrated
	return detail
}

// RunAll walks every candidate record batch by batch, resuming each batch
// after the last id of the previous one. onBatch, when set, sees each report.
// The returned report aggregates all batches without per-record details.
func (s *MigrationService) RunAll(ctx context.Context, dryRun bool, batchSize int, onBatch func(batch int, r *MigrationReport)) (*MigrationReport, error) {
	limit := s.EffectiveLimit(batchSize)
	total := &MigrationReport{Errors: []string{}, Details: []MigrationDetail{}}
	after := uuid.Nil

	for batch := 1; ; batch++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		r, err := s.Run(ctx, MigrationOptions{DryRun: dryRun, Limit: limit, AfterID: after})
		if err != nil {
			return total, err
		}
		total.Total += r.Total
		total.Migrated += r.Migrated
		total.Skipped += r.Skipped
		total.Errors = append(total.Errors, r.Errors...)
		if r.Total > 0 {
			total.LastID = r.LastID
		}
		if onBatch != nil {
			onBatch(batch, r)
		}
		if r.Total < limit {
			return total, nil
		}
		after = r.LastID
	}
}
