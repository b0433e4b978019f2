package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("record not found")

type ApplicationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	// ListWithInterviewPrep returns up to limit applications whose interview
	// prep is not NULL, ordered by id. A non-zero afterID restricts the result
	// to ids greater than it.
	ListWithInterviewPrep(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Application, error)
	UpdateInterviewPrep(ctx context.Context, id uuid.UUID, payload datatypes.JSON) error
}

type applicationRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	table string
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger, table string) ApplicationRepo {
	if table == "" {
		table = "applications"
	}
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo"), table: table}
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Table(r.table).
		Preload("Company").
		Where("id = ?", id).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) ListWithInterviewPrep(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Application, error) {
	var results []models.Application
	if limit <= 0 {
		return results, nil
	}

	q := r.db.WithContext(ctx).
		Table(r.table).
		Where("interview_prep IS NOT NULL")
	if afterID != uuid.Nil {
		q = q.Where("id > ?", afterID)
	}
	if err := q.Order("id ASC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *applicationRepo) UpdateInterviewPrep(ctx context.Context, id uuid.UUID, payload datatypes.JSON) error {
	res := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Table(r.table).
		Where("id = ?", id).
		Update("interview_prep", payload)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("application %s: %w", id, ErrRecordNotFound)
	}
	return nil
}
