package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/dtos"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/models"
	"github.com/justsurfingit/prep-pilot/internal/prep"
	"github.com/justsurfingit/prep-pilot/internal/repos"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNoInterviewPrep = errors.New("application has no interview preparation yet")

type ApplicationService struct {
	DB   *gorm.DB
	Repo repos.ApplicationRepo
	log  *logger.Logger
	now  func() time.Time
}

func NewApplicationService(db *gorm.DB, repo repos.ApplicationRepo, log *logger.Logger) *ApplicationService {
	return &ApplicationService{
		DB:   db,
		Repo: repo,
		log:  log.With("service", "ApplicationService"),
		now:  time.Now,
	}
}

func (s *ApplicationService) CreateApplication(ctx context.Context, req *dtos.ApplicationCreationRequest) (*models.Application, error) {
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", err)
	}

	var app *models.Application
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// it creates the company if it doesn't exist yet
		var company models.Company
		if err := tx.Where(models.Company{Name: req.CompanyName}).FirstOrCreate(&company).Error; err != nil {
			return err
		}

		app = &models.Application{
			OwnerID:        ownerID,
			CompanyID:      company.ID,
			Title:          req.Title,
			JobDescription: req.JobDescription,
			JobLink:        req.JobLink,
			Status:         req.Status,
			ResumeText:     req.ResumeText,
		}
		if p := bytes.TrimSpace(req.InterviewPrep); len(p) > 0 && !bytes.Equal(p, []byte("null")) {
			app.InterviewPrep = datatypes.JSON(p)
		}
		return tx.Create(app).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Application created", "application_id", app.ID.String(), "company", req.CompanyName)
	return app, nil
}

// InterviewPrep returns the stored prep in current shape. Legacy payloads are
// converted for the response only.
func (s *ApplicationService) InterviewPrep(ctx context.Context, id uuid.UUID) (json.RawMessage, prep.Shape, error) {
	app, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, prep.ShapeEmpty, err
	}
	if len(app.InterviewPrep) == 0 {
		return nil, prep.ShapeEmpty, ErrNoInterviewPrep
	}
	return prep.View(app.InterviewPrep, s.now())
}
