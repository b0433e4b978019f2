package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/models"
	"gorm.io/gorm"
)

type RoleRepo interface {
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	Grant(ctx context.Context, userID uuid.UUID, role string) error
}

type roleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoleRepo(db *gorm.DB, baseLog *logger.Logger) RoleRepo {
	return &roleRepo{db: db, log: baseLog.With("repo", "RoleRepo")}
}

func (r *roleRepo) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant is idempotent.
func (r *roleRepo) Grant(ctx context.Context, userID uuid.UUID, role string) error {
	return r.db.WithContext(ctx).
		Where(models.UserRole{UserID: userID, Role: role}).
		FirstOrCreate(&models.UserRole{}).Error
}
