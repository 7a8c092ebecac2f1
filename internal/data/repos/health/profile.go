package health

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type HealthProfileRepo interface {
	// Upsert stores p as the user's only profile, replacing any earlier one.
	Upsert(ctx context.Context, tx *gorm.DB, p *types.HealthProfile) (*types.HealthProfile, error)
	// GetByUserID returns nil, nil when the user has not onboarded.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.HealthProfile, error)
}

type healthProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthProfileRepo(db *gorm.DB, baseLog *logger.Logger) HealthProfileRepo {
	return &healthProfileRepo{db: db, log: baseLog.With("repo", "HealthProfileRepo")}
}

var profileColumns = []string{
	"age", "height", "weight", "diet", "symptoms", "goals", "medical_conditions",
	"medications", "allergies", "lifestyle", "last_period_date", "cycle_length",
	"period_length", "irregular_periods", "stress_level", "sleep_hours",
	"exercise_level", "water_intake", "completed_at", "updated_at",
}

func (r *healthProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, p *types.HealthProfile) (*types.HealthProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	p.CompletedAt = time.Now().UTC()
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(profileColumns),
		}).
		Create(p).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, transaction, p.UserID)
}

func (r *healthProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.HealthProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.HealthProfile
	err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
