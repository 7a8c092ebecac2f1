package health

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type DailyFeedbackRepo interface {
	// Create inserts feedback. A second row for the same (user, date) fails
	// with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, tx *gorm.DB, f *types.DailyFeedback) (*types.DailyFeedback, error)
	// GetByUserAndDate returns nil, nil when no feedback exists.
	GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.DailyFeedback, error)
}

type dailyFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) DailyFeedbackRepo {
	return &dailyFeedbackRepo{db: db, log: baseLog.With("repo", "DailyFeedbackRepo")}
}

func (r *dailyFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, f *types.DailyFeedback) (*types.DailyFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Omit("MealPlan").Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (r *dailyFeedbackRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.DailyFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var f types.DailyFeedback
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
