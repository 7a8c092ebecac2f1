package health

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type DailyMealPlanRepo interface {
	// Upsert writes the plan for (user, date), overwriting an existing one.
	Upsert(ctx context.Context, tx *gorm.DB, p *types.DailyMealPlan) (*types.DailyMealPlan, error)
	// GetByUserAndDate returns nil, nil when no plan exists.
	GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.DailyMealPlan, error)
}

type dailyMealPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyMealPlanRepo(db *gorm.DB, baseLog *logger.Logger) DailyMealPlanRepo {
	return &dailyMealPlanRepo{db: db, log: baseLog.With("repo", "DailyMealPlanRepo")}
}

var planColumns = []string{
	"menstrual_phase", "cuisine_style", "personalized_message", "breakfast",
	"lunch", "dinner", "snacks", "daily_guidelines", "shopping_list",
	"adaptations", "generated", "updated_at",
}

func (r *dailyMealPlanRepo) Upsert(ctx context.Context, tx *gorm.DB, p *types.DailyMealPlan) (*types.DailyMealPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns(planColumns),
		}).
		Create(p).Error; err != nil {
		return nil, err
	}
	// On conflict the generated id is discarded; read back the stored row.
	return r.GetByUserAndDate(ctx, transaction, p.UserID, p.Date)
}

func (r *dailyMealPlanRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.DailyMealPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.DailyMealPlan
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
