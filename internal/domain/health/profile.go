package health

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/cycle"
)

// HealthProfile holds a user's onboarding answers as submitted. Use
// Normalize for a typed view.
type HealthProfile struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Age               string                      `gorm:"column:age" json:"age"`
	Height            string                      `gorm:"column:height" json:"height,omitempty"`
	Weight            string                      `gorm:"column:weight" json:"weight,omitempty"`
	Diet              string                      `gorm:"column:diet" json:"diet"`
	Symptoms          datatypes.JSONSlice[string] `gorm:"column:symptoms" json:"symptoms"`
	Goals             datatypes.JSONSlice[string] `gorm:"column:goals" json:"goals"`
	MedicalConditions datatypes.JSONSlice[string] `gorm:"column:medical_conditions" json:"medicalConditions"`
	Medications       datatypes.JSONSlice[string] `gorm:"column:medications" json:"medications"`
	Allergies         datatypes.JSONSlice[string] `gorm:"column:allergies" json:"allergies"`
	Lifestyle         datatypes.JSONMap           `gorm:"column:lifestyle" json:"lifestyle,omitempty"`
	LastPeriodDate    string                      `gorm:"column:last_period_date" json:"lastPeriodDate,omitempty"`
	CycleLength       string                      `gorm:"column:cycle_length" json:"cycleLength,omitempty"`
	PeriodLength      string                      `gorm:"column:period_length" json:"periodLength,omitempty"`
	IrregularPeriods  bool                        `gorm:"column:irregular_periods;not null;default:false" json:"irregularPeriods"`
	StressLevel       string                      `gorm:"column:stress_level" json:"stressLevel,omitempty"`
	SleepHours        string                      `gorm:"column:sleep_hours" json:"sleepHours,omitempty"`
	ExerciseLevel     string                      `gorm:"column:exercise_level" json:"exerciseLevel,omitempty"`
	WaterIntake       string                      `gorm:"column:water_intake" json:"waterIntake,omitempty"`
	CompletedAt       time.Time                   `gorm:"not null" json:"completedAt"`
	UpdatedAt         time.Time                   `gorm:"not null" json:"updatedAt"`
}

func (HealthProfile) TableName() string { return "health_profile" }

func (p *HealthProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CompletedAt.IsZero() {
		p.CompletedAt = time.Now().UTC()
	}
	return nil
}

// Normalize returns the typed profile used by meal planning. A last period
// date after now is ignored.
func (p *HealthProfile) Normalize(now time.Time) nutrition.Profile {
	out := nutrition.Profile{
		Age:               strings.TrimSpace(p.Age),
		Diet:              strings.TrimSpace(p.Diet),
		Symptoms:          cleanList(p.Symptoms),
		Goals:             cleanList(p.Goals),
		MedicalConditions: cleanList(p.MedicalConditions),
		Allergies:         cleanList(p.Allergies),
		CycleLength:       cycle.ParseLength(p.CycleLength),
		Irregular:         p.IrregularPeriods,
		StressLevel:       firstNonEmpty(p.StressLevel, p.lifestyleString("stressLevel", "stress_level", "stress")),
		SleepHours:        firstNonEmpty(p.SleepHours, p.lifestyleString("sleepHours", "sleep_hours", "sleep")),
		ExerciseLevel:     firstNonEmpty(p.ExerciseLevel, p.lifestyleString("exerciseLevel", "exercise_level", "exercise")),
		WaterIntake:       firstNonEmpty(p.WaterIntake, p.lifestyleString("waterIntake", "water_intake", "water")),
	}
	if lp := cycle.ParseDate(p.LastPeriodDate); lp != nil && !lp.After(now) {
		out.LastPeriod = lp
	}
	return out
}

func (p *HealthProfile) lifestyleString(keys ...string) string {
	for _, k := range keys {
		if v, ok := p.Lifestyle[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
