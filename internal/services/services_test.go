package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/data/repos"
	"github.com/yungbote/winnie-backend/internal/data/repos/testutil"
	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/mealplan"
	"github.com/yungbote/winnie-backend/internal/platform/apierr"
	"github.com/yungbote/winnie-backend/internal/platform/ctxutil"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

// fakeGen stands in for the LLM client. respond picks the reply per call;
// when nil, reply/err are returned.
type fakeGen struct {
	mu      sync.Mutex
	reply   string
	err     error
	respond func(system, user, schemaName string) (string, error)
	calls   []string
}

func (f *fakeGen) GenerateJSONText(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, schemaName)
	respond := f.respond
	f.mu.Unlock()
	if respond != nil {
		return respond(system, user, schemaName)
	}
	return f.reply, f.err
}

// GenerateText answers through respond with an empty schema name.
func (f *fakeGen) GenerateText(ctx context.Context, system, user string) (string, error) {
	return f.GenerateJSONText(ctx, system, user, "", nil)
}

func (f *fakeGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// generatedPlanJSON is a valid plan distinguishable from every fallback.
func generatedPlanJSON(t *testing.T) string {
	t.Helper()
	plan := mealplan.Fallback(mealplan.FallbackKey{Kind: mealplan.KindDaily})
	plan.Breakfast.Name = "Generated Seeded Porridge"
	plan.Lunch.Name = "Generated Lentil Bowl"
	plan.Dinner.Name = "Generated Baked Salmon"
	plan.Adaptations = []string{"model-chosen adaptation"}
	raw, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal plan: %v", err)
	}
	return string(raw)
}

type env struct {
	db       *gorm.DB
	log      *logger.Logger
	now      time.Time
	users    repos.UserRepo
	profiles repos.HealthProfileRepo
	plans    repos.DailyMealPlanRepo
	feedback repos.DailyFeedbackRepo
	chat     repos.ChatMessageRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &env{
		db:       db,
		log:      log,
		now:      time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
		users:    repos.NewUserRepo(db, log),
		profiles: repos.NewHealthProfileRepo(db, log),
		plans:    repos.NewDailyMealPlanRepo(db, log),
		feedback: repos.NewDailyFeedbackRepo(db, log),
		chat:     repos.NewChatMessageRepo(db, log),
	}
}

func (e *env) clock() time.Time { return e.now }

func (e *env) profileService() ProfileService {
	return NewProfileService(e.db, e.log, e.users, e.profiles, e.clock)
}

func (e *env) user(t *testing.T) context.Context {
	t.Helper()
	u := testutil.SeedUser(t, context.Background(), e.db, uuid.NewString()+"@example.com")
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID})
}

func (e *env) onboard(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := e.profileService().SaveOnboarding(ctx, OnboardingInput{
		Age:            "29",
		Diet:           "vegetarian",
		Symptoms:       []string{"irregular periods", "acne"},
		Goals:          []string{"balance hormones"},
		LastPeriodDate: "2025-03-01",
		CycleLength:    "28",
	})
	if err != nil {
		t.Fatalf("SaveOnboarding: %v", err)
	}
}

func wantAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d %s, got nil", status, code)
	}
	ae := apierr.From(err)
	if ae.Status != status || ae.Code != code {
		t.Fatalf("got %d %q (%v), want %d %q", ae.Status, ae.Code, err, status, code)
	}
}

func TestAuthRegisterLoginAndToken(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(e.db, e.log, e.users, e.chat, "test-secret", time.Hour)
	ctx := context.Background()

	u, tok, err := auth.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "correct horse", Name: "Ada"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.com" || tok == "" {
		t.Fatalf("user=%+v token=%q", u, tok)
	}
	if u.Password == "correct horse" {
		t.Fatalf("password stored in clear text")
	}

	_, _, err = auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another one", Name: "Ada"})
	wantAPIError(t, err, 409, "email_taken")

	_, _, err = auth.Register(ctx, RegisterInput{Email: "not-an-email", Password: "correct horse", Name: "X"})
	wantAPIError(t, err, 400, "invalid_request")

	_, _, err = auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong password"})
	wantAPIError(t, err, 401, "invalid_credentials")

	_, _, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	wantAPIError(t, err, 401, "invalid_credentials")

	_, tok, err = auth.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	authed, err := auth.SetContextFromToken(ctx, tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if ctxutil.UserID(authed) != u.ID {
		t.Fatalf("user id=%s want %s", ctxutil.UserID(authed), u.ID)
	}

	other := NewAuthService(e.db, e.log, e.users, e.chat, "other-secret", time.Hour)
	_, err = other.SetContextFromToken(ctx, tok)
	wantAPIError(t, err, 401, "unauthorized")

	_, err = auth.SetContextFromToken(ctx, "")
	wantAPIError(t, err, 401, "unauthorized")
}

func TestAuthExpiredToken(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.db, e.log, e.users, e.chat, "test-secret", time.Minute).(*authService)
	issued := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	u, tok, err := svc.Register(context.Background(), RegisterInput{Email: "exp@example.com", Password: "long enough", Name: "Exp"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u == nil {
		t.Fatalf("nil user")
	}
	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.SetContextFromToken(context.Background(), tok)
	wantAPIError(t, err, 401, "unauthorized")
}

func TestProfileGetBeforeAndAfterOnboarding(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	ps := e.profileService()

	u, p, err := ps.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u == nil || p != nil {
		t.Fatalf("before onboarding: user=%v profile=%v", u, p)
	}
	_, err = ps.Normalized(ctx, u.ID)
	wantAPIError(t, err, 400, "profile_required")

	e.onboard(t, ctx)
	_, p, err = ps.Get(ctx)
	if err != nil || p == nil {
		t.Fatalf("after onboarding: profile=%v err=%v", p, err)
	}
	np, err := ps.Normalized(ctx, u.ID)
	if err != nil {
		t.Fatalf("Normalized: %v", err)
	}
	if np.Diet != "vegetarian" || np.CycleLength != 28 || np.LastPeriod == nil {
		t.Fatalf("normalized=%+v", np)
	}
}

func TestProfileServiceRequiresUser(t *testing.T) {
	e := newEnv(t)
	_, err := e.profileService().SaveOnboarding(context.Background(), OnboardingInput{})
	wantAPIError(t, err, 401, "unauthorized")
}

func (e *env) mealPlans(gen mealplan.Generator) MealPlanService {
	req := mealplan.NewRequesterWithTimeout(e.log, gen, time.Second)
	return NewMealPlanService(e.log, e.profileService(), nil, req, e.clock)
}

func TestMealPlanRequiresProfile(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	gen := &fakeGen{reply: generatedPlanJSON(t)}
	_, err := e.mealPlans(gen).Daily(ctx, "indian")
	wantAPIError(t, err, 400, "profile_required")
	if gen.callCount() != 0 {
		t.Fatalf("generator called without a profile")
	}
}

func TestMealPlanDaily(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	e.onboard(t, ctx)

	res, err := e.mealPlans(&fakeGen{reply: generatedPlanJSON(t)}).Daily(ctx, "Indian")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if !res.Success || res.MealPlan.Breakfast.Name != "Generated Seeded Porridge" {
		t.Fatalf("result=%+v", res)
	}
	if res.Message != "Generated indian meal plan for your health profile" {
		t.Fatalf("message=%q", res.Message)
	}
	if len(res.DetectedConditions) == 0 {
		t.Fatalf("no detected conditions")
	}
	if res.ShoppingList.Count() == 0 {
		t.Fatalf("empty shopping list")
	}
}

func TestMealPlanDailyFallsBackOnError(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	e.onboard(t, ctx)

	res, err := e.mealPlans(&fakeGen{err: errors.New("upstream 503")}).Daily(ctx, "indian")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	want := mealplan.Fallback(mealplan.FallbackKey{Kind: mealplan.KindCuisine, Cuisine: "indian"})
	if res.MealPlan.Breakfast.Name != want.Breakfast.Name {
		t.Fatalf("breakfast=%q want fallback %q", res.MealPlan.Breakfast.Name, want.Breakfast.Name)
	}
	if len(res.MealPlan.Adaptations) != 0 {
		t.Fatalf("fallback adaptations=%v", res.MealPlan.Adaptations)
	}
}

func TestMealPlanWeeklyAndMonthly(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	e.onboard(t, ctx)
	gen := &fakeGen{reply: generatedPlanJSON(t)}
	svc := e.mealPlans(gen)

	wk, err := svc.Weekly(ctx, "")
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	days := wk.MealPlan.WeeklyPlan.Days
	if len(days) != 7 {
		t.Fatalf("days=%d want 7", len(days))
	}
	if days[0].DayName != "Monday" || days[6].DayName != "Sunday" {
		t.Fatalf("day names %q..%q", days[0].DayName, days[6].DayName)
	}
	if days[0].Date != "2025-03-10" || days[6].Date != "2025-03-16" {
		t.Fatalf("dates %s..%s", days[0].Date, days[6].Date)
	}
	if wk.Message != "Generated 7-day mediterranean meal plan for your health profile" {
		t.Fatalf("message=%q", wk.Message)
	}
	if wk.ShoppingList.Count() != wk.MealPlan.WeeklyPlan.WeeklyShoppingList.Count() {
		t.Fatalf("shopping list mismatch")
	}

	mo, err := svc.Monthly(ctx, "japanese")
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	m := mo.MealPlan.MonthlyPlan
	if len(m.Weeks) != 4 || m.Month != "March" || m.Year != 2025 {
		t.Fatalf("monthly=%d weeks %s %d", len(m.Weeks), m.Month, m.Year)
	}
	for i, w := range m.Weeks {
		if w.Week != i+1 {
			t.Fatalf("week %d numbered %d", i, w.Week)
		}
	}
	if len(m.NutritionalSummary.KeyNutrients) != 5 {
		t.Fatalf("key nutrients=%v", m.NutritionalSummary.KeyNutrients)
	}
	if gen.callCount() != 2 {
		t.Fatalf("generator calls=%d want one per request", gen.callCount())
	}
}

func (e *env) daily(gen mealplan.Generator) DailyService {
	req := mealplan.NewRequesterWithTimeout(e.log, gen, time.Second)
	return NewDailyService(e.log, e.profileService(), nil, req, e.plans, e.feedback, e.clock)
}

func TestDailyFlow(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	e.onboard(t, ctx)
	svc := e.daily(&fakeGen{reply: generatedPlanJSON(t)})

	ci, err := svc.CheckIn(ctx)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if len(ci.FollowUpQuestions) != 3 || ci.AdaptiveRecommendations != nil {
		t.Fatalf("first check-in=%+v", ci)
	}

	_, err = svc.SubmitFeedback(ctx, nutrition.Feedback{Date: "2025-03-09", EnergyLevel: 1})
	wantAPIError(t, err, 404, "no_meal_plan")

	// Day one.
	e.now = time.Date(2025, time.March, 9, 8, 0, 0, 0, time.UTC)
	first, err := svc.GenerateToday(ctx, DailyPlanInput{})
	if err != nil {
		t.Fatalf("GenerateToday: %v", err)
	}
	if first.Date != "2025-03-09" || len(first.Adaptations) != 0 {
		t.Fatalf("day one plan date=%s adaptations=%v", first.Date, first.Adaptations)
	}

	// Day two, before feedback.
	e.now = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	ci, err = svc.CheckIn(ctx)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if len(ci.FollowUpQuestions) != 4 {
		t.Fatalf("plan-exists check-in=%+v", ci)
	}

	fb := nutrition.Feedback{Date: "2025-03-09", FollowedPlan: true, EnergyLevel: 1, DigestiveHealth: 5, MoodRating: 2, DislikedMeals: []string{"dinner"}}
	if _, err := svc.SubmitFeedback(ctx, fb); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	_, err = svc.SubmitFeedback(ctx, fb)
	wantAPIError(t, err, 409, "feedback_exists")

	ci, err = svc.CheckIn(ctx)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if len(ci.FollowUpQuestions) != 2 || len(ci.AdaptiveRecommendations) != 3 {
		t.Fatalf("feedback check-in=%+v", ci)
	}

	today, err := svc.GenerateToday(ctx, DailyPlanInput{})
	if err != nil {
		t.Fatalf("GenerateToday: %v", err)
	}
	if len(today.Adaptations) != 3 {
		t.Fatalf("adaptations from stored feedback=%v", today.Adaptations)
	}
	if today.Breakfast.Data().Name != "Generated Seeded Porridge" || !today.Generated {
		t.Fatalf("today breakfast=%q generated=%v", today.Breakfast.Data().Name, today.Generated)
	}

	got, err := svc.Today(ctx)
	if err != nil || got == nil || got.ID != today.ID {
		t.Fatalf("Today=%v err=%v", got, err)
	}
}

func TestDailyPreviousFeedbackOverridesStored(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	svc := e.daily(&fakeGen{reply: generatedPlanJSON(t)})

	plan, err := svc.GenerateToday(ctx, DailyPlanInput{PreviousFeedback: &nutrition.Feedback{DigestiveHealth: 2}})
	if err != nil {
		t.Fatalf("GenerateToday: %v", err)
	}
	if len(plan.Adaptations) != 1 {
		t.Fatalf("adaptations=%v want the digestion rule only", plan.Adaptations)
	}

	_, err = svc.GenerateToday(ctx, DailyPlanInput{PreviousFeedback: &nutrition.Feedback{MoodRating: 9}})
	wantAPIError(t, err, 400, "invalid_request")
}

func TestDailyFallbackMessage(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	svc := e.daily(&fakeGen{err: context.DeadlineExceeded})

	plan, err := svc.GenerateToday(ctx, DailyPlanInput{PreviousFeedback: &nutrition.Feedback{EnergyLevel: 1}})
	if err != nil {
		t.Fatalf("GenerateToday: %v", err)
	}
	if plan.Generated {
		t.Fatalf("fallback plan marked generated")
	}
	if len(plan.Adaptations) != 0 {
		t.Fatalf("fallback adaptations=%v want none", plan.Adaptations)
	}
	want := "Here's your personalized meal plan for your " + plan.MenstrualPhase + " phase, designed to support your body's natural rhythms."
	if plan.PersonalizedMessage != want {
		t.Fatalf("message=%q", plan.PersonalizedMessage)
	}
}

func TestTodayWithoutPlan(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	got, err := e.daily(nil).Today(ctx)
	if err != nil || got != nil {
		t.Fatalf("Today=%v err=%v", got, err)
	}
}
