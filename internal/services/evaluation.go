package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/adaptive"
	"github.com/yungbote/winnie-backend/internal/nutrition/coach"
	"github.com/yungbote/winnie-backend/internal/nutrition/mealplan"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

const (
	defaultScore        = 5.0
	evaluationFanout    = 4
	evaluationSchema    = "evaluation_scores"
	evaluationTimeout   = 30 * time.Second
	faithfulnessSchema  = "answer_faithfulness"
	heuristicDisclaimer = "Scores are model self-assessments on a 1-10 scale. They are a heuristic signal, not a correctness measure."
	researchDisclaimer  = "Statistics over sample retrievals. The quality score is a heuristic blend, not a correctness measure."
	evaluatorSystem     = "You are a strict evaluator of nutrition guidance. Answer only with the requested JSON scores."
	ragAnswerSystem     = "You answer questions about women's health nutrition using only the research context provided. If the context is insufficient, say so."

	researchQualityTopK = 10
	ragTopK             = 5
	coverageTopK        = 3
	recentYears         = 3
)

var (
	mealPlanCriteria   = []string{"nutritionalCompleteness", "varietyScore", "culturalAuthenticity", "healthConditionAlignment", "cyclePhasePrecision"}
	adaptationCriteria = []string{"accuracy", "personalization", "integration", "relevance", "satisfaction"}
	chatbotCriteria    = []string{"relevance", "accuracy", "empathy", "actionability", "flow"}
	retrievalCriteria  = []string{"accuracy", "precision", "recall", "contextRelevance"}
	evaluationConds    = []nutrition.ConditionTag{nutrition.PCOS, nutrition.Endometriosis}

	researchQualityQueries = []string{"PCOS nutrition", "endometriosis diet", "menstrual cycle phases", "seed cycling benefits", "thyroid nutrition"}
	chatbotQueries         = []string{
		"What foods help with PCOS?",
		"How can I reduce period pain naturally?",
		"What should I eat during my luteal phase?",
		"How does seed cycling work?",
		"Best foods for thyroid health",
	}
	ragQueries = []string{
		"What foods help with PCOS symptoms?",
		"How does seed cycling support hormonal balance?",
		"Best nutrition for endometriosis management?",
		"What to eat during luteal phase?",
		"Anti-inflammatory foods for thyroid health?",
	}
	coverageTopics = []string{
		"PCOS nutrition", "endometriosis diet", "menstrual cycle phases", "seed cycling", "thyroid health",
		"hormonal balance", "anti-inflammatory foods", "Mediterranean diet", "reproductive health", "insulin resistance",
	}

	yearPattern = regexp.MustCompile(`\d{4}`)
)

// evaluationFeedbacks are fixed feedback scenarios the adaptation rules are
// scored against.
var evaluationFeedbacks = []nutrition.Feedback{
	{EnergyLevel: 1, DigestiveHealth: 5, MoodRating: 2, DislikedMeals: []string{"dinner"}, Comment: "Too spicy, felt exhausted"},
	{EnergyLevel: 4, DigestiveHealth: 2, MoodRating: 4, DislikedMeals: []string{"breakfast"}, Comment: "Stomach issues with dairy"},
	{EnergyLevel: 5, DigestiveHealth: 5, MoodRating: 5, DislikedMeals: []string{}, Comment: "Loved everything, felt amazing"},
}

type MealPlanQuality struct {
	NutritionalCompleteness  float64 `json:"nutritionalCompleteness"`
	VarietyScore             float64 `json:"varietyScore"`
	CulturalAuthenticity     float64 `json:"culturalAuthenticity"`
	HealthConditionAlignment float64 `json:"healthConditionAlignment"`
	CyclePhasePrecision      float64 `json:"cyclePhasePrecision"`
	OverallQuality           float64 `json:"overallQuality"`
	Samples                  int     `json:"samples"`
	FallbackSamples          int     `json:"fallbackSamples"`
	Heuristic                bool    `json:"heuristic"`
	Note                     string  `json:"note"`
}

type AdaptiveQuality struct {
	ResponseAccuracy        float64 `json:"responseAccuracy"`
	PersonalizationDepth    float64 `json:"personalizationDepth"`
	FeedbackIntegration     float64 `json:"feedbackIntegration"`
	AdaptationRelevance     float64 `json:"adaptationRelevance"`
	UserSatisfactionPredict float64 `json:"userSatisfactionPredict"`
	Samples                 int     `json:"samples"`
	Heuristic               bool    `json:"heuristic"`
	Note                    string  `json:"note"`
}

type ResearchQuality struct {
	TotalArticles            int            `json:"totalArticles"`
	AverageContentLength     float64        `json:"averageContentLength"`
	TopicCoverage            map[string]int `json:"topicCoverage"`
	SourceDistribution       map[string]int `json:"sourceDistribution"`
	RecentArticlesPercentage float64        `json:"recentArticlesPercentage"`
	QualityScore             float64        `json:"qualityScore"`
	ResearchEnabled          bool           `json:"researchEnabled"`
	Heuristic                bool           `json:"heuristic"`
	Note                     string         `json:"note"`
}

type ChatbotPerformance struct {
	ResponseRelevance  float64 `json:"responseRelevance"`
	ScientificAccuracy float64 `json:"scientificAccuracy"`
	EmpathyScore       float64 `json:"empathyScore"`
	ActionabilityScore float64 `json:"actionabilityScore"`
	ConversationalFlow float64 `json:"conversationalFlow"`
	Samples            int     `json:"samples"`
	FallbackSamples    int     `json:"fallbackSamples"`
	Heuristic          bool    `json:"heuristic"`
	Note               string  `json:"note"`
}

// RAGMetrics rates retrieval and the answers grounded on it. Hallucination
// is the percentage of answers judged to contain unsupported claims.
type RAGMetrics struct {
	Accuracy           float64 `json:"accuracy"`
	Precision          float64 `json:"precision"`
	Recall             float64 `json:"recall"`
	Coverage           float64 `json:"coverage"`
	Hallucination      float64 `json:"hallucination"`
	ContextRelevance   float64 `json:"contextRelevance"`
	AnswerFaithfulness float64 `json:"answerFaithfulness"`
	OverallRAGScore    float64 `json:"overallRAGScore"`
	Samples            int     `json:"samples"`
	RetrievalEnabled   bool    `json:"retrievalEnabled"`
	Heuristic          bool    `json:"heuristic"`
	Note               string  `json:"note"`
}

type EvaluationReport struct {
	ResearchQuality    *ResearchQuality    `json:"researchQuality"`
	MealPlanQuality    *MealPlanQuality    `json:"mealPlanQuality"`
	AdaptiveResponses  *AdaptiveQuality    `json:"adaptiveResponses"`
	ChatbotPerformance *ChatbotPerformance `json:"chatbotPerformance"`
	RAGMetrics         *RAGMetrics         `json:"ragMetrics"`
	OverallScore       float64             `json:"overallScore"`
	Recommendations    []string            `json:"recommendations"`
	Heuristic          bool                `json:"heuristic"`
	Note               string              `json:"note"`
}

type EvaluationService interface {
	MealPlanQuality(ctx context.Context) (*MealPlanQuality, error)
	AdaptiveResponses(ctx context.Context) (*AdaptiveQuality, error)
	ResearchQuality(ctx context.Context) (*ResearchQuality, error)
	ChatbotPerformance(ctx context.Context) (*ChatbotPerformance, error)
	RAGMetrics(ctx context.Context) (*RAGMetrics, error)
	// ComprehensiveReport runs every evaluation concurrently and combines them.
	ComprehensiveReport(ctx context.Context) (*EvaluationReport, error)
}

// EvaluationGenerator is the slice of the LLM client the diagnostics need.
type EvaluationGenerator interface {
	ChatGenerator
	GenerateText(ctx context.Context, system, user string) (string, error)
}

type evaluationService struct {
	log      *logger.Logger
	gen      EvaluationGenerator
	profiles ProfileService
	plans    MealPlanService
	research ResearchService
	chat     ChatService
	now      Clock
}

// NewEvaluationService wires the diagnostics. A nil generator scores every
// sample with the default score.
func NewEvaluationService(
	log *logger.Logger,
	gen EvaluationGenerator,
	profiles ProfileService,
	plans MealPlanService,
	research ResearchService,
	chat ChatService,
) EvaluationService {
	return &evaluationService{
		log:      log.With("service", "EvaluationService"),
		gen:      gen,
		profiles: profiles,
		plans:    plans,
		research: research,
		chat:     chat,
		now:      systemClock,
	}
}

type planSample struct {
	cond    nutrition.ConditionTag
	phase   nutrition.Phase
	outcome mealplan.Outcome
	scores  map[string]float64
}

func (es *evaluationService) MealPlanQuality(ctx context.Context) (*MealPlanQuality, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := es.profiles.Normalized(ctx, userID)
	if err != nil {
		return nil, err
	}

	samples := make([]planSample, 0, len(evaluationConds)*len(nutrition.Phases()))
	for _, c := range evaluationConds {
		for _, p := range nutrition.Phases() {
			samples = append(samples, planSample{cond: c, phase: p})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluationFanout)
	for i := range samples {
		s := &samples[i]
		g.Go(func() error {
			plan, outcome := es.plans.ForProfile(gctx, profile, []nutrition.ConditionTag{s.cond}, "mediterranean", s.phase)
			s.outcome = outcome
			s.scores = es.score(gctx, mealPlanPrompt(plan, s.cond, s.phase), mealPlanCriteria)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg := averageScores(mealPlanCriteria, len(samples), func(i int) map[string]float64 { return samples[i].scores })
	out := &MealPlanQuality{
		NutritionalCompleteness:  avg["nutritionalCompleteness"],
		VarietyScore:             avg["varietyScore"],
		CulturalAuthenticity:     avg["culturalAuthenticity"],
		HealthConditionAlignment: avg["healthConditionAlignment"],
		CyclePhasePrecision:      avg["cyclePhasePrecision"],
		Samples:                  len(samples),
		Heuristic:                true,
		Note:                     heuristicDisclaimer,
	}
	out.OverallQuality = round1((out.NutritionalCompleteness + out.VarietyScore + out.CulturalAuthenticity +
		out.HealthConditionAlignment + out.CyclePhasePrecision) / float64(len(mealPlanCriteria)))
	for _, s := range samples {
		if !s.outcome.Generated() {
			out.FallbackSamples++
		}
	}
	es.log.Info("Meal plan evaluation finished", "samples", out.Samples, "fallbacks", out.FallbackSamples, "overall", out.OverallQuality)
	return out, nil
}

func (es *evaluationService) AdaptiveResponses(ctx context.Context) (*AdaptiveQuality, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	scores := make([]map[string]float64, len(evaluationFeedbacks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluationFanout)
	for i, fb := range evaluationFeedbacks {
		g.Go(func() error {
			scores[i] = es.score(gctx, adaptationPrompt(fb, adaptive.Adaptations(fb)), adaptationCriteria)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	avg := averageScores(adaptationCriteria, len(scores), func(i int) map[string]float64 { return scores[i] })
	return &AdaptiveQuality{
		ResponseAccuracy:        avg["accuracy"],
		PersonalizationDepth:    avg["personalization"],
		FeedbackIntegration:     avg["integration"],
		AdaptationRelevance:     avg["relevance"],
		UserSatisfactionPredict: avg["satisfaction"],
		Samples:                 len(scores),
		Heuristic:               true,
		Note:                    heuristicDisclaimer,
	}, nil
}

func (es *evaluationService) ResearchQuality(ctx context.Context) (*ResearchQuality, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	results := make([][]ResearchDocument, len(researchQualityQueries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluationFanout)
	for i, q := range researchQualityQueries {
		g.Go(func() error {
			results[i] = es.search(gctx, q, researchQualityTopK)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ResearchQuality{
		TopicCoverage:      make(map[string]int, len(researchQualityQueries)),
		SourceDistribution: map[string]int{},
		ResearchEnabled:    es.research != nil && es.research.Enabled(),
		Heuristic:          true,
		Note:               researchDisclaimer,
	}
	cutoff := es.now().Year() - recentYears
	var contentLen, recent, covered int
	for i, q := range researchQualityQueries {
		docs := results[i]
		out.TopicCoverage[q] = len(docs)
		out.TotalArticles += len(docs)
		if len(docs) > 0 {
			covered++
		}
		for _, d := range docs {
			src := d.Source
			if src == "" {
				src = "unknown"
			}
			out.SourceDistribution[src]++
			contentLen += utf8.RuneCountInString(d.Content)
			if publishedYear(d.PublishedDate) >= cutoff {
				recent++
			}
		}
	}
	if out.TotalArticles > 0 {
		total := float64(out.TotalArticles)
		out.AverageContentLength = round1(float64(contentLen) / total)
		out.RecentArticlesPercentage = round1(float64(recent) / total * 100)
	}
	out.QualityScore = round1((math.Min(float64(out.TotalArticles)/50*10, 10) +
		math.Min(out.AverageContentLength/500*10, 10) +
		out.RecentArticlesPercentage/10 +
		math.Min(float64(covered*2), 10)) / 4)
	es.log.Info("Research quality evaluation finished", "articles", out.TotalArticles, "score", out.QualityScore)
	return out, nil
}

func (es *evaluationService) ChatbotPerformance(ctx context.Context) (*ChatbotPerformance, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	sources := make([]coach.Source, len(chatbotQueries))
	scores := make([]map[string]float64, len(chatbotQueries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluationFanout)
	for i, q := range chatbotQueries {
		g.Go(func() error {
			reply, source := es.chat.Answer(gctx, q)
			sources[i] = source
			scores[i] = es.score(gctx, chatbotPrompt(q, reply), chatbotCriteria)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	avg := averageScores(chatbotCriteria, len(scores), func(i int) map[string]float64 { return scores[i] })
	out := &ChatbotPerformance{
		ResponseRelevance:  avg["relevance"],
		ScientificAccuracy: avg["accuracy"],
		EmpathyScore:       avg["empathy"],
		ActionabilityScore: avg["actionability"],
		ConversationalFlow: avg["flow"],
		Samples:            len(scores),
		Heuristic:          true,
		Note:               heuristicDisclaimer,
	}
	for _, s := range sources {
		if s == coach.SourceFallback {
			out.FallbackSamples++
		}
	}
	return out, nil
}

type ragSample struct {
	retrieval    map[string]float64
	faithfulness float64
	hallucinated bool
}

func (es *evaluationService) RAGMetrics(ctx context.Context) (*RAGMetrics, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	samples := make([]ragSample, len(ragQueries))
	var coverage float64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluationFanout)
	for i, q := range ragQueries {
		g.Go(func() error {
			docs := es.search(gctx, q, ragTopK)
			answer := es.ragAnswer(gctx, q, docs)
			s := ragSample{retrieval: es.score(gctx, retrievalPrompt(q, docs), retrievalCriteria)}
			s.faithfulness, s.hallucinated = es.judgeAnswer(gctx, q, docs, answer)
			samples[i] = s
			return nil
		})
	}
	g.Go(func() error {
		coverage = es.knowledgeCoverage(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := float64(len(samples))
	avg := averageScores(retrievalCriteria, len(samples), func(i int) map[string]float64 { return samples[i].retrieval })
	var faith float64
	var hallucinated int
	for _, s := range samples {
		faith += s.faithfulness
		if s.hallucinated {
			hallucinated++
		}
	}
	out := &RAGMetrics{
		Accuracy:           avg["accuracy"],
		Precision:          avg["precision"],
		Recall:             avg["recall"],
		ContextRelevance:   avg["contextRelevance"],
		AnswerFaithfulness: round1(faith / n),
		Hallucination:      round1(float64(hallucinated) / n * 100),
		Coverage:           coverage,
		Samples:            len(samples),
		RetrievalEnabled:   es.research != nil && es.research.Enabled(),
		Heuristic:          true,
		Note:               heuristicDisclaimer,
	}
	out.OverallRAGScore = round1((out.Accuracy+out.Precision+out.Recall+out.Coverage+out.ContextRelevance+out.AnswerFaithfulness)/6 -
		out.Hallucination/100)
	return out, nil
}

// knowledgeCoverage is the share of core topics with at least one document,
// scaled to 0-10.
func (es *evaluationService) knowledgeCoverage(ctx context.Context) float64 {
	found := make([]bool, len(coverageTopics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluationFanout)
	for i, topic := range coverageTopics {
		g.Go(func() error {
			found[i] = len(es.search(gctx, topic, coverageTopK)) > 0
			return nil
		})
	}
	_ = g.Wait()
	covered := 0
	for _, ok := range found {
		if ok {
			covered++
		}
	}
	return round1(float64(covered) / float64(len(coverageTopics)) * 10)
}

func (es *evaluationService) ComprehensiveReport(ctx context.Context) (*EvaluationReport, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	rep := &EvaluationReport{Heuristic: true, Note: heuristicDisclaimer}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rep.ResearchQuality, err = es.ResearchQuality(gctx)
		return err
	})
	g.Go(func() (err error) {
		rep.MealPlanQuality, err = es.MealPlanQuality(gctx)
		return err
	})
	g.Go(func() (err error) {
		rep.AdaptiveResponses, err = es.AdaptiveResponses(gctx)
		return err
	})
	g.Go(func() (err error) {
		rep.ChatbotPerformance, err = es.ChatbotPerformance(gctx)
		return err
	})
	g.Go(func() (err error) {
		rep.RAGMetrics, err = es.RAGMetrics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.OverallScore = round1((rep.ResearchQuality.QualityScore +
		rep.MealPlanQuality.OverallQuality +
		rep.AdaptiveResponses.UserSatisfactionPredict +
		(rep.ChatbotPerformance.ResponseRelevance+rep.ChatbotPerformance.ScientificAccuracy)/2 +
		rep.RAGMetrics.OverallRAGScore) / 5)
	rep.Recommendations = reportRecommendations(rep)
	es.log.Info("Comprehensive evaluation finished", "overall", rep.OverallScore, "recommendations", len(rep.Recommendations))
	return rep, nil
}

func reportRecommendations(rep *EvaluationReport) []string {
	out := []string{}
	if rep.ResearchQuality.QualityScore < 7 {
		out = append(out, "Improve research coverage with more recent articles")
	}
	if rep.MealPlanQuality.OverallQuality < 8 {
		out = append(out, "Enhance meal plan nutritional completeness and variety")
	}
	if rep.AdaptiveResponses.FeedbackIntegration < 7 {
		out = append(out, "Strengthen feedback processing and adaptation rules")
	}
	if rep.ChatbotPerformance.ScientificAccuracy < 8 {
		out = append(out, "Improve chatbot scientific accuracy with better research integration")
	}
	return out
}

// search never fails: lookup errors count as no documents.
func (es *evaluationService) search(ctx context.Context, query string, topK int) []ResearchDocument {
	if es.research == nil {
		return nil
	}
	docs, err := es.research.Search(ctx, query, topK)
	if err != nil {
		es.log.Warn("Evaluation research lookup failed", "query", query, "error", err)
		return nil
	}
	return docs
}

func (es *evaluationService) ragAnswer(ctx context.Context, query string, docs []ResearchDocument) string {
	if es.gen == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	defer cancel()
	answer, err := es.gen.GenerateText(ctx, ragAnswerSystem, ragAnswerPrompt(query, docs))
	if err != nil {
		es.log.Warn("RAG answer generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(answer)
}

// judgeAnswer rates how faithful answer is to docs. Without an answer or a
// usable verdict it reports defaultScore and no hallucination.
func (es *evaluationService) judgeAnswer(ctx context.Context, query string, docs []ResearchDocument, answer string) (float64, bool) {
	if es.gen == nil || answer == "" {
		return defaultScore, false
	}
	ctx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	defer cancel()
	props := map[string]any{
		"faithfulness":     map[string]any{"type": "number"},
		"hasHallucination": map[string]any{"type": "boolean"},
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             []string{"faithfulness", "hasHallucination"},
		"additionalProperties": false,
	}
	raw, err := es.gen.GenerateJSONText(ctx, evaluatorSystem, faithfulnessPrompt(query, docs, answer), faithfulnessSchema, schema)
	if err != nil {
		es.log.Warn("Faithfulness scoring failed, using default", "error", err)
		return defaultScore, false
	}
	var verdict struct {
		Faithfulness     *float64 `json:"faithfulness"`
		HasHallucination bool     `json:"hasHallucination"`
	}
	if err := json.Unmarshal([]byte(mealplan.Normalize(raw)), &verdict); err != nil {
		es.log.Warn("Faithfulness verdict unparseable, using default", "error", err)
		return defaultScore, false
	}
	score := defaultScore
	if f := verdict.Faithfulness; f != nil && *f >= 1 && *f <= 10 {
		score = *f
	}
	return score, verdict.HasHallucination
}

// publishedYear returns the first four-digit run in date, or 0.
func publishedYear(date string) int {
	y, err := strconv.Atoi(yearPattern.FindString(date))
	if err != nil {
		return 0
	}
	return y
}

// score asks the model to rate prompt on each criterion. Any failure, and any
// missing or out-of-range value, yields defaultScore for that criterion.
func (es *evaluationService) score(ctx context.Context, prompt string, criteria []string) map[string]float64 {
	out := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		out[c] = defaultScore
	}
	if es.gen == nil {
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	defer cancel()
	raw, err := es.gen.GenerateJSONText(ctx, evaluatorSystem, prompt, evaluationSchema, scoreSchema(criteria))
	if err != nil {
		es.log.Warn("Evaluation scoring failed, using default scores", "error", err)
		return out
	}
	var parsed map[string]float64
	if err := json.Unmarshal([]byte(mealplan.Normalize(raw)), &parsed); err != nil {
		es.log.Warn("Evaluation scores unparseable, using default scores", "error", err)
		return out
	}
	for _, c := range criteria {
		if v, ok := parsed[c]; ok && v >= 1 && v <= 10 {
			out[c] = v
		}
	}
	return out
}

func scoreSchema(criteria []string) map[string]any {
	props := make(map[string]any, len(criteria))
	for _, c := range criteria {
		props[c] = map[string]any{"type": "number"}
	}
	required := append([]string(nil), criteria...)
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func mealPlanPrompt(plan nutrition.MealPlan, cond nutrition.ConditionTag, phase nutrition.Phase) string {
	body, _ := json.MarshalIndent(plan, "", "  ")
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this meal plan for a woman with %s in her %s phase:\n%s\n\n", cond, phase, body)
	b.WriteString("Rate on a scale of 1-10:\n")
	b.WriteString("- nutritionalCompleteness: macros, micros, fiber\n")
	b.WriteString("- varietyScore: different foods, cooking methods\n")
	b.WriteString("- culturalAuthenticity: faithfulness to the cuisine\n")
	fmt.Fprintf(&b, "- healthConditionAlignment: specific to %s\n", cond)
	fmt.Fprintf(&b, "- cyclePhasePrecision: appropriate for the %s phase\n", phase)
	return b.String()
}

func adaptationPrompt(fb nutrition.Feedback, adaptations []string) string {
	body, _ := json.Marshal(fb)
	var b strings.Builder
	b.WriteString("Evaluate how well these adaptations respond to user feedback:\n")
	fmt.Fprintf(&b, "Feedback: %s\n", body)
	fmt.Fprintf(&b, "Adaptations: %s\n\n", joinOr(adaptations, "none"))
	b.WriteString("Rate on a scale of 1-10:\n")
	b.WriteString("- accuracy: do adaptations address the issues?\n")
	b.WriteString("- personalization: how specific to this user?\n")
	b.WriteString("- integration: how well was the feedback understood?\n")
	b.WriteString("- relevance: are suggestions practical?\n")
	b.WriteString("- satisfaction: likely user satisfaction?\n")
	return b.String()
}

func chatbotPrompt(query string, reply coach.Reply) string {
	names := make([]string, 0, len(reply.Ingredients))
	for _, c := range reply.Ingredients {
		names = append(names, c.Name)
	}
	var b strings.Builder
	b.WriteString("Evaluate this nutrition coach reply:\n")
	fmt.Fprintf(&b, "Question: %s\n", query)
	fmt.Fprintf(&b, "Reply: %s\n", reply.Message)
	fmt.Fprintf(&b, "Suggested ingredients: %s\n\n", joinOr(names, "none"))
	b.WriteString("Rate on a scale of 1-10:\n")
	b.WriteString("- relevance: does the reply answer the question?\n")
	b.WriteString("- accuracy: is it scientifically sound?\n")
	b.WriteString("- empathy: is the tone supportive?\n")
	b.WriteString("- actionability: can the user act on it today?\n")
	b.WriteString("- flow: does it read like a natural conversation?\n")
	return b.String()
}

func researchBlock(docs []ResearchDocument) string {
	if len(docs) == 0 {
		return "(no documents retrieved)"
	}
	lines := make([]string, 0, len(docs))
	for i, d := range docs {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, d.Title, d.Content))
	}
	return strings.Join(lines, "\n\n")
}

func retrievalPrompt(query string, docs []ResearchDocument) string {
	var b strings.Builder
	b.WriteString("Evaluate the documents retrieved for this health nutrition query:\n")
	fmt.Fprintf(&b, "Query: %q\n\nRetrieved documents:\n%s\n\n", query, researchBlock(docs))
	b.WriteString("Rate on a scale of 1-10:\n")
	b.WriteString("- accuracy: how factually correct are the documents?\n")
	b.WriteString("- precision: what share of the documents is relevant?\n")
	b.WriteString("- recall: how completely do they cover the topic?\n")
	b.WriteString("- contextRelevance: how relevant is the content to this query?\n")
	return b.String()
}

func ragAnswerPrompt(query string, docs []ResearchDocument) string {
	return fmt.Sprintf("Research context:\n%s\n\nQuestion: %s", researchBlock(docs), query)
}

func faithfulnessPrompt(query string, docs []ResearchDocument, answer string) string {
	var b strings.Builder
	b.WriteString("Evaluate this answer for faithfulness to the source material:\n")
	fmt.Fprintf(&b, "Query: %q\n\nSource context:\n%s\n\nAnswer: %s\n\n", query, researchBlock(docs), answer)
	b.WriteString("- faithfulness (1-10): how closely does the answer stick to the source context?\n")
	b.WriteString("- hasHallucination: does the answer state anything not found in the context?\n")
	return b.String()
}

func joinOr(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

func averageScores(criteria []string, n int, at func(i int) map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(criteria))
	if n == 0 {
		return out
	}
	for i := 0; i < n; i++ {
		for _, c := range criteria {
			out[c] += at(i)[c]
		}
	}
	for _, c := range criteria {
		out[c] = round1(out[c] / float64(n))
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
