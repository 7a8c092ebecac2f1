// Package coach holds the chat side of the nutrition coach: question
// classification, the LLM prompt for free-form answers and the canned replies
// used for cycle-phase questions and when the model is unavailable.
package coach

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/guidance"
	"github.com/yungbote/winnie-backend/internal/nutrition/mealplan"
)

//go:embed replies.yaml
var repliesData []byte

const (
	SchemaName     = "coach_reply"
	MaxIngredients = 3
	DefaultDiet    = "balanced"
	defaultMessage = "Here are some personalized recommendations for you."
)

// Source records which path produced a reply.
type Source string

const (
	SourcePhase    Source = "phase"
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

type Reply struct {
	Message     string                     `json:"message"`
	Ingredients []nutrition.IngredientCard `json:"ingredients"`
}

type cannedReply struct {
	Keywords    []string                   `yaml:"keywords"`
	Message     string                     `yaml:"message"`
	Ingredients []nutrition.IngredientCard `yaml:"ingredients"`
}

type replyTable struct {
	MealPlan cannedReply   `yaml:"meal_plan"`
	Topics   []cannedReply `yaml:"topics"`
	General  cannedReply   `yaml:"general"`
	Diet     cannedReply   `yaml:"diet"`
}

var (
	tableOnce sync.Once
	table     replyTable
)

func replies() replyTable {
	tableOnce.Do(func() {
		if err := yaml.Unmarshal(repliesData, &table); err != nil {
			panic(fmt.Sprintf("coach: decode replies.yaml: %v", err))
		}
	})
	return table
}

var dietQuestionRe = regexp.MustCompile(`(?i)\b(eat|food|diet|nutrition|meal|recipe|cook|supplement|ingredient|consume|drink|take|add|help with|bloating|digestion)\b`)

// IsDietQuestion reports whether msg asks for food advice rather than general
// health information.
func IsDietQuestion(msg string) bool { return dietQuestionRe.MatchString(msg) }

var mealPlanPhrases = []string{"meal plan", "what to eat", "food plan", "diet plan", "recipes for", "meals for"}

func IsMealPlanRequest(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range mealPlanPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// DetectPhase finds the first cycle phase msg names. Luteal wins over the
// others when several appear.
func DetectPhase(msg string) (nutrition.Phase, bool) {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "luteal"):
		return nutrition.PhaseLuteal, true
	case strings.Contains(lower, "follicular"):
		return nutrition.PhaseFollicular, true
	case strings.Contains(lower, "menstrual"):
		return nutrition.PhaseMenstrual, true
	case strings.Contains(lower, "ovulat"):
		return nutrition.PhaseOvulatory, true
	}
	return "", false
}

// PhaseReply answers a cycle-phase question with that phase's food cards.
func PhaseReply(p nutrition.Phase) Reply {
	g := guidance.Phase(p)
	cards := append([]nutrition.IngredientCard(nil), g.ChatFoods...)
	return Reply{
		Message:     fmt.Sprintf("Here are the top %d research-backed foods for your %s:", len(cards), strings.ToLower(g.Name)),
		Ingredients: cards,
	}
}

// Fallback is the canned answer served when the model cannot answer.
func Fallback(msg, diet string) Reply {
	t := replies()
	if IsMealPlanRequest(msg) {
		return fromCanned(t.MealPlan, "")
	}
	if !IsDietQuestion(msg) {
		lower := strings.ToLower(msg)
		for _, topic := range t.Topics {
			for _, kw := range topic.Keywords {
				if strings.Contains(lower, kw) {
					return fromCanned(topic, "")
				}
			}
		}
		return fromCanned(t.General, "")
	}
	if strings.TrimSpace(diet) == "" {
		diet = DefaultDiet
	}
	return fromCanned(t.Diet, diet)
}

func fromCanned(c cannedReply, diet string) Reply {
	msg := c.Message
	if diet != "" {
		msg = fmt.Sprintf(msg, diet)
	}
	cards := append([]nutrition.IngredientCard{}, c.Ingredients...)
	return Reply{Message: msg, Ingredients: cards}
}

// SystemPrompt frames the model as a women's health expert and pins the reply
// shape. Diet questions may carry ingredient cards; everything else may not.
func SystemPrompt(p nutrition.Profile, diet bool) string {
	var b strings.Builder
	b.WriteString("You are a women's health expert providing evidence-based information.\n\n")
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(p.Age))
	fmt.Fprintf(&b, "- Diet: %s\n", orNotSpecified(p.Diet))
	symptoms := "None specified"
	if len(p.Symptoms) > 0 {
		symptoms = strings.Join(p.Symptoms, ", ")
	}
	fmt.Fprintf(&b, "- Symptoms: %s\n\n", symptoms)
	b.WriteString("CRITICAL: Your response must be valid JSON with a \"message\" string and an \"ingredients\" array.\n")
	if diet {
		b.WriteString("Each ingredient has name, description, emoji, lazy (easiest way to consume it), ")
		b.WriteString("tasty (most delicious preparation) and healthy (optimal daily amount and timing).\n\n")
		fmt.Fprintf(&b, "Focus on evidence-based nutrition for women's hormonal health. Include 1-%d relevant ingredients with specific implementation methods.", MaxIngredients)
	} else {
		b.WriteString("The ingredients array must be empty.\n\n")
		b.WriteString("Provide general health information without food recommendations. For nutrition advice, suggest the user ask specifically about foods or diet.")
	}
	return b.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

// ReplySchema is the strict structured-output schema for model replies.
func ReplySchema() map[string]any {
	str := map[string]any{"type": "string"}
	card := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": str, "description": str, "emoji": str,
			"lazy": str, "tasty": str, "healthy": str,
		},
		"required":             []string{"description", "emoji", "healthy", "lazy", "name", "tasty"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message":     str,
			"ingredients": map[string]any{"type": "array", "items": card},
		},
		"required":             []string{"ingredients", "message"},
		"additionalProperties": false,
	}
}

// ParseReply decodes a model reply and fills blank fields. Non-diet replies
// drop any ingredients; diet replies keep at most MaxIngredients.
func ParseReply(raw string, diet bool) (Reply, error) {
	var r Reply
	if err := json.Unmarshal([]byte(mealplan.Normalize(raw)), &r); err != nil {
		return Reply{}, fmt.Errorf("decode coach reply: %w", err)
	}
	if strings.TrimSpace(r.Message) == "" {
		r.Message = defaultMessage
	}
	if !diet {
		r.Ingredients = []nutrition.IngredientCard{}
		return r, nil
	}
	if len(r.Ingredients) > MaxIngredients {
		r.Ingredients = r.Ingredients[:MaxIngredients]
	}
	cards := make([]nutrition.IngredientCard, 0, len(r.Ingredients))
	for _, c := range r.Ingredients {
		cards = append(cards, withCardDefaults(c))
	}
	r.Ingredients = cards
	return r, nil
}

func withCardDefaults(c nutrition.IngredientCard) nutrition.IngredientCard {
	set := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	set(&c.Name, "Unknown")
	set(&c.Description, "Natural ingredient")
	set(&c.Emoji, "🌿")
	set(&c.Lazy, "Take as supplement with breakfast daily")
	set(&c.Tasty, "Mix into smoothies with fruit and honey")
	set(&c.Healthy, "Follow evidence-based dosage guidelines")
	return c
}
