// Package adaptive turns yesterday's feedback into adjustments for today's
// plan and drives the morning check-in conversation.
package adaptive

import (
	"fmt"
	"strings"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/guidance"
)

// LowRating is the first rating that no longer triggers an adjustment.
const LowRating = 3

const (
	EnergySupport    = "Adding more iron-rich foods and B-vitamins for energy support"
	DigestiveSupport = "Including more fiber and gut-friendly foods for digestive comfort"
	MoodSupport      = "Incorporating mood-supporting omega-3s and magnesium-rich foods"
)

func low(rating int) bool { return rating >= 1 && rating < LowRating }

// Adaptations derives today's adjustments from feedback. Unrated scores
// trigger nothing.
func Adaptations(f nutrition.Feedback) []string {
	out := []string{}
	if low(f.EnergyLevel) {
		out = append(out, EnergySupport)
	}
	if low(f.DigestiveHealth) {
		out = append(out, DigestiveSupport)
	}
	if low(f.MoodRating) {
		out = append(out, MoodSupport)
	}
	if disliked := nonBlank(f.DislikedMeals); len(disliked) > 0 {
		out = append(out, fmt.Sprintf("Replacing %s with alternatives you'll enjoy more", strings.Join(disliked, " and ")))
	}
	return out
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type State string

const (
	StateNoPlanYet            State = "no_plan_yet"
	StatePlanExistsNoFeedback State = "plan_exists_no_feedback"
	StateFeedbackGiven        State = "feedback_given"
)

// StateFor derives the check-in state from yesterday's rows.
func StateFor(hasPlan, hasFeedback bool) State {
	switch {
	case !hasPlan:
		return StateNoPlanYet
	case !hasFeedback:
		return StatePlanExistsNoFeedback
	default:
		return StateFeedbackGiven
	}
}

// CheckInResponse omits adaptiveRecommendations unless feedback was given,
// in which case it is always present, possibly empty.
type CheckInResponse struct {
	Message                 string   `json:"message"`
	FollowUpQuestions       []string `json:"followUpQuestions"`
	AdaptiveRecommendations []string `json:"adaptiveRecommendations,omitzero"`
}

// CheckIn builds the morning greeting. Adaptations are only surfaced once
// feedback has been given.
func CheckIn(state State, adaptations []string) CheckInResponse {
	switch state {
	case StatePlanExistsNoFeedback:
		return CheckInResponse{
			Message: "Good morning! How did yesterday's meal plan work for you? Your feedback helps me personalize today's recommendations.",
			FollowUpQuestions: []string{
				"Did you follow the meal plan?",
				"Which meals did you enjoy most?",
				"How was your energy and mood?",
				"Any digestive issues or improvements?",
			},
		}
	case StateFeedbackGiven:
		recs := adaptations
		if recs == nil {
			recs = []string{}
		}
		return CheckInResponse{
			Message: "Good morning! Based on your feedback from yesterday, I've got some personalized adjustments for today's plan.",
			FollowUpQuestions: []string{
				"How are you feeling this morning?",
				"Ready for today's adapted meal plan?",
			},
			AdaptiveRecommendations: recs,
		}
	default:
		return CheckInResponse{
			Message: "Good morning! Ready to start your personalized nutrition journey? We'll create today's meal plan based on your current menstrual cycle phase and health goals. Would you like that?",
			FollowUpQuestions: []string{
				"How are you feeling today?",
				"Any specific symptoms or cravings?",
				"What's your energy level like this morning?",
			},
		}
	}
}

// PersonalizedMessage greets the user for their phase and lists today's
// adjustments.
func PersonalizedMessage(phase nutrition.Phase, adaptations []string) string {
	msg := guidance.Phase(phase).Message
	if len(adaptations) > 0 {
		msg += fmt.Sprintf(". Today's plan includes these personalized adjustments: %s.", strings.Join(adaptations, ", "))
	}
	return msg
}

// FallbackMessage accompanies a static plan.
func FallbackMessage(phase nutrition.Phase) string {
	return fmt.Sprintf("Here's your personalized meal plan for your %s phase, designed to support your body's natural rhythms.", phase)
}
