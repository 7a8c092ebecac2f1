// Package conditions derives canonical condition tags from onboarding answers.
package conditions

import (
	"regexp"
	"strings"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

type keywordRule struct {
	keywords []string
	tag      nutrition.ConditionTag
}

// A diagnosis can match several rules ("hypothyroid, insulin resistance").
var diagnosisRules = []keywordRule{
	{[]string{"pcos", "polycystic"}, nutrition.PCOS},
	{[]string{"endometriosis"}, nutrition.Endometriosis},
	{[]string{"thyroid", "hypo", "hyper"}, nutrition.ThyroidHypo},
	{[]string{"diabetes", "insulin"}, nutrition.DiabetesInsulin},
	{[]string{"depression", "anxiety"}, nutrition.MentalHealth},
	{[]string{"ibs", "digestive", "celiac"}, nutrition.DigestiveHealth},
	{[]string{"autoimmune"}, nutrition.Autoimmune},
}

var goalRules = []keywordRule{
	{[]string{"regulate menstrual", "pcos"}, nutrition.PCOS},
	{[]string{"hormone balance"}, nutrition.HormoneBalance},
	{[]string{"manage chronic"}, nutrition.GeneralChronic},
	{[]string{"reduce inflammation"}, nutrition.AntiInflammatory},
}

// Keys are onboarding symptom labels after normalizeSymptom.
var symptomTags = map[string][]nutrition.ConditionTag{
	"irregular_periods":                       {nutrition.PCOS},
	"heavy_bleeding":                          {nutrition.Endometriosis, nutrition.PCOS},
	"painful_periods":                         {nutrition.Endometriosis},
	"weight_gain_or_difficulty_losing_weight": {nutrition.PCOS, nutrition.ThyroidHypo},
	"fatigue_and_low_energy":                  {nutrition.ThyroidHypo, nutrition.StressAdrenal},
	"mood_swings":                             {nutrition.PCOS, nutrition.StressAdrenal},
	"hair_loss_or_thinning":                   {nutrition.PCOS, nutrition.ThyroidHypo},
	"acne_or_skin_issues":                     {nutrition.PCOS},
	"bloating_and_digestive_issues":           {nutrition.DigestiveHealth},
	"stress_and_anxiety":                      {nutrition.StressAdrenal},
	"sleep_problems":                          {nutrition.StressAdrenal},
	"food_cravings":                           {nutrition.PCOS, nutrition.StressAdrenal},
	"hot_flashes":                             {nutrition.HormoneImbalance},
	"brain_fog_or_memory_issues":              {nutrition.ThyroidHypo, nutrition.StressAdrenal},
	"joint_pain_or_stiffness":                 {nutrition.Autoimmune, nutrition.Endometriosis},
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	parens        = strings.NewReplacer("(", "", ")", "")
)

// Extract maps a profile to a deduplicated, first-seen ordered list of
// condition tags. It never returns an empty list.
func Extract(p nutrition.Profile) []nutrition.ConditionTag {
	var set tagSet

	for _, c := range p.MedicalConditions {
		set.addMatches(strings.ToLower(c), diagnosisRules)
	}
	for _, s := range p.Symptoms {
		set.add(symptomTags[normalizeSymptom(s)]...)
	}
	if isHighStress(p.StressLevel) {
		set.add(nutrition.StressAdrenal)
	}
	if isShortSleep(p.SleepHours) {
		set.add(nutrition.StressAdrenal)
	}
	for _, g := range p.Goals {
		set.addMatches(strings.ToLower(g), goalRules)
	}

	if len(set.order) == 0 {
		return []nutrition.ConditionTag{nutrition.GeneralWellness}
	}
	return set.order
}

func normalizeSymptom(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "_")
	return parens.Replace(s)
}

func isHighStress(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "high", "very high":
		return true
	}
	return false
}

func isShortSleep(hours string) bool {
	return strings.EqualFold(strings.TrimSpace(hours), "less than 6")
}

type tagSet struct {
	seen  map[nutrition.ConditionTag]struct{}
	order []nutrition.ConditionTag
}

func (s *tagSet) add(tags ...nutrition.ConditionTag) {
	if s.seen == nil {
		s.seen = map[nutrition.ConditionTag]struct{}{}
	}
	for _, t := range tags {
		if _, ok := s.seen[t]; ok {
			continue
		}
		s.seen[t] = struct{}{}
		s.order = append(s.order, t)
	}
}

func (s *tagSet) addMatches(text string, rules []keywordRule) {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				s.add(r.tag)
				break
			}
		}
	}
}
