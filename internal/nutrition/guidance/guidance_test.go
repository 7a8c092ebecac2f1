package guidance

import (
	"strings"
	"testing"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

func TestEmbeddedTableLoads(t *testing.T) {
	tbl, err := Load(embedded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, p := range nutrition.Phases() {
		g := tbl.Phase(p)
		if g.Phase != p || g.Name == "" || g.Message == "" {
			t.Fatalf("phase %s incomplete: %+v", p, g)
		}
		if len(g.SeedCycling) != 2 || len(g.Convenience) == 0 || len(g.Flavor) == 0 || len(g.Efficacy) == 0 {
			t.Fatalf("phase %s missing seed cycling data", p)
		}
		if len(g.ChatFoods) != 3 {
			t.Fatalf("phase %s has %d chat foods, want 3", p, len(g.ChatFoods))
		}
	}
	for _, c := range []string{"indian", "mediterranean", "japanese", "mexican", "american"} {
		if got := tbl.Cuisine(c); got.Key != c {
			t.Fatalf("Cuisine(%s).Key = %s", c, got.Key)
		}
	}
}

func TestSeedCyclingPairs(t *testing.T) {
	tests := map[nutrition.Phase][]string{
		nutrition.PhaseMenstrual:  {"flax", "pumpkin"},
		nutrition.PhaseFollicular: {"flax", "pumpkin"},
		nutrition.PhaseOvulatory:  {"sesame", "sunflower"},
		nutrition.PhaseLuteal:     {"sesame", "sunflower"},
	}
	for phase, seeds := range tests {
		g := Phase(phase)
		for i, seed := range seeds {
			if !strings.Contains(strings.ToLower(g.SeedCycling[i]), seed) {
				t.Errorf("%s seed %d = %q, want %s", phase, i, g.SeedCycling[i], seed)
			}
		}
	}
}

func TestIncorporationStyles(t *testing.T) {
	for _, phase := range nutrition.Phases() {
		styles := Phase(phase).Incorporation()
		if len(styles) != 3 || styles[0].Label != "Lazy" || styles[1].Label != "Tasty" || styles[2].Label != "Healthy" {
			t.Fatalf("%s styles=%+v", phase, styles)
		}
		for _, st := range styles {
			if len(st.Tips) == 0 {
				t.Errorf("%s %s has no tips", phase, st.Label)
			}
		}
	}
}

func TestCuisineFallback(t *testing.T) {
	if got := Cuisine("  Indian "); got.Name != "Indian" {
		t.Fatalf("Cuisine(Indian) = %s", got.Name)
	}
	if got := Cuisine("klingon"); got.Key != DefaultCuisine {
		t.Fatalf("unknown cuisine resolved to %s", got.Key)
	}
	if got := Cuisine(""); got.Key != DefaultCuisine {
		t.Fatalf("blank cuisine resolved to %s", got.Key)
	}
}

func TestConditionLookup(t *testing.T) {
	if g, ok := Condition(nutrition.PCOS); !ok || !strings.HasPrefix(g.Name, "PCOS") {
		t.Fatalf("Condition(pcos) = %+v, %v", g, ok)
	}
	if _, ok := Condition(nutrition.GeneralWellness); ok {
		t.Fatal("general_wellness should have no guidance entry")
	}
	got := Default().ForConditions([]nutrition.ConditionTag{nutrition.GeneralWellness, nutrition.Endometriosis, nutrition.StressAdrenal})
	if len(got) != 2 || got[0].Name != "Endometriosis" {
		t.Fatalf("ForConditions = %+v", got)
	}
}

func TestPhaseUnknownDoesNotPanic(t *testing.T) {
	if g := Phase(nutrition.Phase("waxing")); g.Phase != nutrition.PhaseMenstrual {
		t.Fatalf("Phase(unknown) = %s", g.Phase)
	}
}

func TestLoadRejectsMissingPhase(t *testing.T) {
	if _, err := Load([]byte("phases: {}\ncuisines: {mediterranean: {name: M}}\n")); err == nil {
		t.Fatal("expected error for missing phases")
	}
}
