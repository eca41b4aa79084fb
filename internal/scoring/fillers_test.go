package scoring_test

import (
	"math"
	"testing"

	"github.com/veslan/bandly/internal/scoring"
)

func TestDetectFillers(t *testing.T) {
	t.Parallel()

	report := scoring.DetectFillers("Um, I think, um, it's like, you know, basically fine. Umm yes.")

	if got := report.Counts["um"]; got != 3 {
		t.Errorf(`Counts["um"]=%d, want 3`, got)
	}
	if got := report.Counts["like"]; got != 1 {
		t.Errorf(`Counts["like"]=%d, want 1`, got)
	}
	if got := report.Counts["you know"]; got != 1 {
		t.Errorf(`Counts["you know"]=%d, want 1`, got)
	}
	if got := report.Counts["basically"]; got != 1 {
		t.Errorf(`Counts["basically"]=%d, want 1`, got)
	}
	if report.Total != 6 {
		t.Errorf("Total=%d, want 6", report.Total)
	}
}

func TestDetectFillersSoOnlyBeforeHesitation(t *testing.T) {
	t.Parallel()

	// "so" as a connective is legitimate; only "so" leading into another
	// hesitation marker counts.
	clean := scoring.DetectFillers("So I moved to the city for work.")
	if got := clean.Counts["so"]; got != 0 {
		t.Errorf(`connective "so" counted %d times, want 0`, got)
	}

	hedged := scoring.DetectFillers("so um I guess that's it")
	if got := hedged.Counts["so"]; got != 1 {
		t.Errorf(`hedging "so" counted %d times, want 1`, got)
	}
}

func TestDetectFillersDensity(t *testing.T) {
	t.Parallel()

	// 2 fillers in 10 words is 20 per hundred.
	report := scoring.DetectFillers("um well the weather is uh quite nice here today")
	if math.Abs(report.PerHundredWords-20) > 1e-9 {
		t.Errorf("PerHundredWords=%g, want 20", report.PerHundredWords)
	}

	empty := scoring.DetectFillers("")
	if empty.Total != 0 || empty.PerHundredWords != 0 {
		t.Errorf("empty transcript: Total=%d PerHundredWords=%g, want zeros", empty.Total, empty.PerHundredWords)
	}
}
