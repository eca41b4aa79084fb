package scoring

import (
	"regexp"
	"strings"
)

// fillerPatterns matches spoken fillers in a lowercased transcript. Keys are
// the canonical filler labels used in reports. "so" only counts when it leads
// into another hesitation marker; on its own it is usually a legitimate
// connective.
var fillerPatterns = map[string]*regexp.Regexp{
	"um":        regexp.MustCompile(`\bum+\b`),
	"uh":        regexp.MustCompile(`\buh+\b`),
	"erm":       regexp.MustCompile(`\berm+\b`),
	"like":      regexp.MustCompile(`\blike\b`),
	"you know":  regexp.MustCompile(`\byou know\b`),
	"i mean":    regexp.MustCompile(`\bi mean\b`),
	"basically": regexp.MustCompile(`\bbasically\b`),
	"actually":  regexp.MustCompile(`\bactually\b`),
	"literally": regexp.MustCompile(`\bliterally\b`),
	"so":        regexp.MustCompile(`\bso+\s+(?:yeah|like|um+|uh+)\b`),
}

// FillerReport summarizes hesitation markers found in a transcript.
type FillerReport struct {
	// Counts maps each detected filler to its occurrence count. Fillers
	// that never occur are absent.
	Counts map[string]int

	// Total is the sum of all counts.
	Total int

	// PerHundredWords is the filler density relative to the transcript
	// length. Zero for an empty transcript.
	PerHundredWords float64
}

// DetectFillers scans a raw transcript for common hesitation markers. The
// transcript is lowercased but not otherwise normalized, since contraction
// expansion would distort phrase fillers like "i mean".
func DetectFillers(transcript string) FillerReport {
	lower := strings.ToLower(transcript)

	report := FillerReport{Counts: make(map[string]int)}
	for label, pattern := range fillerPatterns {
		if n := len(pattern.FindAllString(lower, -1)); n > 0 {
			report.Counts[label] = n
			report.Total += n
		}
	}

	if words := len(strings.Fields(lower)); words > 0 {
		report.PerHundredWords = float64(report.Total) * 100 / float64(words)
	}
	return report
}
