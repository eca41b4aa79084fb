package exam

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"unicode"
)

// normKeyMax caps normalized matching keys so very long cue cards do not
// dominate the overlap score.
const normKeyMax = 80

// AssembleMockTest builds a complete three-part test plan from the bank:
//
//  1. two Part 1 topics with 4-5 questions each,
//  2. one Part 2 cue card,
//  3. a Part 3 theme matched to the cue card by keyword overlap, 4-5 questions.
//
// The same seed always yields the same plan.
func (b *Bank) AssembleMockTest(seed int64) (MockTestPlan, error) {
	part1 := b.byPart(1)
	part2 := b.byPart(2)
	part3 := b.byPart(3)
	if len(part1) == 0 || len(part2) == 0 {
		return MockTestPlan{}, fmt.Errorf("%w: mock test needs part 1 and part 2 questions", ErrNoQuestions)
	}

	rng := rand.New(rand.NewSource(seed))
	var plan MockTestPlan

	// Part 1: two topics, 4-5 questions from each.
	p1Topics, p1ByTopic := groupByTopic(part1)
	for _, topic := range sampleStrings(rng, p1Topics, 2) {
		pool := p1ByTopic[topic]
		plan.Part1 = append(plan.Part1, sampleQuestions(rng, pool, 4+rng.Intn(2))...)
	}

	// Part 2: one cue card.
	card := part2[rng.Intn(len(part2))]
	plan.Part2 = &card

	// Part 3: best keyword overlap between the cue card text and a theme.
	if len(part3) > 0 {
		p3Topics, p3ByTopic := groupByTopic(part3)
		theme := matchTheme(card.Text, p3Topics)
		if theme == "" {
			theme = p3Topics[rng.Intn(len(p3Topics))]
		}
		plan.Part3 = sampleQuestions(rng, p3ByTopic[theme], 4+rng.Intn(2))
	}

	return plan, nil
}

// groupByTopic buckets questions by topic and returns the topics sorted, so
// iteration order is stable across runs.
func groupByTopic(questions []Question) ([]string, map[string][]Question) {
	byTopic := make(map[string][]Question)
	for _, q := range questions {
		byTopic[q.Topic] = append(byTopic[q.Topic], q)
	}
	topics := make([]string, 0, len(byTopic))
	for topic := range byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, byTopic
}

// matchTheme returns the theme sharing the most keywords with text, or ""
// when no theme overlaps at all. Ties keep the alphabetically first theme.
func matchTheme(text string, themes []string) string {
	cueWords := make(map[string]struct{})
	for _, w := range strings.Fields(normKey(text)) {
		cueWords[w] = struct{}{}
	}

	var best string
	bestOverlap := 0
	for _, theme := range themes {
		overlap := 0
		for _, w := range strings.Fields(normKey(theme)) {
			if _, ok := cueWords[w]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = theme
		}
	}
	return best
}

// normKey lowercases text, strips punctuation, and collapses whitespace into
// a bounded matching key.
func normKey(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	key := strings.Join(strings.Fields(b.String()), " ")
	if len(key) > normKeyMax {
		key = key[:normKeyMax]
	}
	return key
}

// sampleQuestions draws up to n questions from pool without replacement.
func sampleQuestions(rng *rand.Rand, pool []Question, n int) []Question {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]Question, 0, n)
	for _, i := range rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}

// sampleStrings draws up to n strings from pool without replacement.
func sampleStrings(rng *rand.Rand, pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}
