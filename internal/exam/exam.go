// Package exam holds the question bank: IELTS speaking questions across the
// three parts, writing prompts, and mock-test assembly. Selection is driven by
// a caller-supplied seed so one sitting always sees the same draw.
package exam

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrNoQuestions is returned when a selection is requested from an empty pool.
var ErrNoQuestions = errors.New("exam: no questions available")

// Question is one speaking question. Part 2 questions carry the cue-card
// bullet points; other parts leave CueCard empty.
type Question struct {
	Part        int    `yaml:"part"`
	Topic       string `yaml:"topic"`
	Text        string `yaml:"text"`
	CueCard     string `yaml:"cue_card"`
	Band9Answer string `yaml:"band9_answer"`
	Source      string `yaml:"source"`
}

// WritingPrompt is one writing task prompt. Task 1 describes data or a
// process, task 2 is an essay question.
type WritingPrompt struct {
	Task     int    `yaml:"task"`
	TestType string `yaml:"test_type"`
	Topic    string `yaml:"topic"`
	Text     string `yaml:"text"`
}

// MockTestPlan is a full three-part speaking test: two Part 1 topics with a
// handful of questions each, one Part 2 cue card, and a matching Part 3 theme.
type MockTestPlan struct {
	Part1 []Question
	Part2 *Question
	Part3 []Question
}

// Bank is an immutable set of questions and writing prompts loaded at startup.
type Bank struct {
	questions []Question
	prompts   []WritingPrompt
}

// New builds a Bank from the given questions and prompts.
func New(questions []Question, prompts []WritingPrompt) *Bank {
	return &Bank{
		questions: append([]Question(nil), questions...),
		prompts:   append([]WritingPrompt(nil), prompts...),
	}
}

// Len reports how many speaking questions the bank holds.
func (b *Bank) Len() int { return len(b.questions) }

// Topics returns the distinct topics per part, sorted alphabetically.
func (b *Bank) Topics() map[int][]string {
	seen := make(map[int]map[string]struct{})
	for _, q := range b.questions {
		if q.Topic == "" {
			continue
		}
		if seen[q.Part] == nil {
			seen[q.Part] = make(map[string]struct{})
		}
		seen[q.Part][q.Topic] = struct{}{}
	}

	topics := make(map[int][]string, len(seen))
	for part, set := range seen {
		list := make([]string, 0, len(set))
		for topic := range set {
			list = append(list, topic)
		}
		sort.Strings(list)
		topics[part] = list
	}
	return topics
}

// Pick selects one question using the given seed, optionally filtered by part
// (0 means any part). The same seed always yields the same question. A part
// with no questions falls back to the whole bank.
func (b *Bank) Pick(seed int64, part int) (Question, error) {
	if len(b.questions) == 0 {
		return Question{}, ErrNoQuestions
	}

	pool := b.questions
	if part != 0 {
		filtered := b.byPart(part)
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	rng := rand.New(rand.NewSource(seed))
	return pool[rng.Intn(len(pool))], nil
}

// PickWriting selects one writing prompt using the given seed, optionally
// filtered by task number (0 means any task).
func (b *Bank) PickWriting(seed int64, task int) (WritingPrompt, error) {
	pool := b.prompts
	if task != 0 {
		var filtered []WritingPrompt
		for _, p := range b.prompts {
			if p.Task == task {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}
	if len(pool) == 0 {
		return WritingPrompt{}, fmt.Errorf("%w: no writing prompts for task %d", ErrNoQuestions, task)
	}

	rng := rand.New(rand.NewSource(seed))
	return pool[rng.Intn(len(pool))], nil
}

func (b *Bank) byPart(part int) []Question {
	var out []Question
	for _, q := range b.questions {
		if q.Part == part {
			out = append(out, q)
		}
	}
	return out
}
