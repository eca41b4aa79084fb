package exam

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// bankFile is the on-disk layout of a question bank.
type bankFile struct {
	Questions      []Question      `yaml:"questions"`
	WritingPrompts []WritingPrompt `yaml:"writing_prompts"`
}

// Load reads the YAML question bank at path and returns a validated [Bank].
func Load(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("exam: open %q: %w", path, err)
	}
	defer f.Close()

	bank, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("exam: parse %q: %w", path, err)
	}
	return bank, nil
}

// LoadFromReader decodes a YAML question bank from r and validates the result.
func LoadFromReader(r io.Reader) (*Bank, error) {
	var file bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := validate(file); err != nil {
		return nil, err
	}
	return New(file.Questions, file.WritingPrompts), nil
}

// validate checks every entry and returns a joined error listing all failures.
func validate(file bankFile) error {
	var errs []error
	for i, q := range file.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		if q.Part < 1 || q.Part > 3 {
			errs = append(errs, fmt.Errorf("%s.part %d is invalid; valid values: 1, 2, 3", prefix, q.Part))
		}
		if q.Text == "" {
			errs = append(errs, fmt.Errorf("%s.text is required", prefix))
		}
		if q.Part == 2 && q.CueCard == "" {
			errs = append(errs, fmt.Errorf("%s: part 2 questions require a cue_card", prefix))
		}
	}
	for i, p := range file.WritingPrompts {
		prefix := fmt.Sprintf("writing_prompts[%d]", i)
		if p.Task != 1 && p.Task != 2 {
			errs = append(errs, fmt.Errorf("%s.task %d is invalid; valid values: 1, 2", prefix, p.Task))
		}
		if p.Text == "" {
			errs = append(errs, fmt.Errorf("%s.text is required", prefix))
		}
	}
	return errors.Join(errs...)
}
