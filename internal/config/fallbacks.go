package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/starchart/internal/starchart"
)

// FallbacksFile is the top-level YAML document for a custom fallback set.
type FallbacksFile struct {
	Fallbacks []starchart.FallbackCandidate `yaml:"fallbacks"`
}

// LoadFallbacks reads and validates a fallback YAML file.
func LoadFallbacks(path string) ([]starchart.FallbackCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fallbacks config: %w", err)
	}
	var doc FallbacksFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fallbacks config: %w", err)
	}
	if len(doc.Fallbacks) == 0 {
		return nil, fmt.Errorf("fallbacks config: no fallbacks defined")
	}
	out := make([]starchart.FallbackCandidate, 0, len(doc.Fallbacks))
	for i, f := range doc.Fallbacks {
		f.Label = strings.TrimSpace(f.Label)
		f.Date = strings.TrimSpace(f.Date)
		if f.Label == "" {
			return nil, fmt.Errorf("fallbacks config: fallback[%d] missing label", i)
		}
		if _, err := starchart.ParseDate(f.Date); err != nil {
			return nil, fmt.Errorf("fallbacks config: fallback[%d] (%s): %w", i, f.Label, err)
		}
		out = append(out, f)
	}
	return out, nil
}
