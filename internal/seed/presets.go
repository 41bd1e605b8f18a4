package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yml
var builtinPresets []byte

// Preset sizes a seeding run.
type Preset struct {
	Users                   int     `yaml:"users"`
	HiringPosts             int     `yaml:"hiring_posts"`
	Referrals               int     `yaml:"referrals"`
	Conversations           int     `yaml:"conversations"`
	MessagesPerConversation int     `yaml:"messages_per_conversation"`
	OpenToWorkRatio         float64 `yaml:"open_to_work_ratio"`
}

// Validate rejects presets that cannot be satisfied.
func (p Preset) Validate() error {
	switch {
	case p.Users < 0, p.HiringPosts < 0, p.Referrals < 0, p.Conversations < 0, p.MessagesPerConversation < 0:
		return fmt.Errorf("preset counts must not be negative")
	case p.OpenToWorkRatio < 0 || p.OpenToWorkRatio > 1:
		return fmt.Errorf("open_to_work_ratio must be between 0 and 1")
	case p.Conversations > 0 && p.Users < 2:
		return fmt.Errorf("conversations need at least 2 users")
	case p.Conversations > maxPairs(p.Users):
		return fmt.Errorf("%d users allow at most %d conversations", p.Users, maxPairs(p.Users))
	case (p.HiringPosts > 0 || p.Referrals > 0) && p.Users < 1:
		return fmt.Errorf("hiring posts and referrals need at least 1 user")
	}
	return nil
}

func maxPairs(users int) int {
	return users * (users - 1) / 2
}

// ParsePresets decodes a YAML document mapping preset names to presets.
func ParsePresets(raw []byte) (map[string]Preset, error) {
	presets := make(map[string]Preset)
	if err := yaml.Unmarshal(raw, &presets); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for name, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return presets, nil
}

// LoadPreset looks up name in the presets file at path, or in the built-in
// presets when path is empty.
func LoadPreset(name, path string) (Preset, error) {
	raw := builtinPresets
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return Preset{}, fmt.Errorf("read presets: %w", err)
		}
	}

	presets, err := ParsePresets(raw)
	if err != nil {
		return Preset{}, err
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}
