package moderation

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed wordlist.yaml
var defaultWordlist []byte

// Wordlist is the vocabulary a Matcher is built from.
type Wordlist struct {
	Words    []string `yaml:"words"`
	Patterns []string `yaml:"patterns"`
}

// DefaultWordlist returns the vocabulary shipped with the binary.
func DefaultWordlist() *Wordlist {
	wl, err := ParseWordlist(defaultWordlist)
	if err != nil {
		panic(fmt.Sprintf("moderation: embedded wordlist: %v", err))
	}
	return wl
}

// LoadWordlist reads a YAML wordlist from path. An empty path yields the
// default list.
func LoadWordlist(path string) (*Wordlist, error) {
	if path == "" {
		return DefaultWordlist(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wordlist %s: %w", path, err)
	}
	return ParseWordlist(data)
}

func ParseWordlist(data []byte) (*Wordlist, error) {
	var wl Wordlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse wordlist: %w", err)
	}
	if len(wl.Words) == 0 && len(wl.Patterns) == 0 {
		return nil, fmt.Errorf("parse wordlist: no words or patterns")
	}
	return &wl, nil
}
