package logging

import (
	"fmt"
	"strings"
)

// Spec maps components to log levels. A spec string is a comma list of
// either a bare level (the default) or component=level pairs, for
// example "info,topology=debug,journal=warn".
type Spec struct {
	def        Level
	components map[string]Level
}

// ParseSpec parses a spec string. The empty string means info for
// everything.
func ParseSpec(s string) (*Spec, error) {
	spec := &Spec{def: LevelInfo, components: make(map[string]Level)}
	if strings.TrimSpace(s) == "" {
		return spec, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, levelStr, found := strings.Cut(part, "=")
		if !found {
			level, err := ParseLevel(part)
			if err != nil {
				return nil, err
			}
			spec.def = level
			continue
		}
		level, err := ParseLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", name, err)
		}
		spec.components[strings.TrimSpace(name)] = level
	}
	return spec, nil
}

// LevelFor returns the level for a component, falling back to the
// default for components the spec does not name.
func (s *Spec) LevelFor(component string) Level {
	if level, ok := s.components[component]; ok {
		return level
	}
	return s.def
}
