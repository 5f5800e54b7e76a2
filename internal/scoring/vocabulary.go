package scoring

import (
	"fmt"
	"sort"
	"strings"

	"sentinel/internal/config"
)

// DefaultVocabulary is the profile used when none is configured.
const DefaultVocabulary = config.DefaultVocabulary

// Vocabulary is a named, versioned pair of keyword lists. Terms are stored
// lowercase and matched as substrings, in list order.
type Vocabulary struct {
	Name     string
	Friction []string
	Security []string
}

// builtin holds the shipped profiles. They differ on purpose: each entry
// point of the dashboard historically used its own list.
var builtin = map[string]Vocabulary{
	"sentinel": {
		Name:     "sentinel",
		Friction: []string{"confusing", "slow", "crash", "difficult", "hidden", "hard to find", "cluttered"},
		Security: []string{"password", "login", "leak", "scam", "unauthorized", "privacy", "hacked"},
	},
	"triage": {
		Name:     "triage",
		Friction: []string{"confusing", "slow", "crash", "difficult", "hidden"},
		Security: []string{"password", "login", "leak", "scam", "unauthorized", "privacy"},
	},
}

// NewVocabulary normalises the given lists and validates the result.
func NewVocabulary(name string, friction, security []string) (Vocabulary, error) {
	v := Vocabulary{
		Name:     strings.TrimSpace(name),
		Friction: normalizeTerms(friction),
		Security: normalizeTerms(security),
	}
	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

// Validate checks that the profile is named, has no blank terms, and that the
// two lists are disjoint.
func (v Vocabulary) Validate() error {
	if v.Name == "" {
		return ErrVocabularyUnnamed
	}
	seen := make(map[string]bool, len(v.Friction))
	for _, term := range v.Friction {
		if strings.TrimSpace(term) == "" {
			return fmt.Errorf("%s friction: %w", v.Name, ErrEmptyTerm)
		}
		seen[term] = true
	}
	for _, term := range v.Security {
		if strings.TrimSpace(term) == "" {
			return fmt.Errorf("%s security: %w", v.Name, ErrEmptyTerm)
		}
		if seen[term] {
			return fmt.Errorf("%s: %q: %w", v.Name, term, ErrVocabularyOverlap)
		}
	}
	return nil
}

// Builtin returns a copy of a shipped profile.
func Builtin(name string) (Vocabulary, bool) {
	v, ok := builtin[name]
	if !ok {
		return Vocabulary{}, false
	}
	return Vocabulary{
		Name:     v.Name,
		Friction: append([]string(nil), v.Friction...),
		Security: append([]string(nil), v.Security...),
	}, true
}

// BuiltinNames returns the shipped profile names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveVocabulary picks the named profile, preferring a definition from the
// YAML file over the built-in one with the same name.
func ResolveVocabulary(name string, file *config.YAMLConfig) (Vocabulary, error) {
	if name == "" {
		name = DefaultVocabulary
	}
	if vc := file.GetVocabularyByName(name); vc != nil {
		return NewVocabulary(vc.Name, vc.Friction, vc.Security)
	}
	if v, ok := Builtin(name); ok {
		return v, nil
	}
	return Vocabulary{}, fmt.Errorf("%q: %w", name, ErrUnknownVocabulary)
}

// normalizeTerms lowercases and trims terms, dropping exact duplicates while
// keeping first-seen order. Blank entries are kept so Validate can reject them.
func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
