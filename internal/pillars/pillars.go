package pillars

import (
	"fmt"
	"strings"

	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
)

// Key is the closed set of assessment kinds. Every pillar string in the
// system parses through this package; no other package may hold pillar
// literals.
type Key string

const (
	Welcome  Key = "welcome"
	SelfCare Key = "self_care"
	Skills   Key = "skills"
	Talent   Key = "talent"
	Brand    Key = "brand"
	Economy  Key = "economy"
)

// Pillars are the five life/work domains, in recommended order. Welcome is an
// assessment kind but not a pillar.
func Pillars() []Key {
	return []Key{SelfCare, Skills, Talent, Brand, Economy}
}

// Kinds are all assessment kinds, welcome first.
func Kinds() []Key {
	return append([]Key{Welcome}, Pillars()...)
}

// Parse canonicalizes the string forms observed in stored data
// ("self-care", "Self Care", "self_care") into a single Key.
func Parse(s string) (Key, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	switch Key(norm) {
	case Welcome, SelfCare, Skills, Talent, Brand, Economy:
		return Key(norm), nil
	}
	return "", fmt.Errorf("%w: unknown assessment kind %q", pkgerr.ErrInvalidArgument, s)
}

func (k Key) String() string { return string(k) }

// IsPillar reports whether k is one of the five pillars (not welcome).
func (k Key) IsPillar() bool { return k != Welcome }

// NextRecommendedAfter returns the kind that follows k in recommended order,
// or "" when k is the last one.
func NextRecommendedAfter(k Key) Key {
	kinds := Kinds()
	for i, cur := range kinds {
		if cur == k && i+1 < len(kinds) {
			return kinds[i+1]
		}
	}
	return ""
}

// NextRecommended picks the first kind in recommended order that has not been
// completed yet. Returns "" when everything is done.
func NextRecommended(completed []Key) Key {
	done := make(map[Key]bool, len(completed))
	for _, k := range completed {
		done[k] = true
	}
	for _, k := range Kinds() {
		if !done[k] {
			return k
		}
	}
	return ""
}
