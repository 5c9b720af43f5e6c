// Package raceid derives the canonical race identifiers used to key
// predictions, results and scores.
package raceid

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/okian/prixsix/internal/domain/model"
)

const (
	gpSuffix     = " - GP"
	sprintSuffix = " - Sprint"
	sprintToken  = "-Sprint"
)

var whitespace = regexp.MustCompile(`\s+`)

// Normalize maps a race label to its canonical id.
//
//	"British Grand Prix - GP"     -> "British-Grand-Prix"
//	"British Grand Prix - Sprint" -> "British-Grand-Prix-Sprint"
//
// Normalize is idempotent.
func Normalize(label string) string {
	s := strings.TrimRightFunc(label, unicode.IsSpace)
	switch {
	case strings.HasSuffix(s, gpSuffix):
		s = strings.TrimSuffix(s, gpSuffix)
	case strings.HasSuffix(s, sprintSuffix):
		s = strings.TrimSuffix(s, sprintSuffix) + sprintToken
	}
	return whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
}

// NormalizeForComparison is Normalize followed by lowercasing. Use it
// whenever two collections may disagree on casing.
func NormalizeForComparison(label string) string {
	return strings.ToLower(Normalize(label))
}

// Equal reports whether two labels name the same race.
func Equal(a, b string) bool {
	return NormalizeForComparison(a) == NormalizeForComparison(b)
}

// IsSprint reports whether the label names a sprint race.
func IsSprint(label string) bool {
	return strings.HasSuffix(NormalizeForComparison(label), strings.ToLower(sprintToken))
}

// DocID is the natural identity of a score document.
func DocID(raceID, ownerID string) string {
	return Normalize(raceID) + "_" + ownerID
}

// DocKey is DocID with the race part compared case-insensitively. Two
// scores with the same DocKey are the same document.
func DocKey(raceID, ownerID string) string {
	return NormalizeForComparison(raceID) + "_" + ownerID
}

// Race is one scoreable race of the schedule.
type Race struct {
	ID         string
	Definition model.RaceDefinition
	Sprint     bool
}

// Schedule indexes races by comparison id.
type Schedule struct {
	order []Race
	byKey map[string]Race
	seq   map[string]int
}

// Index expands the schedule into scoreable races: every weekend yields its
// grand prix id and, for sprint weekends, a sprint id. The first definition
// wins when two weekends normalize to the same id.
func Index(defs []model.RaceDefinition) *Schedule {
	s := &Schedule{
		byKey: make(map[string]Race, len(defs)*2),
		seq:   make(map[string]int, len(defs)*2),
	}
	for _, def := range defs {
		races := []Race{{ID: Normalize(def.Name), Definition: def}}
		if def.HasSprint {
			races = append(races, Race{ID: Normalize(def.Name + sprintSuffix), Definition: def, Sprint: true})
		}
		for _, r := range races {
			key := strings.ToLower(r.ID)
			if _, dup := s.byKey[key]; dup {
				continue
			}
			s.byKey[key] = r
			s.seq[key] = len(s.order)
			s.order = append(s.order, r)
		}
	}
	return s
}

// Lookup finds the race named by label.
func (s *Schedule) Lookup(label string) (Race, bool) {
	r, ok := s.byKey[NormalizeForComparison(label)]
	return r, ok
}

// Before reports whether race a runs before race b. Races are ordered by
// start time; a sprint runs before the grand prix of its weekend, and races
// without distinct start times keep schedule order. Unknown races are never
// before anything.
func (s *Schedule) Before(a, b string) bool {
	ka, kb := NormalizeForComparison(a), NormalizeForComparison(b)
	ra, okA := s.byKey[ka]
	rb, okB := s.byKey[kb]
	if !okA || !okB || ka == kb {
		return false
	}
	ta, tb := ra.Definition.RaceTime, rb.Definition.RaceTime
	if !ta.IsZero() && !tb.IsZero() && !ta.Equal(tb) {
		return ta.Before(tb)
	}
	if Equal(ra.Definition.Name, rb.Definition.Name) && ra.Sprint != rb.Sprint {
		return ra.Sprint
	}
	return s.seq[ka] < s.seq[kb]
}

// Races returns the scoreable races in schedule order.
func (s *Schedule) Races() []Race {
	out := make([]Race, len(s.order))
	copy(out, s.order)
	return out
}
