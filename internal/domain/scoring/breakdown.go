package scoring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BonusLabel names the bonus term of a breakdown.
const BonusLabel = "Bonus"

const entrySeparator = ", "

// entryPattern matches "name+digits". The name is greedy so a display name
// containing '+' keeps everything up to the last one.
var entryPattern = regexp.MustCompile(`^(.+)\+(\d+)$`)

// Entry is one driver term of a breakdown.
type Entry struct {
	Name   string
	Points int
}

// Breakdown is the decoded form of the persisted explanation string
//
//	"Verstappen+6, Hamilton+4, ..., Bonus+10"
type Breakdown struct {
	Entries  []Entry
	Bonus    int
	HasBonus bool
}

// Sum returns the driver points plus the bonus term.
func (b Breakdown) Sum() int {
	total := 0
	for _, e := range b.Entries {
		total += e.Points
	}
	if b.HasBonus {
		total += b.Bonus
	}
	return total
}

// Points returns the points recorded against name. Name matching ignores
// case and surrounding spaces.
func (b Breakdown) Points(name string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, e := range b.Entries {
		if strings.ToLower(e.Name) == want {
			return e.Points, true
		}
	}
	return 0, false
}

// Encode serializes b. Entries keep their order and the bonus term, when
// present, comes last.
func Encode(b Breakdown) string {
	parts := make([]string, 0, len(b.Entries)+1)
	for _, e := range b.Entries {
		parts = append(parts, e.Name+"+"+strconv.Itoa(e.Points))
	}
	if b.HasBonus {
		parts = append(parts, BonusLabel+"+"+strconv.Itoa(b.Bonus))
	}
	return strings.Join(parts, entrySeparator)
}

// Decode parses a breakdown string. An empty string decodes to an empty
// breakdown.
func Decode(s string) (Breakdown, error) {
	var b Breakdown
	if strings.TrimSpace(s) == "" {
		return b, nil
	}
	for i, raw := range strings.Split(s, ",") {
		part := strings.TrimSpace(raw)
		m := entryPattern.FindStringSubmatch(part)
		if m == nil {
			return Breakdown{}, fmt.Errorf("%w: entry %d %q is not name+points", ErrMalformedBreakdown, i+1, part)
		}
		name := strings.TrimSpace(m[1])
		pts, err := strconv.Atoi(m[2])
		if err != nil {
			return Breakdown{}, fmt.Errorf("%w: entry %d: %w", ErrMalformedBreakdown, i+1, err)
		}
		if strings.EqualFold(name, BonusLabel) {
			if b.HasBonus {
				return Breakdown{}, fmt.Errorf("%w: bonus listed twice", ErrMalformedBreakdown)
			}
			b.HasBonus = true
			b.Bonus = pts
			continue
		}
		b.Entries = append(b.Entries, Entry{Name: name, Points: pts})
	}
	return b, nil
}
