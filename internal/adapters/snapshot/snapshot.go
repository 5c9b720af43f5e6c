// Package snapshot reads and writes season snapshot files.
//
// A snapshot is one YAML (or JSON) document holding every collection the
// engine works on. Predictions recorded by older clients stored their
// drivers as a positional map (P1..P6 or driver1..driver6); both that shape
// and the ordered list are accepted and normalized to a list.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/types"
)

type document struct {
	Drivers     []model.Driver         `yaml:"drivers"`
	Races       []model.RaceDefinition `yaml:"races"`
	Users       []model.User           `yaml:"users"`
	Predictions []prediction           `yaml:"predictions"`
	Results     []result               `yaml:"results"`
	Scores      []model.Score          `yaml:"scores"`
	Standings   []standing             `yaml:"standings"`
	Leagues     []model.League         `yaml:"leagues"`
}

type prediction struct {
	OwnerID     string     `yaml:"ownerId"`
	RaceID      string     `yaml:"raceId"`
	SubmittedAt time.Time  `yaml:"submittedAt"`
	Drivers     driverList `yaml:"drivers"`
}

type result struct {
	RaceID  string     `yaml:"raceId"`
	Drivers driverList `yaml:"drivers"`
}

type standing struct {
	Rank   int    `yaml:"rank"`
	TeamID string `yaml:"teamId"`
	Points int    `yaml:"points"`
}

// driverList is an ordered list of driver ids that also decodes from a
// positional map.
type driverList []string

var positionKey = regexp.MustCompile(`(?i)^(?:p|driver)([1-9][0-9]*)$`)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *driverList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var ids []string
		if err := value.Decode(&ids); err != nil {
			return err
		}
		*d = ids
		return nil
	case yaml.MappingNode:
		var byKey map[string]string
		if err := value.Decode(&byKey); err != nil {
			return err
		}
		return d.fromPositions(byKey, value.Line)
	}
	return fmt.Errorf("line %d: drivers must be a list or a position map", value.Line)
}

func (d *driverList) fromPositions(byKey map[string]string, line int) error {
	if len(byKey) == 0 {
		*d = nil
		return nil
	}
	byPos := make(map[int]string, len(byKey))
	for key, id := range byKey {
		m := positionKey.FindStringSubmatch(key)
		if m == nil {
			return fmt.Errorf("line %d: unknown position key %q", line, key)
		}
		pos, err := strconv.Atoi(m[1])
		if err != nil {
			return fmt.Errorf("line %d: position key %q: %w", line, key, err)
		}
		if pos > model.PredictionSize {
			return fmt.Errorf("line %d: position key %q outside 1..%d", line, key, model.PredictionSize)
		}
		if _, dup := byPos[pos]; dup {
			return fmt.Errorf("line %d: position %d given twice", line, pos)
		}
		byPos[pos] = id
	}

	// Gaps become empty slots so validation reports them by position.
	ids := make([]string, model.PredictionSize)
	for pos, id := range byPos {
		ids[pos-1] = id
	}
	*d = ids
	return nil
}

// Decode reads one snapshot document from r.
func Decode(r io.Reader) (consistency.Snapshot, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return consistency.Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return doc.snapshot(), nil
}

// Load reads the snapshot file at path.
func Load(path string) (consistency.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return consistency.Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()
	return Decode(f)
}

func (doc document) snapshot() consistency.Snapshot {
	s := consistency.Snapshot{
		Drivers: doc.Drivers,
		Races:   doc.Races,
		Users:   doc.Users,
		Scores:  doc.Scores,
		Leagues: doc.Leagues,
	}
	for _, p := range doc.Predictions {
		s.Predictions = append(s.Predictions, model.Prediction{
			OwnerID:     p.OwnerID,
			RaceID:      p.RaceID,
			DriverIDs:   []string(p.Drivers),
			SubmittedAt: p.SubmittedAt,
		})
	}
	for _, r := range doc.Results {
		s.Results = append(s.Results, model.RaceResult{RaceID: r.RaceID, DriverIDs: []string(r.Drivers)})
	}
	for _, st := range doc.Standings {
		s.Standings = append(s.Standings, types.Entry{Rank: st.Rank, TeamID: st.TeamID, Points: st.Points})
	}
	return s
}

// Encode writes s as one YAML document. Driver lists are always written
// in list form.
func Encode(w io.Writer, s consistency.Snapshot) error {
	doc := document{
		Drivers: s.Drivers,
		Races:   s.Races,
		Users:   s.Users,
		Scores:  s.Scores,
		Leagues: s.Leagues,
	}
	for _, p := range s.Predictions {
		doc.Predictions = append(doc.Predictions, prediction{
			OwnerID: p.OwnerID, RaceID: p.RaceID, SubmittedAt: p.SubmittedAt, Drivers: p.DriverIDs,
		})
	}
	for _, r := range s.Results {
		doc.Results = append(doc.Results, result{RaceID: r.RaceID, Drivers: r.DriverIDs})
	}
	for _, e := range s.Standings {
		doc.Standings = append(doc.Standings, standing{Rank: e.Rank, TeamID: e.TeamID, Points: e.Points})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// Save writes s to path, replacing the file.
func Save(path string, s consistency.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := Encode(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}
