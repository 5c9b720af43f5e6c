package scoring_test

import (
	"errors"
	"testing"

	scoring "github.com/okian/prixsix/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	b := scoring.Breakdown{
		Entries: []scoring.Entry{
			{Name: "Verstappen", Points: 6},
			{Name: "Hamilton", Points: 4},
			{Name: "Alonso", Points: 0},
		},
		HasBonus: true,
		Bonus:    10,
	}
	assert.Equal(t, "Verstappen+6, Hamilton+4, Alonso+0, Bonus+10", scoring.Encode(b))
	assert.Equal(t, 20, b.Sum())

	b.HasBonus = false
	assert.Equal(t, "Verstappen+6, Hamilton+4, Alonso+0", scoring.Encode(b))
}

func TestDecodeRoundTrip(t *testing.T) {
	inputs := []string{
		"Verstappen+6, Hamilton+4, Leclerc+3, Norris+2, Russell+0, Piastri+6, Bonus+10",
		"Kimi Antonelli+4, Oliver Bearman+0",
		"Verstappen+6",
	}
	for _, in := range inputs {
		b, err := scoring.Decode(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, scoring.Encode(b))
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sum      int
		bonus    bool
		entries  int
		wantFail bool
	}{
		{name: "full", input: "A+6, B+4, C+3, D+2, E+0, F+6, Bonus+10", sum: 31, bonus: true, entries: 6},
		{name: "tight separators", input: "A+6,B+4", sum: 10, entries: 2},
		{name: "lowercase bonus", input: "A+6, bonus+10", sum: 16, bonus: true, entries: 1},
		{name: "plus inside name", input: "Mr+Plus+3", sum: 3, entries: 1},
		{name: "empty", input: "", sum: 0, entries: 0},
		{name: "missing points", input: "A+6, B", wantFail: true},
		{name: "negative points", input: "A+-2", wantFail: true},
		{name: "double bonus", input: "A+1, Bonus+10, Bonus+10", wantFail: true},
		{name: "trailing comma", input: "A+1,", wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := scoring.Decode(tt.input)
			if tt.wantFail {
				require.Error(t, err)
				assert.True(t, errors.Is(err, scoring.ErrMalformedBreakdown))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sum, b.Sum())
			assert.Equal(t, tt.bonus, b.HasBonus)
			assert.Len(t, b.Entries, tt.entries)
		})
	}
}

func TestBreakdownPoints(t *testing.T) {
	b, err := scoring.Decode("Verstappen+6, Hamilton+4")
	require.NoError(t, err)

	pts, ok := b.Points("hamilton")
	assert.True(t, ok)
	assert.Equal(t, 4, pts)

	_, ok = b.Points("Norris")
	assert.False(t, ok)
}
