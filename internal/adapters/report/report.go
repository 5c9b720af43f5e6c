package report

import (
	"io"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
)

// Reporter renders engine output.
type Reporter interface {
	Summary(sum consistency.Summary) error
	Race(u standings.Update) error
	Standings(entries []types.Entry) error
}

// New returns the JSON reporter when asJSON is set, the console reporter
// otherwise.
func New(out io.Writer, asJSON, verbose, colorize bool) Reporter {
	if asJSON {
		return NewJSON(out, true)
	}
	return NewConsole(out, verbose, colorize)
}
