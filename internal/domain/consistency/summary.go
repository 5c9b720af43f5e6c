package consistency

import "time"

// Summary aggregates one run of every validator.
type Summary struct {
	CorrelationID string        `json:"correlationId"`
	Timestamp     time.Time     `json:"timestamp"`
	Results       []CheckResult `json:"results"`
	Passed        int           `json:"passed"`
	Warnings      int           `json:"warnings"`
	Errors        int           `json:"errors"`
}

// Status is the worst status across categories.
func (s Summary) Status() Status {
	switch {
	case s.Errors > 0:
		return StatusError
	case s.Warnings > 0:
		return StatusWarning
	}
	return StatusPass
}

// Result returns the result of one category.
func (s Summary) Result(cat Category) (CheckResult, bool) {
	for _, r := range s.Results {
		if r.Category == cat {
			return r, true
		}
	}
	return CheckResult{}, false
}

// Run executes every validator over one snapshot. Passed, Warnings and
// Errors count categories by status.
func (c *Checker) Run(s Snapshot) Summary {
	ix := c.index(s)
	sum := Summary{
		CorrelationID: c.newID(),
		Timestamp:     c.now(),
	}

	checks := []func(*index) CheckResult{
		c.checkUsers,
		c.checkDrivers,
		c.checkRaces,
		c.checkPredictions,
		c.checkTeamCoverage,
		c.checkResults,
		c.checkScores,
		c.checkStandings,
		c.checkLeagues,
	}
	for _, check := range checks {
		res := check(ix)
		switch res.Status {
		case StatusError:
			sum.Errors++
		case StatusWarning:
			sum.Warnings++
		default:
			sum.Passed++
		}
		sum.Results = append(sum.Results, res)
	}

	return sum
}
