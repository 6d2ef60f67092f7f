// Package report aggregates plugin results into one report per run.
//
// A [RunReport] has a setup group (results from the configuration and
// argument stages, plus skipped inputs) and one [Unit] per repository, in
// input order. Within a unit, results keep plugin registration order.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/raphi011/rbee/internal/plug"
)

// Unit holds the results for one repository.
type Unit struct {
	Path    string
	Results []plug.Result
}

// Status returns the worst status in the unit, or Success when it has no results.
func (u Unit) Status() plug.Status {
	return worstOf(u.Results)
}

// Counts tallies results per status.
type Counts struct {
	Success int `json:"success" yaml:"success"`
	Warning int `json:"warning" yaml:"warning"`
	Error   int `json:"error" yaml:"error"`
}

// Total returns the number of counted results.
func (c Counts) Total() int {
	return c.Success + c.Warning + c.Error
}

func (c *Counts) add(results []plug.Result) {
	for _, r := range results {
		switch r.Status() {
		case plug.Success:
			c.Success++
		case plug.Warning:
			c.Warning++
		case plug.Error:
			c.Error++
		}
	}
}

// RunReport collects every result of one CLI invocation.
// It is built by a single goroutine after dispatch completes.
type RunReport struct {
	ID      string
	Command string
	Started time.Time
	Setup   []plug.Result
	Units   []Unit
}

// New creates an empty report for command.
func New(command string) *RunReport {
	return &RunReport{
		ID:      uuid.NewString(),
		Command: command,
		Started: time.Now(),
	}
}

// AddSetup appends results that do not belong to a repository.
func (r *RunReport) AddSetup(results ...plug.Result) {
	r.Setup = append(r.Setup, results...)
}

// AddUnit appends the results for one repository.
func (r *RunReport) AddUnit(path string, results []plug.Result) {
	r.Units = append(r.Units, Unit{Path: path, Results: results})
}

// Overall returns the worst status across setup and all units:
// ERROR > WARNING > SUCCESS. An empty report is SUCCESS.
func (r *RunReport) Overall() plug.Status {
	worst := worstOf(r.Setup)
	for _, u := range r.Units {
		worst = plug.Worst(worst, u.Status())
	}
	return worst
}

// Counts tallies every result in the report.
func (r *RunReport) Counts() Counts {
	var c Counts
	c.add(r.Setup)
	for _, u := range r.Units {
		c.add(u.Results)
	}
	return c
}

// ExitCode returns 1 when the overall status is ERROR, otherwise 0.
func (r *RunReport) ExitCode() int {
	if r.Overall() == plug.Error {
		return 1
	}
	return 0
}

func worstOf(results []plug.Result) plug.Status {
	worst := plug.Success
	for _, res := range results {
		worst = plug.Worst(worst, res.Status())
	}
	return worst
}
