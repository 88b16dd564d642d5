// Copyright 2024, CityPair, Inc.

package migrate

import (
	"fmt"
	"io"
)

// A Plan is the literal sequence of change actions between two points on the
// chain, produced without a database connection. Plans are used to review
// migrations before running them, or to run them by hand against databases
// that are not reachable at plan time.
type Plan struct {
	Upgrade bool // forward (true) or reverse (false) direction
	Entries []PlanEntry
}

// A PlanEntry is one change-set's worth of a Plan.
type PlanEntry struct {
	ID         string
	Name       string
	Statements []string // the change-set's forward or reverse statements
	Version    string   // the id recorded as current after this entry, empty = none
}

// UpgradePlan plans the forward path from the state recorded as from (empty =
// base) to target (TargetHead or a change-set id).
func UpgradePlan(chain *Chain, from, target string) (Plan, error) {
	csets, err := chain.Forward(from, target)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Upgrade: true}
	for _, cs := range csets {
		plan.Entries = append(plan.Entries, PlanEntry{
			ID:         cs.ID,
			Name:       cs.Name,
			Statements: cs.Up,
			Version:    cs.ID,
		})
	}
	return plan, nil
}

// DowngradePlan plans the reverse path from the state recorded as from to
// target (TargetBase or a change-set id).
func DowngradePlan(chain *Chain, from, target string) (Plan, error) {
	csets, err := chain.Backward(from, target)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{}
	for _, cs := range csets {
		plan.Entries = append(plan.Entries, PlanEntry{
			ID:         cs.ID,
			Name:       cs.Name,
			Statements: cs.Down,
			Version:    cs.PrevID,
		})
	}
	return plan, nil
}

// Statements returns every SQL statement in the plan, in order, without the
// version bookkeeping.
func (p Plan) Statements() []string {
	var stmts []string
	for _, e := range p.Entries {
		stmts = append(stmts, e.Statements...)
	}
	return stmts
}

// Write renders the plan as an executable SQL script, including the
// schema_version bookkeeping after each change-set.
func (p Plan) Write(w io.Writer) error {
	direction := "downgrade"
	if p.Upgrade {
		direction = "upgrade"
	}
	for _, e := range p.Entries {
		if _, err := fmt.Fprintf(w, "-- %s %s %s\n", direction, e.ID, e.Name); err != nil {
			return err
		}
		for _, stmt := range e.Statements {
			if _, err := fmt.Fprintf(w, "%s;\n", stmt); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s;\n", deleteVersion); err != nil {
			return err
		}
		if e.Version != "" {
			if _, err := fmt.Fprintf(w, "INSERT INTO schema_version (version) VALUES ('%s');\n", e.Version); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
