// Copyright 2024, CityPair, Inc.

// Package migrate brings a database's schema into alignment with the ordered
// chain of authored change-sets, exactly once per change-set. Change-sets form
// a singly-linked list: each one names its predecessor, terminating at the
// empty id for the first change-set. The single current change-set id is
// recorded in the schema_version table and updated in the same transaction as
// each application, so a change-set is either fully applied and recorded, or
// not applied and not recorded.
package migrate

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Targets accepted by Runner.Upgrade and Runner.Downgrade, in addition to
// explicit change-set ids.
const (
	// TargetHead is the most recent change-set in the chain.
	TargetHead = "head"

	// TargetBase is the empty initial state, before the first change-set.
	TargetBase = "base"

	// TargetPrev reverts exactly one change-set.
	TargetPrev = "-1"
)

// A Changeset is one atomic, ordered unit of schema modification. Up and Down
// are literal SQL statements; Down statements must be the structural inverse
// of Up statements, in reverse order (drop indexes before their tables).
type Changeset struct {
	ID     string   // unique id, ex: "20240606000000"
	PrevID string   // predecessor's id, empty for the first change-set
	Name   string   // short description, ex: "create_users"
	Up     []string // forward statements
	Down   []string // reverse statements
}

// A Chain is the validated, totally ordered change-set list. Build one with
// NewChain; a Chain is never mutated after construction.
type Chain struct {
	ordered []Changeset
	index   map[string]int // id => position in ordered
}

// NewChain links changesets into a chain and validates that the chain is
// strictly linear: exactly one root (empty PrevID), unique ids, and at most
// one successor per change-set. A branching or broken chain is a configuration
// error; NewChain fails fast rather than silently picking one branch.
func NewChain(changesets []Changeset) (*Chain, error) {
	if len(changesets) == 0 {
		return nil, fmt.Errorf("no changesets")
	}

	byID := map[string]Changeset{}
	next := map[string]string{} // prev id => successor id
	var rootID string
	for _, cs := range changesets {
		if cs.ID == "" {
			return nil, fmt.Errorf("changeset %q has no id", cs.Name)
		}
		if _, ok := byID[cs.ID]; ok {
			return nil, fmt.Errorf("duplicate changeset id %s", cs.ID)
		}
		byID[cs.ID] = cs

		if cs.PrevID == "" {
			if rootID != "" {
				return nil, fmt.Errorf("multiple root changesets: %s and %s", rootID, cs.ID)
			}
			rootID = cs.ID
			continue
		}
		if successor, ok := next[cs.PrevID]; ok {
			return nil, fmt.Errorf("branching chain: changesets %s and %s both follow %s",
				successor, cs.ID, cs.PrevID)
		}
		next[cs.PrevID] = cs.ID
	}
	if rootID == "" {
		return nil, fmt.Errorf("no root changeset (one changeset must have an empty predecessor)")
	}

	// Walk the chain from the root. Every changeset must be reachable and
	// every predecessor must exist.
	for _, cs := range changesets {
		if cs.PrevID != "" {
			if _, ok := byID[cs.PrevID]; !ok {
				return nil, fmt.Errorf("changeset %s references unknown predecessor %s", cs.ID, cs.PrevID)
			}
		}
	}
	c := &Chain{
		index: map[string]int{},
	}
	for id := rootID; id != ""; id = next[id] {
		c.index[id] = len(c.ordered)
		c.ordered = append(c.ordered, byID[id])
	}
	if len(c.ordered) != len(changesets) {
		return nil, fmt.Errorf("broken chain: only %d of %d changesets are reachable from root %s",
			len(c.ordered), len(changesets), rootID)
	}
	return c, nil
}

// Head returns the id of the last change-set in the chain.
func (c *Chain) Head() string {
	return c.ordered[len(c.ordered)-1].ID
}

// Changesets returns the change-sets in chain order.
func (c *Chain) Changesets() []Changeset {
	ordered := make([]Changeset, len(c.ordered))
	copy(ordered, c.ordered)
	return ordered
}

// PrevOf returns the predecessor id of the given change-set, or the empty
// string for the first change-set.
func (c *Chain) PrevOf(id string) (string, error) {
	i, ok := c.index[id]
	if !ok {
		return "", fmt.Errorf("unknown changeset id %s", id)
	}
	return c.ordered[i].PrevID, nil
}

// Forward returns the change-sets to apply, in order, to move from the state
// recorded as from (empty = base) to target (TargetHead or an id). The result
// is empty when from already equals target.
func (c *Chain) Forward(from, target string) ([]Changeset, error) {
	start := 0 // position of the first changeset to apply
	if from != "" {
		i, ok := c.index[from]
		if !ok {
			return nil, fmt.Errorf("database is at unknown changeset %s; it was migrated by a different chain", from)
		}
		start = i + 1
	}

	if target == TargetHead || target == "" {
		target = c.Head()
	}
	end, ok := c.index[target]
	if !ok {
		return nil, fmt.Errorf("unknown target changeset %s", target)
	}
	if end < start-1 {
		return nil, fmt.Errorf("target changeset %s is older than current changeset %s; use downgrade", target, from)
	}
	if end == start-1 {
		return nil, nil // already at target
	}
	return c.ordered[start : end+1], nil
}

// Backward returns the change-sets to revert, newest first, to move from the
// state recorded as from to target (TargetBase or an id). The target
// change-set itself stays applied.
func (c *Chain) Backward(from, target string) ([]Changeset, error) {
	if from == "" {
		if target == TargetBase || target == "" {
			return nil, nil // nothing applied, nothing to revert
		}
		return nil, fmt.Errorf("cannot downgrade to %s: no changesets are applied", target)
	}
	start, ok := c.index[from]
	if !ok {
		return nil, fmt.Errorf("database is at unknown changeset %s; it was migrated by a different chain", from)
	}

	end := -1 // position of the last changeset that stays applied
	if target != TargetBase && target != "" {
		i, ok := c.index[target]
		if !ok {
			return nil, fmt.Errorf("unknown target changeset %s", target)
		}
		if i > start {
			return nil, fmt.Errorf("target changeset %s is newer than current changeset %s; use upgrade", target, from)
		}
		end = i
	}

	var csets []Changeset
	for i := start; i > end; i-- {
		csets = append(csets, c.ordered[i])
	}
	return csets, nil
}

// A Store persists change-set applications. Its implementation wraps each
// change-set in one transaction and serializes concurrent runners (see
// NewDBStore).
type Store interface {
	// Init creates the schema_version tracking table if it does not exist.
	Init() error

	// Lock acquires an exclusive migration lock. A second runner blocks
	// until the first finishes or fails cleanly; it never applies a
	// change-set twice.
	Lock() error

	// Unlock releases the migration lock.
	Unlock() error

	// Current returns the recorded current change-set id, or the empty
	// string when no change-set has been applied.
	Current() (string, error)

	// Apply executes the change-set's Up statements and records its id as
	// current.
	Apply(Changeset) error

	// Revert executes the change-set's Down statements and records its
	// predecessor's id as current.
	Revert(Changeset) error
}

// A Runner applies and reverts change-sets against a Store.
type Runner struct {
	chain  *Chain
	store  Store
	logger *log.Entry
}

func NewRunner(chain *Chain, store Store) *Runner {
	return &Runner{
		chain:  chain,
		store:  store,
		logger: log.WithFields(log.Fields{"component": "migrate"}),
	}
}

// Upgrade applies every change-set from the database's recorded state up to
// and including target (TargetHead or a change-set id). It returns the number
// of change-sets applied. Upgrade is a no-op when the database is already at
// target. If a change-set fails partway, it is not recorded as applied and
// Upgrade returns the error; change-sets applied before it stay applied and
// recorded.
func (r *Runner) Upgrade(target string) (int, error) {
	if err := r.store.Init(); err != nil {
		return 0, fmt.Errorf("initializing version table: %s", err)
	}
	if err := r.store.Lock(); err != nil {
		return 0, err
	}
	defer r.store.Unlock()

	current, err := r.store.Current()
	if err != nil {
		return 0, err
	}
	csets, err := r.chain.Forward(current, target)
	if err != nil {
		return 0, err
	}
	if len(csets) == 0 {
		r.logger.Infof("database is up to date at %s", displayVersion(current))
		return 0, nil
	}

	for n, cs := range csets {
		r.logger.Infof("applying changeset %s (%s)", cs.ID, cs.Name)
		if err := r.store.Apply(cs); err != nil {
			return n, fmt.Errorf("changeset %s (%s): %s", cs.ID, cs.Name, err)
		}
	}
	r.logger.Infof("applied %d changesets, database is now at %s", len(csets), csets[len(csets)-1].ID)
	return len(csets), nil
}

// Downgrade reverts change-sets from the database's recorded state back to
// target: TargetPrev reverts one change-set, TargetBase reverts everything,
// and a change-set id reverts down to (but not including) that change-set.
// It returns the number of change-sets reverted.
func (r *Runner) Downgrade(target string) (int, error) {
	if err := r.store.Init(); err != nil {
		return 0, fmt.Errorf("initializing version table: %s", err)
	}
	if err := r.store.Lock(); err != nil {
		return 0, err
	}
	defer r.store.Unlock()

	current, err := r.store.Current()
	if err != nil {
		return 0, err
	}
	if target == TargetPrev {
		if current == "" {
			r.logger.Info("no changesets are applied, nothing to revert")
			return 0, nil
		}
		target, err = r.chain.PrevOf(current)
		if err != nil {
			return 0, err
		}
		if target == "" {
			target = TargetBase
		}
	}
	csets, err := r.chain.Backward(current, target)
	if err != nil {
		return 0, err
	}
	if len(csets) == 0 {
		r.logger.Infof("database is already at %s", displayVersion(current))
		return 0, nil
	}

	for n, cs := range csets {
		r.logger.Infof("reverting changeset %s (%s)", cs.ID, cs.Name)
		if err := r.store.Revert(cs); err != nil {
			return n, fmt.Errorf("changeset %s (%s): %s", cs.ID, cs.Name, err)
		}
	}
	r.logger.Infof("reverted %d changesets, database is now at %s",
		len(csets), displayVersion(csets[len(csets)-1].PrevID))
	return len(csets), nil
}

func displayVersion(id string) string {
	if id == "" {
		return TargetBase
	}
	return id
}
