// Copyright 2024, CityPair, Inc.

package migrate_test

import (
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/citypair/matching-service/migrate"
	"github.com/citypair/matching-service/test/mock"
)

// testChangesets returns a valid three-changeset chain, deliberately out of
// order. NewChain must order it by walking the predecessor links.
func testChangesets() []migrate.Changeset {
	return []migrate.Changeset{
		{
			ID:     "v3",
			PrevID: "v2",
			Name:   "add_index",
			Up:     []string{"CREATE INDEX ix_t_a ON t (a)"},
			Down:   []string{"DROP INDEX ix_t_a ON t"},
		},
		{
			ID:   "v1",
			Name: "create_t",
			Up:   []string{"CREATE TABLE t (a INT)"},
			Down: []string{"DROP TABLE t"},
		},
		{
			ID:     "v2",
			PrevID: "v1",
			Name:   "create_u",
			Up:     []string{"CREATE TABLE u (b INT)"},
			Down:   []string{"DROP TABLE u"},
		},
	}
}

func newTestChain(t *testing.T) *migrate.Chain {
	chain, err := migrate.NewChain(testChangesets())
	if err != nil {
		t.Fatal(err)
	}
	return chain
}

// //////////////////////////////////////////////////////////////////////////
// Chain
// //////////////////////////////////////////////////////////////////////////

func TestNewChainOrder(t *testing.T) {
	chain := newTestChain(t)

	var ids []string
	for _, cs := range chain.Changesets() {
		ids = append(ids, cs.ID)
	}
	if diff := deep.Equal(ids, []string{"v1", "v2", "v3"}); diff != nil {
		t.Error(diff)
	}
	if head := chain.Head(); head != "v3" {
		t.Errorf("head = %s, expected v3", head)
	}
}

func TestNewChainEmpty(t *testing.T) {
	if _, err := migrate.NewChain([]migrate.Changeset{}); err == nil {
		t.Error("expected an error, did not get one")
	}
}

func TestNewChainBranching(t *testing.T) {
	// v2a and v2b both claim v1 as predecessor. A branching chain is a
	// configuration error; it must fail, not silently pick one branch.
	csets := []migrate.Changeset{
		{ID: "v1", Name: "root"},
		{ID: "v2a", PrevID: "v1", Name: "branch_a"},
		{ID: "v2b", PrevID: "v1", Name: "branch_b"},
	}
	_, err := migrate.NewChain(csets)
	if err == nil {
		t.Fatal("expected an error, did not get one")
	}
	if !strings.Contains(err.Error(), "branching") {
		t.Errorf("error = %s, expected a branching chain error", err)
	}
}

func TestNewChainMultipleRoots(t *testing.T) {
	csets := []migrate.Changeset{
		{ID: "v1", Name: "root_a"},
		{ID: "v2", Name: "root_b"},
	}
	if _, err := migrate.NewChain(csets); err == nil {
		t.Error("expected an error, did not get one")
	}
}

func TestNewChainDuplicateId(t *testing.T) {
	csets := []migrate.Changeset{
		{ID: "v1", Name: "root"},
		{ID: "v1", PrevID: "v1", Name: "dupe"},
	}
	if _, err := migrate.NewChain(csets); err == nil {
		t.Error("expected an error, did not get one")
	}
}

func TestNewChainUnknownPredecessor(t *testing.T) {
	csets := []migrate.Changeset{
		{ID: "v1", Name: "root"},
		{ID: "v2", PrevID: "v9", Name: "orphan"},
	}
	if _, err := migrate.NewChain(csets); err == nil {
		t.Error("expected an error, did not get one")
	}
}

func TestNewChainUnreachable(t *testing.T) {
	// v2 and v3 form a cycle that is not reachable from the root.
	csets := []migrate.Changeset{
		{ID: "v1", Name: "root"},
		{ID: "v2", PrevID: "v3", Name: "cycle_a"},
		{ID: "v3", PrevID: "v2", Name: "cycle_b"},
	}
	if _, err := migrate.NewChain(csets); err == nil {
		t.Error("expected an error, did not get one")
	}
}

func TestForward(t *testing.T) {
	chain := newTestChain(t)

	// From base to head: everything.
	csets, err := chain.Forward("", migrate.TargetHead)
	if err != nil {
		t.Fatal(err)
	}
	if len(csets) != 3 || csets[0].ID != "v1" || csets[2].ID != "v3" {
		t.Errorf("forward from base = %+v, expected v1..v3", csets)
	}

	// From the middle to head: just the tail.
	csets, err = chain.Forward("v1", migrate.TargetHead)
	if err != nil {
		t.Fatal(err)
	}
	if len(csets) != 2 || csets[0].ID != "v2" {
		t.Errorf("forward from v1 = %+v, expected v2, v3", csets)
	}

	// Already at head: no-op.
	csets, err = chain.Forward("v3", migrate.TargetHead)
	if err != nil {
		t.Fatal(err)
	}
	if len(csets) != 0 {
		t.Errorf("forward from head = %+v, expected none", csets)
	}

	// Already at an explicit target: no-op.
	csets, err = chain.Forward("v2", "v2")
	if err != nil {
		t.Fatal(err)
	}
	if len(csets) != 0 {
		t.Errorf("forward from v2 to v2 = %+v, expected none", csets)
	}

	// Unknown current version: the db was migrated by a different chain.
	if _, err := chain.Forward("v9", migrate.TargetHead); err == nil {
		t.Error("expected an error for unknown current version, did not get one")
	}

	// Unknown target.
	if _, err := chain.Forward("", "v9"); err == nil {
		t.Error("expected an error for unknown target, did not get one")
	}

	// Target older than current: that's a downgrade.
	if _, err := chain.Forward("v3", "v1"); err == nil {
		t.Error("expected an error for backward target, did not get one")
	}
}

func TestBackward(t *testing.T) {
	chain := newTestChain(t)

	// From head to base: everything, newest first.
	csets, err := chain.Backward("v3", migrate.TargetBase)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, cs := range csets {
		ids = append(ids, cs.ID)
	}
	if diff := deep.Equal(ids, []string{"v3", "v2", "v1"}); diff != nil {
		t.Error(diff)
	}

	// Down to v1: v1 itself stays applied.
	csets, err = chain.Backward("v3", "v1")
	if err != nil {
		t.Fatal(err)
	}
	if len(csets) != 2 || csets[0].ID != "v3" || csets[1].ID != "v2" {
		t.Errorf("backward to v1 = %+v, expected v3, v2", csets)
	}

	// Nothing applied: nothing to revert.
	csets, err = chain.Backward("", migrate.TargetBase)
	if err != nil {
		t.Fatal(err)
	}
	if len(csets) != 0 {
		t.Errorf("backward from base = %+v, expected none", csets)
	}

	// Target newer than current: that's an upgrade.
	if _, err := chain.Backward("v1", "v3"); err == nil {
		t.Error("expected an error for forward target, did not get one")
	}
}

// //////////////////////////////////////////////////////////////////////////
// Runner
// //////////////////////////////////////////////////////////////////////////

func TestUpgradeFromEmpty(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{}
	runner := migrate.NewRunner(chain, store)

	n, err := runner.Upgrade(migrate.TargetHead)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("applied %d changesets, expected 3", n)
	}
	if diff := deep.Equal(store.Applied, []string{"v1", "v2", "v3"}); diff != nil {
		t.Error(diff)
	}
	if store.Version != "v3" {
		t.Errorf("version = %s, expected v3", store.Version)
	}
}

func TestUpgradeIdempotent(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{}
	runner := migrate.NewRunner(chain, store)

	if _, err := runner.Upgrade(migrate.TargetHead); err != nil {
		t.Fatal(err)
	}
	// Running again must be a no-op: same version, nothing re-applied.
	n, err := runner.Upgrade(migrate.TargetHead)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("applied %d changesets on second run, expected 0", n)
	}
	if diff := deep.Equal(store.Applied, []string{"v1", "v2", "v3"}); diff != nil {
		t.Error(diff)
	}
	if store.Version != "v3" {
		t.Errorf("version = %s, expected v3", store.Version)
	}
}

func TestUpgradeToTarget(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{}
	runner := migrate.NewRunner(chain, store)

	n, err := runner.Upgrade("v2")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("applied %d changesets, expected 2", n)
	}
	if store.Version != "v2" {
		t.Errorf("version = %s, expected v2", store.Version)
	}
}

func TestUpgradeFailureNotRecorded(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{}
	store.ApplyFunc = func(cs migrate.Changeset) error {
		if cs.ID == "v2" {
			return mock.ErrMigrateStore
		}
		store.Applied = append(store.Applied, cs.ID)
		store.Version = cs.ID
		return nil
	}
	runner := migrate.NewRunner(chain, store)

	n, err := runner.Upgrade(migrate.TargetHead)
	if err == nil {
		t.Fatal("expected an error, did not get one")
	}
	if !strings.Contains(err.Error(), "v2") {
		t.Errorf("error = %s, expected it to name changeset v2", err)
	}
	if n != 1 {
		t.Errorf("applied %d changesets before failing, expected 1", n)
	}
	// The failed changeset is not recorded; v1 stays applied and recorded.
	if diff := deep.Equal(store.Applied, []string{"v1"}); diff != nil {
		t.Error(diff)
	}
	if store.Version != "v1" {
		t.Errorf("version = %s, expected v1", store.Version)
	}
}

func TestUpgradeLockFailure(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{
		LockFunc: func() error { return mock.ErrMigrateStore },
	}
	runner := migrate.NewRunner(chain, store)

	if _, err := runner.Upgrade(migrate.TargetHead); err == nil {
		t.Fatal("expected an error, did not get one")
	}
	if len(store.Applied) != 0 {
		t.Errorf("applied = %v, expected none without the lock", store.Applied)
	}
}

func TestDowngradeOne(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{Version: "v3"}
	runner := migrate.NewRunner(chain, store)

	n, err := runner.Downgrade(migrate.TargetPrev)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("reverted %d changesets, expected 1", n)
	}
	if diff := deep.Equal(store.Reverted, []string{"v3"}); diff != nil {
		t.Error(diff)
	}
	if store.Version != "v2" {
		t.Errorf("version = %s, expected v2", store.Version)
	}
}

func TestDowngradeOneFromRoot(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{Version: "v1"}
	runner := migrate.NewRunner(chain, store)

	// Reverting one step from the first changeset lands at base.
	n, err := runner.Downgrade(migrate.TargetPrev)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("reverted %d changesets, expected 1", n)
	}
	if store.Version != "" {
		t.Errorf("version = %s, expected base (empty)", store.Version)
	}
}

func TestDowngradeToBase(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{Version: "v3"}
	runner := migrate.NewRunner(chain, store)

	n, err := runner.Downgrade(migrate.TargetBase)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("reverted %d changesets, expected 3", n)
	}
	if diff := deep.Equal(store.Reverted, []string{"v3", "v2", "v1"}); diff != nil {
		t.Error(diff)
	}
	if store.Version != "" {
		t.Errorf("version = %s, expected base (empty)", store.Version)
	}
}

func TestDowngradeNothingApplied(t *testing.T) {
	chain := newTestChain(t)
	store := &mock.MigrateStore{}
	runner := migrate.NewRunner(chain, store)

	n, err := runner.Downgrade(migrate.TargetPrev)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("reverted %d changesets, expected 0", n)
	}
}

func TestRoundTrip(t *testing.T) {
	// Upgrade from empty, revert to base, upgrade again: the same
	// changesets are applied in the same order both times.
	chain := newTestChain(t)
	store := &mock.MigrateStore{}
	runner := migrate.NewRunner(chain, store)

	if _, err := runner.Upgrade(migrate.TargetHead); err != nil {
		t.Fatal(err)
	}
	if _, err := runner.Downgrade(migrate.TargetBase); err != nil {
		t.Fatal(err)
	}
	if _, err := runner.Upgrade(migrate.TargetHead); err != nil {
		t.Fatal(err)
	}

	expectedApplied := []string{"v1", "v2", "v3", "v1", "v2", "v3"}
	if diff := deep.Equal(store.Applied, expectedApplied); diff != nil {
		t.Error(diff)
	}
	if store.Version != "v3" {
		t.Errorf("version = %s, expected v3", store.Version)
	}
}
