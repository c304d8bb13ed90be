package keeper

import (
	"testing"

	"cosmossdk.io/math"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// TestPreviewLivePool tests the live preview path: a 1:1 deposit previews
// back at face value and follows the vault rate afterwards
func TestPreviewLivePool(t *testing.T) {
	k, ctx, vault, _ := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	assets, err := k.PreviewUserAssets(ctx, "morpho-usdc", userA)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !assets.Equal(math.NewInt(1000)) {
		t.Errorf("expected preview 1000, got %s", assets)
	}

	vault.setRate("1.1")
	assets, err = k.PreviewUserAssets(ctx, "morpho-usdc", userA)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !assets.Equal(math.NewInt(1100)) {
		t.Errorf("expected preview 1100 after appreciation, got %s", assets)
	}
}

// TestPreviewZeroCases tests unknown pools and empty positions
func TestPreviewZeroCases(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	// Unknown pool is zero, not an error
	assets, err := k.PreviewUserAssets(ctx, "unknown", userA)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !assets.IsZero() {
		t.Errorf("expected zero for unknown pool, got %s", assets)
	}

	// Known pool, stranger user
	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)
	assets, err = k.PreviewUserAssets(ctx, "morpho-usdc", userB)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !assets.IsZero() {
		t.Errorf("expected zero for empty position, got %s", assets)
	}
}

// TestPreviewFrozenPool tests that preview switches to the frozen
// proportional formula in emergency and ignores later vault rates
func TestPreviewFrozenPool(t *testing.T) {
	k, ctx, vault, _ := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)
	mustDeposit(t, k, ctx, userB, "morpho-usdc", 3000)
	vault.setRate("1.1")

	if _, err := k.TriggerEmergency(ctx, operatorAddr, "morpho-usdc"); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}

	// The quote is the frozen slice even if the vault rate moves later
	vault.setRate("99")

	assets, err := k.PreviewUserAssets(ctx, "morpho-usdc", userA)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !assets.Equal(math.NewInt(1100)) {
		t.Errorf("expected frozen preview 1100, got %s", assets)
	}

	assets, err = k.PreviewUserAssets(ctx, "morpho-usdc", userB)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !assets.Equal(math.NewInt(3300)) {
		t.Errorf("expected frozen preview 3300, got %s", assets)
	}
}

// TestQueryServerPools tests pool listing with pagination
func TestQueryServerPools(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	q := NewQueryServerImpl(k)

	mustDeposit(t, k, ctx, userA, "pool-a", 100)
	mustDeposit(t, k, ctx, userA, "pool-b", 100)
	mustDeposit(t, k, ctx, userA, "pool-c", 100)

	pools, total, err := q.Pools(ctx, 0, 0)
	if err != nil {
		t.Fatalf("pools query failed: %v", err)
	}
	if total != 3 || len(pools) != 3 {
		t.Errorf("expected 3 pools, got total=%d len=%d", total, len(pools))
	}

	pools, total, err = q.Pools(ctx, 1, 1)
	if err != nil {
		t.Fatalf("pools query failed: %v", err)
	}
	if total != 3 || len(pools) != 1 {
		t.Errorf("expected 1 page entry of 3, got total=%d len=%d", total, len(pools))
	}

	// Offset past the end
	pools, _, err = q.Pools(ctx, 10, 5)
	if err != nil {
		t.Fatalf("pools query failed: %v", err)
	}
	if len(pools) != 0 {
		t.Errorf("expected empty page, got %d", len(pools))
	}
}

// TestQueryServerPool tests the single pool lookup
func TestQueryServerPool(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	q := NewQueryServerImpl(k)

	_, err := q.Pool(ctx, "morpho-usdc")
	if !types.ErrPoolNotFound.Is(err) {
		t.Errorf("expected ErrPoolNotFound, got %v", err)
	}

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	pool, err := q.Pool(ctx, "morpho-usdc")
	if err != nil {
		t.Fatalf("pool query failed: %v", err)
	}
	if pool.PoolID != "morpho-usdc" {
		t.Errorf("expected pool morpho-usdc, got %s", pool.PoolID)
	}
}

// TestQueryServerPositions tests position queries, tombstones included
func TestQueryServerPositions(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	q := NewQueryServerImpl(k)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)
	mustDeposit(t, k, ctx, userB, "morpho-usdc", 500)

	// Stranger gets the implicit zero record
	position, err := q.Position(ctx, "morpho-usdc", otherReceiver)
	if err != nil {
		t.Fatalf("position query failed: %v", err)
	}
	if !position.Shares.IsZero() {
		t.Errorf("expected zero shares for stranger, got %s", position.Shares)
	}

	positions, err := q.PoolPositions(ctx, "morpho-usdc")
	if err != nil {
		t.Fatalf("positions query failed: %v", err)
	}
	if len(positions) != 2 {
		t.Errorf("expected 2 recorded positions, got %d", len(positions))
	}

	// A tombstoned position still shows up in the listing
	if _, err := k.TriggerEmergency(ctx, operatorAddr, "morpho-usdc"); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	if _, err := k.EmergencyClaim(ctx, userA, "morpho-usdc"); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	positions, err = q.PoolPositions(ctx, "morpho-usdc")
	if err != nil {
		t.Fatalf("positions query failed: %v", err)
	}
	if len(positions) != 2 {
		t.Errorf("expected tombstone kept in listing, got %d positions", len(positions))
	}
}

// TestQueryServerOperator tests the operator query
func TestQueryServerOperator(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	q := NewQueryServerImpl(k)

	current, pending, err := q.Operator(ctx)
	if err != nil {
		t.Fatalf("operator query failed: %v", err)
	}
	if current != operatorAddr || pending != "" {
		t.Errorf("expected current=%s pending empty, got current=%s pending=%s",
			operatorAddr, current, pending)
	}

	if err := k.TransferOperator(ctx, operatorAddr, userA); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	_, pending, err = q.Operator(ctx)
	if err != nil {
		t.Fatalf("operator query failed: %v", err)
	}
	if pending != userA {
		t.Errorf("expected pending %s, got %s", userA, pending)
	}
}
