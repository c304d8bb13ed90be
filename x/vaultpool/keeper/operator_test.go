package keeper

import (
	"testing"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// TestOperatorDefaultsToAuthority tests that the construction-time
// authority holds the role until a handover completes
func TestOperatorDefaultsToAuthority(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	if got := k.Operator(ctx); got != operatorAddr {
		t.Errorf("expected operator %s, got %s", operatorAddr, got)
	}
	if !k.IsOperator(ctx, operatorAddr) {
		t.Error("authority must hold the operator role")
	}
	if k.IsOperator(ctx, userA) {
		t.Error("userA must not hold the operator role")
	}
	if k.PendingOperator(ctx) != "" {
		t.Error("expected no pending operator")
	}
}

// TestOperatorHandover tests the two-step transfer
func TestOperatorHandover(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	if err := k.TransferOperator(ctx, operatorAddr, userA); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	// The role has not moved yet
	if k.Operator(ctx) != operatorAddr {
		t.Error("role must not move before acceptance")
	}
	if k.PendingOperator(ctx) != userA {
		t.Errorf("expected pending operator %s, got %s", userA, k.PendingOperator(ctx))
	}

	if err := k.AcceptOperator(ctx, userA); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if k.Operator(ctx) != userA {
		t.Errorf("expected operator %s after acceptance, got %s", userA, k.Operator(ctx))
	}
	if k.PendingOperator(ctx) != "" {
		t.Error("expected pending cleared after acceptance")
	}

	// The old operator lost the role
	if k.IsOperator(ctx, operatorAddr) {
		t.Error("old operator must lose the role")
	}
}

// TestOperatorHandoverErrors tests rejected transfers and acceptances
func TestOperatorHandoverErrors(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	// Only the operator can start a handover
	if err := k.TransferOperator(ctx, userA, userB); !types.ErrUnauthorized.Is(err) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// Nothing pending to accept
	if err := k.AcceptOperator(ctx, userA); !types.ErrNoPendingOperator.Is(err) {
		t.Errorf("expected ErrNoPendingOperator, got %v", err)
	}

	// Only the pending operator can accept
	if err := k.TransferOperator(ctx, operatorAddr, userA); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := k.AcceptOperator(ctx, userB); !types.ErrUnauthorized.Is(err) {
		t.Errorf("expected ErrUnauthorized for wrong acceptor, got %v", err)
	}
}

// TestNewOperatorGainsEmergencyPower tests that emergency control follows
// the role
func TestNewOperatorGainsEmergencyPower(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	mustDeposit(t, k, ctx, userB, "morpho-usdc", 1000)

	if err := k.TransferOperator(ctx, operatorAddr, userA); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := k.AcceptOperator(ctx, userA); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// Old operator can no longer trigger
	if _, err := k.TriggerEmergency(ctx, operatorAddr, "morpho-usdc"); !types.ErrUnauthorized.Is(err) {
		t.Errorf("expected ErrUnauthorized for old operator, got %v", err)
	}

	// New operator can
	if _, err := k.TriggerEmergency(ctx, userA, "morpho-usdc"); err != nil {
		t.Errorf("new operator trigger failed: %v", err)
	}
}
