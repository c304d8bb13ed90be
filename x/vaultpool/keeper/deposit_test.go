package keeper

import (
	"testing"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// TestDepositCreatesPool tests that the first deposit creates the pool
// implicitly and credits shares at the vault's rate
func TestDepositCreatesPool(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	record, err := k.Deposit(ctx, userA, "morpho-usdc", math.NewInt(1000), "")
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	// 1:1 rate mints shares equal to assets
	if !record.Shares.Equal(math.NewInt(1000)) {
		t.Errorf("expected 1000 shares, got %s", record.Shares)
	}
	if record.Kind != types.RecordKindDeposit {
		t.Errorf("expected deposit record, got %s", record.Kind)
	}
	if !record.Fee.IsZero() {
		t.Errorf("expected zero fee on deposit, got %s", record.Fee)
	}

	pool := k.GetPool(ctx, "morpho-usdc")
	if pool == nil {
		t.Fatal("expected pool to be created")
	}
	if !pool.TotalShares.Equal(math.NewInt(1000)) {
		t.Errorf("expected pool total shares 1000, got %s", pool.TotalShares)
	}
	if pool.Emergency {
		t.Error("new pool must not be in emergency")
	}
	if pool.AssetDenom != testDenom {
		t.Errorf("expected denom %s, got %s", testDenom, pool.AssetDenom)
	}

	position := k.GetPosition(ctx, "morpho-usdc", userA)
	if !position.Shares.Equal(math.NewInt(1000)) {
		t.Errorf("expected position shares 1000, got %s", position.Shares)
	}
	if !position.DepositedCostBasis.Equal(math.NewInt(1000)) {
		t.Errorf("expected cost basis 1000, got %s", position.DepositedCostBasis)
	}
}

// TestDepositAccumulates tests that repeat deposits accumulate shares and
// cost basis on the same position
func TestDepositAccumulates(t *testing.T) {
	k, ctx, vault, _ := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	// Vault appreciated: 2 assets per share mints half the shares
	vault.setRate("2.0")
	record := mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)
	if !record.Shares.Equal(math.NewInt(500)) {
		t.Errorf("expected 500 shares at rate 2.0, got %s", record.Shares)
	}

	position := k.GetPosition(ctx, "morpho-usdc", userA)
	if !position.Shares.Equal(math.NewInt(1500)) {
		t.Errorf("expected 1500 total shares, got %s", position.Shares)
	}
	if !position.DepositedCostBasis.Equal(math.NewInt(2000)) {
		t.Errorf("expected cost basis 2000, got %s", position.DepositedCostBasis)
	}

	pool := k.GetPool(ctx, "morpho-usdc")
	if !pool.TotalShares.Equal(math.NewInt(1500)) {
		t.Errorf("expected pool total 1500, got %s", pool.TotalShares)
	}
}

// TestDepositToReceiver tests crediting shares to a third party
func TestDepositToReceiver(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	record, err := k.Deposit(ctx, userA, "morpho-usdc", math.NewInt(1000), otherReceiver)
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if record.User != otherReceiver {
		t.Errorf("expected record user %s, got %s", otherReceiver, record.User)
	}

	if !k.GetPosition(ctx, "morpho-usdc", otherReceiver).Shares.Equal(math.NewInt(1000)) {
		t.Error("expected receiver to hold the shares")
	}
	if !k.GetPosition(ctx, "morpho-usdc", userA).Shares.IsZero() {
		t.Error("expected depositor position to stay empty")
	}
}

// TestDepositValidation tests rejected deposits
func TestDepositValidation(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	tests := []struct {
		name    string
		amount  math.Int
		wantErr *errorsmod.Error
	}{
		{"zero amount", math.ZeroInt(), types.ErrInvalidAmount},
		{"negative amount", math.NewInt(-5), types.ErrInvalidAmount},
		{"nil amount", math.Int{}, types.ErrInvalidAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := k.Deposit(ctx, userA, "morpho-usdc", tc.amount, "")
			if !tc.wantErr.Is(err) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	// Bad depositor address
	_, err := k.Deposit(ctx, "not-bech32", "morpho-usdc", math.NewInt(100), "")
	if !types.ErrTransferFailed.Is(err) {
		t.Errorf("expected transfer failure for bad address, got %v", err)
	}
}

// TestDepositRejectsMalformedPoolID tests that ids unusable as store key
// segments never reach the ledger
func TestDepositRejectsMalformedPoolID(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	for _, poolID := range []string{"", "morpho:usdc", "morpho usdc", "morpho/usdc"} {
		_, err := k.Deposit(ctx, userA, poolID, math.NewInt(1000), "")
		if !types.ErrInvalidPoolID.Is(err) {
			t.Errorf("pool id %q: expected ErrInvalidPoolID, got %v", poolID, err)
		}
	}

	// Position scans stay isolated per pool id
	mustDeposit(t, k, ctx, userA, "morpho", 100)
	mustDeposit(t, k, ctx, userA, "morpho-usdc", 100)
	if got := len(k.GetPoolPositions(ctx, "morpho")); got != 1 {
		t.Errorf("expected 1 position in pool morpho, got %d", got)
	}
}

// TestDepositFrozenPool tests that deposits bounce once a pool is frozen
func TestDepositFrozenPool(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)
	if _, err := k.TriggerEmergency(ctx, operatorAddr, "morpho-usdc"); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}

	_, err := k.Deposit(ctx, userA, "morpho-usdc", math.NewInt(100), "")
	if !types.ErrPoolFrozen.Is(err) {
		t.Errorf("expected ErrPoolFrozen, got %v", err)
	}
}

// TestDepositExchangeFailureLeavesNoState tests all-or-nothing semantics
// when the vault exchange fails
func TestDepositExchangeFailureLeavesNoState(t *testing.T) {
	k, ctx, vault, _ := setupKeeper(t)

	vault.failBuy = true
	_, err := k.Deposit(ctx, userA, "morpho-usdc", math.NewInt(1000), "")
	if !types.ErrExchangeFailed.Is(err) {
		t.Fatalf("expected ErrExchangeFailed, got %v", err)
	}

	if k.GetPool(ctx, "morpho-usdc") != nil {
		t.Error("failed deposit must not create the pool")
	}
	if !k.GetPosition(ctx, "morpho-usdc", userA).Shares.IsZero() {
		t.Error("failed deposit must not credit shares")
	}
	if len(k.GetUserRecords(ctx, userA, "")) != 0 {
		t.Error("failed deposit must not write a record")
	}
}

// TestDepositBankFailure tests that a failed custody transfer aborts the
// deposit before the vault exchange
func TestDepositBankFailure(t *testing.T) {
	k, ctx, vault, bank := setupKeeper(t)

	bank.failSend = true
	_, err := k.Deposit(ctx, userA, "morpho-usdc", math.NewInt(1000), "")
	if !types.ErrTransferFailed.Is(err) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if !vault.balance("morpho-usdc").IsZero() {
		t.Error("vault must not hold shares after a failed custody transfer")
	}
}
