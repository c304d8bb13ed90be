package keeper

import (
	"testing"

	"cosmossdk.io/math"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// TestWithdrawAtCost tests a flat-rate withdrawal: no profit, no fee,
// assets returned equal the cost basis slice
func TestWithdrawAtCost(t *testing.T) {
	k, ctx, _, bank := setupKeeper(t)
	enableFee(t, k, ctx, "0.02")

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	record, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(400), "")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	if !record.Assets.Equal(math.NewInt(400)) {
		t.Errorf("expected 400 assets, got %s", record.Assets)
	}
	if !record.Fee.IsZero() {
		t.Errorf("expected zero fee without profit, got %s", record.Fee)
	}
	if !bank.received(userA).Equal(math.NewInt(400)) {
		t.Errorf("expected userA paid 400, got %s", bank.received(userA))
	}

	position := k.GetPosition(ctx, "morpho-usdc", userA)
	if !position.Shares.Equal(math.NewInt(600)) {
		t.Errorf("expected 600 shares left, got %s", position.Shares)
	}
	if !position.DepositedCostBasis.Equal(math.NewInt(600)) {
		t.Errorf("expected 600 basis left, got %s", position.DepositedCostBasis)
	}

	pool := k.GetPool(ctx, "morpho-usdc")
	if !pool.TotalShares.Equal(math.NewInt(600)) {
		t.Errorf("expected pool total 600, got %s", pool.TotalShares)
	}
}

// TestWithdrawWithProfit tests the performance fee on realized profit
func TestWithdrawWithProfit(t *testing.T) {
	k, ctx, vault, bank := setupKeeper(t)
	enableFee(t, k, ctx, "0.02")

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	// 10% appreciation: 1000 shares now redeem for 1100
	vault.setRate("1.1")

	record, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(1000), "")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	// profit 100, fee floor(100 * 0.02) = 2, net 1098
	if !record.Fee.Equal(math.NewInt(2)) {
		t.Errorf("expected fee 2, got %s", record.Fee)
	}
	if !record.Assets.Equal(math.NewInt(1098)) {
		t.Errorf("expected net 1098, got %s", record.Assets)
	}
	if !bank.received(userA).Equal(math.NewInt(1098)) {
		t.Errorf("expected userA paid 1098, got %s", bank.received(userA))
	}
	if !bank.received(feeCollector).Equal(math.NewInt(2)) {
		t.Errorf("expected fee collector paid 2, got %s", bank.received(feeCollector))
	}
}

// TestWithdrawFeeFloors tests that the fee is floored, not rounded
func TestWithdrawFeeFloors(t *testing.T) {
	k, ctx, vault, _ := setupKeeper(t)
	enableFee(t, k, ctx, "0.02")

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 100)

	// 100 shares redeem for 199: profit 99, fee floor(1.98) = 1
	vault.setRate("1.99")

	record, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(100), "")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !record.Fee.Equal(math.NewInt(1)) {
		t.Errorf("expected floored fee 1, got %s", record.Fee)
	}
	if !record.Assets.Equal(math.NewInt(198)) {
		t.Errorf("expected net 198, got %s", record.Assets)
	}
}

// TestWithdrawFeeDisabled tests that profit is untaxed while the fee
// config is disabled
func TestWithdrawFeeDisabled(t *testing.T) {
	k, ctx, vault, bank := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)
	vault.setRate("1.5")

	record, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(1000), "")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !record.Fee.IsZero() {
		t.Errorf("expected zero fee while disabled, got %s", record.Fee)
	}
	if !record.Assets.Equal(math.NewInt(1500)) {
		t.Errorf("expected net 1500, got %s", record.Assets)
	}
	if !bank.received(feeCollector).IsZero() {
		t.Error("fee collector must receive nothing while disabled")
	}
}

// TestWithdrawAtLoss tests that losses are borne in full with no fee
func TestWithdrawAtLoss(t *testing.T) {
	k, ctx, vault, _ := setupKeeper(t)
	enableFee(t, k, ctx, "0.02")

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	// Vault lost 20%
	vault.setRate("0.8")

	record, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(1000), "")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !record.Fee.IsZero() {
		t.Errorf("expected zero fee on a loss, got %s", record.Fee)
	}
	if !record.Assets.Equal(math.NewInt(800)) {
		t.Errorf("expected net 800, got %s", record.Assets)
	}
}

// TestWithdrawPartialBasisFloor tests the average-cost basis slice,
// including the floor on uneven division
func TestWithdrawPartialBasisFloor(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	// floor(1000 * 333 / 1000) = 333 basis removed
	if _, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(333), ""); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	position := k.GetPosition(ctx, "morpho-usdc", userA)
	if !position.Shares.Equal(math.NewInt(667)) {
		t.Errorf("expected 667 shares, got %s", position.Shares)
	}
	if !position.DepositedCostBasis.Equal(math.NewInt(667)) {
		t.Errorf("expected 667 basis, got %s", position.DepositedCostBasis)
	}

	// A full exit drains the remainder exactly, no dust left behind
	if _, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(667), ""); err != nil {
		t.Fatalf("final withdraw failed: %v", err)
	}
	position = k.GetPosition(ctx, "morpho-usdc", userA)
	if !position.Shares.IsZero() || !position.DepositedCostBasis.IsZero() {
		t.Errorf("expected empty position, got shares=%s basis=%s",
			position.Shares, position.DepositedCostBasis)
	}
}

// TestWithdrawErrors tests the rejection paths
func TestWithdrawErrors(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	// Unknown pool
	_, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(1), "")
	if !types.ErrPoolNotFound.Is(err) {
		t.Errorf("expected ErrPoolNotFound, got %v", err)
	}

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	// Zero shares
	_, err = k.Withdraw(ctx, userA, "morpho-usdc", math.ZeroInt(), "")
	if !types.ErrInvalidAmount.Is(err) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	// More than held
	_, err = k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(1001), "")
	if !types.ErrInsufficientShares.Is(err) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}

	// Never deposited
	_, err = k.Withdraw(ctx, userB, "morpho-usdc", math.NewInt(1), "")
	if !types.ErrInsufficientShares.Is(err) {
		t.Errorf("expected ErrInsufficientShares for stranger, got %v", err)
	}

	// Frozen pool
	if _, err := k.TriggerEmergency(ctx, operatorAddr, "morpho-usdc"); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	_, err = k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(100), "")
	if !types.ErrPoolFrozen.Is(err) {
		t.Errorf("expected ErrPoolFrozen, got %v", err)
	}
}

// TestWithdrawTransferFailureRollsBack tests that a failed payout leaves
// the ledger untouched
func TestWithdrawTransferFailureRollsBack(t *testing.T) {
	k, ctx, _, bank := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	bank.failSend = true
	_, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(400), "")
	if !types.ErrTransferFailed.Is(err) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	position := k.GetPosition(ctx, "morpho-usdc", userA)
	if !position.Shares.Equal(math.NewInt(1000)) {
		t.Errorf("expected shares untouched at 1000, got %s", position.Shares)
	}
	pool := k.GetPool(ctx, "morpho-usdc")
	if !pool.TotalShares.Equal(math.NewInt(1000)) {
		t.Errorf("expected pool total untouched at 1000, got %s", pool.TotalShares)
	}
	if len(k.GetUserRecords(ctx, userA, types.RecordKindWithdrawal)) != 0 {
		t.Error("failed withdrawal must not write a record")
	}
}

// TestWithdrawPayoutFundedByRedemption tests that redemption proceeds land
// in module custody, so a payout above cumulative deposits still clears
func TestWithdrawPayoutFundedByRedemption(t *testing.T) {
	k, ctx, vault, bank := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	// The vault doubled; the payout is twice what was ever deposited
	vault.setRate("2.0")

	record, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(1000), "")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !record.Assets.Equal(math.NewInt(2000)) {
		t.Errorf("expected net 2000, got %s", record.Assets)
	}
	if !bank.received(userA).Equal(math.NewInt(2000)) {
		t.Errorf("expected userA paid 2000, got %s", bank.received(userA))
	}

	// Custody conserved: assets left for the vault at deposit time and came
	// back in full at redemption time
	if !bank.custody().IsZero() {
		t.Errorf("expected empty module custody after full exit, got %s", bank.custody())
	}
}

// TestWithdrawToReceiver tests redirecting the payout
func TestWithdrawToReceiver(t *testing.T) {
	k, ctx, _, bank := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)

	if _, err := k.Withdraw(ctx, userA, "morpho-usdc", math.NewInt(250), otherReceiver); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !bank.received(otherReceiver).Equal(math.NewInt(250)) {
		t.Errorf("expected receiver paid 250, got %s", bank.received(otherReceiver))
	}
	if !bank.received(userA).IsZero() {
		t.Error("withdrawer must not be paid when a receiver is set")
	}
}
