package keeper

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	storemetrics "cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// Test addresses
var (
	operatorAddr  = sdk.AccAddress([]byte("operator------------")).String()
	userA         = sdk.AccAddress([]byte("userA---------------")).String()
	userB         = sdk.AccAddress([]byte("userB---------------")).String()
	feeCollector  = sdk.AccAddress([]byte("fee-collector-------")).String()
	otherReceiver = sdk.AccAddress([]byte("receiver------------")).String()
)

const testDenom = "uusdc"

// mockVault simulates the external yield vault with an adjustable
// assets-per-share rate and switchable failures. Buying shares takes the
// assets out of module custody; redeeming delivers the redeemed amount
// back into it, so module custody always matches outstanding liabilities.
type mockVault struct {
	rate     math.LegacyDec
	balances map[string]math.Int
	bank     *mockBank

	failBuy  bool
	failSell bool
}

func newMockVault(bank *mockBank) *mockVault {
	return &mockVault{
		rate:     math.LegacyOneDec(),
		balances: make(map[string]math.Int),
		bank:     bank,
	}
}

func (v *mockVault) setRate(rate string) {
	v.rate = math.LegacyMustNewDecFromStr(rate)
}

func (v *mockVault) balance(poolID string) math.Int {
	if b, ok := v.balances[poolID]; ok {
		return b
	}
	return math.ZeroInt()
}

func (v *mockVault) ExchangeAssetForShares(ctx sdk.Context, poolID string, assets math.Int) (math.Int, error) {
	if v.failBuy {
		return math.ZeroInt(), types.ErrExchangeFailed
	}
	shares := math.LegacyNewDecFromInt(assets).Quo(v.rate).TruncateInt()
	v.balances[poolID] = v.balance(poolID).Add(shares)
	v.bank.moduleBalance = v.bank.moduleBalance.Sub(sdk.NewCoin(testDenom, assets))
	return shares, nil
}

func (v *mockVault) ExchangeSharesForAssets(ctx sdk.Context, poolID string, shares math.Int, recipientModule string) (math.Int, error) {
	if v.failSell {
		return math.ZeroInt(), types.ErrExchangeFailed
	}
	if v.balance(poolID).LT(shares) {
		return math.ZeroInt(), types.ErrExchangeFailed
	}
	v.balances[poolID] = v.balance(poolID).Sub(shares)
	assets := v.rate.MulInt(shares).TruncateInt()
	if assets.IsPositive() {
		v.bank.moduleBalance = v.bank.moduleBalance.Add(sdk.NewCoin(testDenom, assets))
	}
	return assets, nil
}

func (v *mockVault) PreviewSharesToAssets(ctx sdk.Context, poolID string, shares math.Int) (math.Int, error) {
	return v.rate.MulInt(shares).TruncateInt(), nil
}

func (v *mockVault) ShareBalance(ctx sdk.Context, poolID string) math.Int {
	return v.balance(poolID)
}

func (v *mockVault) AssetDenom(ctx sdk.Context, poolID string) string {
	return testDenom
}

// mockBank tracks module custody and per-account payouts. User accounts
// act as faucets so deposits never bounce.
type mockBank struct {
	moduleBalance sdk.Coins
	accounts      map[string]sdk.Coins

	failSend bool
}

func newMockBank() *mockBank {
	return &mockBank{
		moduleBalance: sdk.NewCoins(),
		accounts:      make(map[string]sdk.Coins),
	}
}

func (b *mockBank) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	if b.failSend {
		return types.ErrTransferFailed
	}
	b.moduleBalance = b.moduleBalance.Add(amt...)
	return nil
}

func (b *mockBank) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	if b.failSend {
		return types.ErrTransferFailed
	}
	newBalance, negative := b.moduleBalance.SafeSub(amt...)
	if negative {
		return types.ErrTransferFailed
	}
	b.moduleBalance = newBalance
	addr := recipientAddr.String()
	b.accounts[addr] = b.accounts[addr].Add(amt...)
	return nil
}

// received returns how much of the test denom an account was paid
func (b *mockBank) received(addr string) math.Int {
	return b.accounts[addr].AmountOf(testDenom)
}

// custody returns the module account balance of the test denom
func (b *mockBank) custody() math.Int {
	return b.moduleBalance.AmountOf(testDenom)
}

// setupKeeper builds a keeper backed by an in-memory IAVL store
func setupKeeper(t *testing.T) (*Keeper, sdk.Context, *mockVault, *mockBank) {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), storemetrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}

	cdc := codec.NewProtoCodec(codectypes.NewInterfaceRegistry())
	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())

	bank := newMockBank()
	vault := newMockVault(bank)
	k := NewKeeper(cdc, storeKey, vault, bank, operatorAddr, log.NewNopLogger())

	return k, ctx, vault, bank
}

// enableFee turns on the performance fee at the given decimal rate
func enableFee(t *testing.T, k *Keeper, ctx sdk.Context, rate string) {
	t.Helper()
	config := types.FeeConfig{
		Recipient: feeCollector,
		Rate:      math.LegacyMustNewDecFromStr(rate),
		Enabled:   true,
	}
	if err := k.SetFeeConfig(ctx, operatorAddr, config); err != nil {
		t.Fatalf("failed to enable fee: %v", err)
	}
}

func mustDeposit(t *testing.T, k *Keeper, ctx sdk.Context, user, poolID string, amount int64) *types.LedgerRecord {
	t.Helper()
	record, err := k.Deposit(ctx, user, poolID, math.NewInt(amount), "")
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	return record
}

func TestKeeperStoreRoundTrip(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	pool := types.NewPool("morpho-usdc", testDenom)
	pool.TotalShares = math.NewInt(42)
	k.SetPool(ctx, pool)

	got := k.GetPool(ctx, "morpho-usdc")
	if got == nil {
		t.Fatal("expected pool, got nil")
	}
	if !got.TotalShares.Equal(math.NewInt(42)) {
		t.Errorf("expected total shares 42, got %s", got.TotalShares)
	}
	if got.AssetDenom != testDenom {
		t.Errorf("expected denom %s, got %s", testDenom, got.AssetDenom)
	}

	if k.GetPool(ctx, "unknown") != nil {
		t.Error("expected nil for unknown pool")
	}
}

func TestGetPositionImplicitZero(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	position := k.GetPosition(ctx, "morpho-usdc", userA)
	if position == nil {
		t.Fatal("expected implicit zero position, got nil")
	}
	if !position.Shares.IsZero() {
		t.Errorf("expected zero shares, got %s", position.Shares)
	}
	if !position.DepositedCostBasis.IsZero() {
		t.Errorf("expected zero cost basis, got %s", position.DepositedCostBasis)
	}
}

func TestRecordUserIndex(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	mustDeposit(t, k, ctx, userA, "morpho-usdc", 1000)
	mustDeposit(t, k, ctx, userA, "morpho-usdc", 500)
	mustDeposit(t, k, ctx, userB, "morpho-usdc", 700)

	records := k.GetUserRecords(ctx, userA, "")
	if len(records) != 2 {
		t.Fatalf("expected 2 records for userA, got %d", len(records))
	}

	deposits := k.GetUserRecords(ctx, userA, types.RecordKindDeposit)
	if len(deposits) != 2 {
		t.Errorf("expected 2 deposit records, got %d", len(deposits))
	}

	withdrawals := k.GetUserRecords(ctx, userA, types.RecordKindWithdrawal)
	if len(withdrawals) != 0 {
		t.Errorf("expected 0 withdrawal records, got %d", len(withdrawals))
	}
}
