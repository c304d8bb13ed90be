package api

import (
	"context"
	"sync"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// SimVaultKeeper is an in-memory stand-in for the external yield vault,
// used by the standalone daemon. The exchange rate is adjustable at
// runtime to simulate yield accrual or losses. Buying shares takes the
// assets out of the module's bank custody; redeeming delivers the
// redeemed amount to the recipient module, so payouts above cumulative
// deposits (realized yield) are funded.
type SimVaultKeeper struct {
	mu sync.RWMutex

	// Assets per share, per pool. Pools default to 1:1.
	rates map[string]math.LegacyDec

	// Vault shares held on behalf of each pool
	balances map[string]math.Int

	bank  *SimBankKeeper
	denom string
}

// NewSimVaultKeeper creates a simulated vault quoting 1:1 for every pool
func NewSimVaultKeeper(denom string, bank *SimBankKeeper) *SimVaultKeeper {
	return &SimVaultKeeper{
		rates:    make(map[string]math.LegacyDec),
		balances: make(map[string]math.Int),
		bank:     bank,
		denom:    denom,
	}
}

// SetRate sets the assets-per-share rate for a pool. Raising the rate
// simulates yield, lowering it simulates a loss.
func (v *SimVaultKeeper) SetRate(poolID string, rate math.LegacyDec) {
	v.mu.Lock()
	v.rates[poolID] = rate
	v.mu.Unlock()
}

func (v *SimVaultKeeper) rate(poolID string) math.LegacyDec {
	if rate, ok := v.rates[poolID]; ok {
		return rate
	}
	return math.LegacyOneDec()
}

// ExchangeAssetForShares converts assets into vault shares at the current
// rate, taking the assets out of the caller module's custody
func (v *SimVaultKeeper) ExchangeAssetForShares(ctx sdk.Context, poolID string, assets math.Int) (math.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	coins := sdk.NewCoins(sdk.NewCoin(v.denom, assets))
	if err := v.bank.debitModule(types.ModuleName, coins); err != nil {
		return math.ZeroInt(), types.ErrExchangeFailed
	}

	shares := math.LegacyNewDecFromInt(assets).Quo(v.rate(poolID)).TruncateInt()
	balance, ok := v.balances[poolID]
	if !ok {
		balance = math.ZeroInt()
	}
	v.balances[poolID] = balance.Add(shares)
	return shares, nil
}

// ExchangeSharesForAssets redeems vault shares at the current rate and
// delivers the redeemed assets to the recipient module's account
func (v *SimVaultKeeper) ExchangeSharesForAssets(ctx sdk.Context, poolID string, shares math.Int, recipientModule string) (math.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	balance, ok := v.balances[poolID]
	if !ok || balance.LT(shares) {
		return math.ZeroInt(), types.ErrExchangeFailed
	}
	v.balances[poolID] = balance.Sub(shares)

	assets := v.rate(poolID).MulInt(shares).TruncateInt()
	if assets.IsPositive() {
		v.bank.creditModule(recipientModule, sdk.NewCoins(sdk.NewCoin(v.denom, assets)))
	}
	return assets, nil
}

// PreviewSharesToAssets quotes the asset value of shares without redeeming
func (v *SimVaultKeeper) PreviewSharesToAssets(ctx sdk.Context, poolID string, shares math.Int) (math.Int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.rate(poolID).MulInt(shares).TruncateInt(), nil
}

// ShareBalance returns the vault shares held for a pool
func (v *SimVaultKeeper) ShareBalance(ctx sdk.Context, poolID string) math.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if balance, ok := v.balances[poolID]; ok {
		return balance
	}
	return math.ZeroInt()
}

// AssetDenom returns the underlying asset denom for a pool
func (v *SimVaultKeeper) AssetDenom(ctx sdk.Context, poolID string) string {
	return v.denom
}

// SimBankKeeper is an in-memory bank for the standalone daemon. User
// accounts are treated as faucets so deposits never bounce; module
// balances are tracked so claim payouts stay honest.
type SimBankKeeper struct {
	mu sync.Mutex

	moduleBalances map[string]sdk.Coins
}

// NewSimBankKeeper creates an empty simulated bank
func NewSimBankKeeper() *SimBankKeeper {
	return &SimBankKeeper{
		moduleBalances: make(map[string]sdk.Coins),
	}
}

// SendCoinsFromAccountToModule credits the module account
func (b *SimBankKeeper) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moduleBalances[recipientModule] = b.moduleBalances[recipientModule].Add(amt...)
	return nil
}

// SendCoinsFromModuleToAccount debits the module account
func (b *SimBankKeeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.moduleBalances[senderModule]
	newBalance, negative := balance.SafeSub(amt...)
	if negative {
		return types.ErrTransferFailed
	}
	b.moduleBalances[senderModule] = newBalance
	return nil
}

// creditModule adds coins to a module account, used by the simulated
// vault to deliver redemption proceeds
func (b *SimBankKeeper) creditModule(module string, amt sdk.Coins) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moduleBalances[module] = b.moduleBalances[module].Add(amt...)
}

// debitModule removes coins from a module account, used by the simulated
// vault when it takes custody of deposited assets
func (b *SimBankKeeper) debitModule(module string, amt sdk.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	newBalance, negative := b.moduleBalances[module].SafeSub(amt...)
	if negative {
		return types.ErrTransferFailed
	}
	b.moduleBalances[module] = newBalance
	return nil
}

// ModuleBalance returns the coins held by a module account
func (b *SimBankKeeper) ModuleBalance(module string) sdk.Coins {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.moduleBalances[module]
}
