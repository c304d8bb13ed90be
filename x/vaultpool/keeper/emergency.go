package keeper

import (
	"context"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// TriggerEmergency freezes a pool and converts its entire external vault
// position into a fixed claim pot. Operator only, one-way per pool.
//
// The whole balance is redeemed in a single exchange so price impact is
// not split unevenly across users, and no user can keep withdrawing on
// the normal path once others have converted to claim-pot semantics.
// From here on TotalShares and WithdrawnAssets never change: they are the
// denominator and numerator of every future claim.
func (k *Keeper) TriggerEmergency(ctx context.Context, caller, poolID string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if !k.IsOperator(sdkCtx, caller) {
		return nil, types.ErrUnauthorized
	}

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if pool.Emergency {
		return nil, types.ErrAlreadyInEmergency
	}

	cacheCtx, write := sdkCtx.CacheContext()

	// Redeem everything the wrapper holds. A zero balance (everyone exited
	// normally before the trigger) freezes an empty pot.
	withdrawn := math.ZeroInt()
	balance := k.vaultKeeper.ShareBalance(cacheCtx, poolID)
	if balance.IsPositive() {
		assets, err := k.vaultKeeper.ExchangeSharesForAssets(cacheCtx, poolID, balance, types.ModuleName)
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrExchangeFailed, err.Error())
		}
		withdrawn = assets
	}

	now := time.Now().Unix()
	pool.Emergency = true
	pool.WithdrawnAssets = withdrawn
	pool.EmergencyAt = now
	pool.UpdatedAt = now
	k.SetPool(cacheCtx, pool)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vaultpool_emergency_trigger",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("operator", caller),
			sdk.NewAttribute("withdrawn_assets", withdrawn.String()),
			sdk.NewAttribute("frozen_shares", pool.TotalShares.String()),
		),
	)
	write()

	k.logger.Info("Emergency triggered",
		"pool_id", poolID,
		"operator", caller,
		"withdrawn_assets", withdrawn.String(),
		"frozen_shares", pool.TotalShares.String(),
	)

	return pool, nil
}

// EmergencyClaim pays the claimant their proportional slice of the frozen
// pot: floor(WithdrawnAssets * shares / TotalShares). The denominator is
// the pool-wide total frozen at trigger time and is never decremented as
// others claim; decrementing it would change later claimants' fraction of
// a shrinking pot and break proportionality. The claimant's position is
// zeroed afterwards, so a second claim fails.
func (k *Keeper) EmergencyClaim(ctx context.Context, claimant, poolID string) (*types.LedgerRecord, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if !pool.Emergency {
		return nil, types.ErrNotInEmergency
	}

	position := k.GetPosition(sdkCtx, poolID, claimant)
	if !position.Shares.IsPositive() {
		return nil, types.ErrNothingToClaim
	}

	// shares > 0 implies the frozen total is positive; a zero denominator
	// here means the share ledger itself is corrupt.
	if !pool.TotalShares.IsPositive() {
		return nil, types.ErrBrokenLedger
	}

	claimantAddr, err := sdk.AccAddressFromBech32(claimant)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrTransferFailed, err.Error())
	}

	feeConfig := k.GetFeeConfig(sdkCtx)

	cacheCtx, write := sdkCtx.CacheContext()

	payout := pool.WithdrawnAssets.Mul(position.Shares).Quo(pool.TotalShares)
	fee := feeConfig.ProfitFee(payout, position.DepositedCostBasis)
	shares := position.Shares

	// Tombstone the position; pool totals stay frozen
	now := time.Now().Unix()
	position.Shares = math.ZeroInt()
	position.DepositedCostBasis = math.ZeroInt()
	position.UpdatedAt = now
	k.SetPosition(cacheCtx, position)

	if fee.IsPositive() {
		if err := k.payFee(cacheCtx, pool.AssetDenom, feeConfig.Recipient, fee); err != nil {
			return nil, err
		}
	}
	net := payout.Sub(fee)
	if net.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(pool.AssetDenom, net))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(cacheCtx, types.ModuleName, claimantAddr, coins); err != nil {
			return nil, errorsmod.Wrap(types.ErrTransferFailed, err.Error())
		}
	}

	record := types.NewLedgerRecord(types.RecordKindClaim, poolID, claimant, net, shares, fee)
	k.SetRecord(cacheCtx, record)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vaultpool_emergency_claim",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("claimant", claimant),
			sdk.NewAttribute("shares", shares.String()),
			sdk.NewAttribute("payout", payout.String()),
			sdk.NewAttribute("fee", fee.String()),
		),
	)
	write()

	k.logger.Info("Emergency claim processed",
		"pool_id", poolID,
		"claimant", claimant,
		"shares", shares.String(),
		"payout", payout.String(),
		"fee", fee.String(),
	)

	return record, nil
}
