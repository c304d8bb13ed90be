package keeper

import (
	"context"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// Withdraw redeems shares through the external vault on the normal path.
// The realized cost-basis portion is the average-cost slice
// floor(basis * shares / held), so partial exits preserve the average cost
// per share. A performance fee is charged only on realized profit above
// that portion, and only while the fee config is enabled.
//
// The ledger is debited before the external redeem; both run on a store
// branch committed in one step once the payout transfers succeed.
func (k *Keeper) Withdraw(ctx context.Context, withdrawer, poolID string, shares math.Int, receiver string) (*types.LedgerRecord, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if shares.IsNil() || !shares.IsPositive() {
		return nil, types.ErrInvalidAmount
	}
	if receiver == "" {
		receiver = withdrawer
	}

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if pool.Emergency {
		return nil, types.ErrPoolFrozen
	}

	position := k.GetPosition(sdkCtx, poolID, withdrawer)
	if position.Shares.LT(shares) {
		return nil, types.ErrInsufficientShares
	}

	receiverAddr, err := sdk.AccAddressFromBech32(receiver)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrTransferFailed, err.Error())
	}

	feeConfig := k.GetFeeConfig(sdkCtx)

	cacheCtx, write := sdkCtx.CacheContext()

	// Debit the ledger first
	now := time.Now().Unix()
	costPortion := position.CostBasisPortion(shares)
	position.Shares = position.Shares.Sub(shares)
	position.DepositedCostBasis = position.DepositedCostBasis.Sub(costPortion)
	position.UpdatedAt = now

	pool.TotalShares = pool.TotalShares.Sub(shares)
	pool.UpdatedAt = now

	k.SetPosition(cacheCtx, position)
	k.SetPool(cacheCtx, pool)

	// Redeem through the vault into module custody, then settle fee and payout
	assets, err := k.vaultKeeper.ExchangeSharesForAssets(cacheCtx, poolID, shares, types.ModuleName)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrExchangeFailed, err.Error())
	}

	fee := feeConfig.ProfitFee(assets, costPortion)
	if fee.IsPositive() {
		if err := k.payFee(cacheCtx, pool.AssetDenom, feeConfig.Recipient, fee); err != nil {
			return nil, err
		}
	}
	net := assets.Sub(fee)
	if net.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(pool.AssetDenom, net))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(cacheCtx, types.ModuleName, receiverAddr, coins); err != nil {
			return nil, errorsmod.Wrap(types.ErrTransferFailed, err.Error())
		}
	}

	record := types.NewLedgerRecord(types.RecordKindWithdrawal, poolID, withdrawer, net, shares, fee)
	k.SetRecord(cacheCtx, record)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vaultpool_withdraw",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("withdrawer", withdrawer),
			sdk.NewAttribute("receiver", receiver),
			sdk.NewAttribute("shares", shares.String()),
			sdk.NewAttribute("assets", assets.String()),
			sdk.NewAttribute("fee", fee.String()),
		),
	)
	write()

	k.logger.Info("Withdrawal processed",
		"pool_id", poolID,
		"withdrawer", withdrawer,
		"shares", shares.String(),
		"assets", assets.String(),
		"fee", fee.String(),
	)

	return record, nil
}

// payFee pushes a realized performance fee to the configured recipient
func (k *Keeper) payFee(ctx sdk.Context, denom, recipient string, fee math.Int) error {
	recipientAddr, err := sdk.AccAddressFromBech32(recipient)
	if err != nil {
		return errorsmod.Wrap(types.ErrTransferFailed, err.Error())
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, fee))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, recipientAddr, coins); err != nil {
		return errorsmod.Wrap(types.ErrTransferFailed, err.Error())
	}
	return nil
}
