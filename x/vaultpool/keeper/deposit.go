package keeper

import (
	"context"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// Deposit pulls assets from the depositor, exchanges them with the external
// vault and credits the receiver's position with the minted shares plus the
// deposited cost basis. The pool is created implicitly on first deposit.
//
// External calls (asset pull, vault exchange) run strictly before the
// ledger mutation; everything happens on a store branch committed in one
// step, so a failure anywhere leaves no observable state change.
func (k *Keeper) Deposit(ctx context.Context, depositor, poolID string, amount math.Int, receiver string) (*types.LedgerRecord, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrInvalidAmount
	}
	// Pools are only ever created here, so this is the one place ids must
	// be screened before they become store key segments
	if err := types.ValidatePoolID(poolID); err != nil {
		return nil, err
	}
	if receiver == "" {
		receiver = depositor
	}

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		pool = types.NewPool(poolID, k.vaultKeeper.AssetDenom(sdkCtx, poolID))
	}
	if pool.Emergency {
		return nil, types.ErrPoolFrozen
	}

	depositorAddr, err := sdk.AccAddressFromBech32(depositor)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrTransferFailed, err.Error())
	}

	cacheCtx, write := sdkCtx.CacheContext()

	// Take custody of the assets, then buy vault shares with them
	coins := sdk.NewCoins(sdk.NewCoin(pool.AssetDenom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(cacheCtx, depositorAddr, types.ModuleName, coins); err != nil {
		return nil, errorsmod.Wrap(types.ErrTransferFailed, err.Error())
	}
	shares, err := k.vaultKeeper.ExchangeAssetForShares(cacheCtx, poolID, amount)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrExchangeFailed, err.Error())
	}

	// Credit the ledger with exactly what the exchange returned
	now := time.Now().Unix()
	position := k.GetPosition(cacheCtx, poolID, receiver)
	position.Shares = position.Shares.Add(shares)
	position.DepositedCostBasis = position.DepositedCostBasis.Add(amount)
	position.UpdatedAt = now

	pool.TotalShares = pool.TotalShares.Add(shares)
	pool.UpdatedAt = now

	record := types.NewLedgerRecord(types.RecordKindDeposit, poolID, receiver, amount, shares, math.ZeroInt())

	k.SetPosition(cacheCtx, position)
	k.SetPool(cacheCtx, pool)
	k.SetRecord(cacheCtx, record)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vaultpool_deposit",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("depositor", depositor),
			sdk.NewAttribute("receiver", receiver),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("shares", shares.String()),
		),
	)
	write()

	k.logger.Info("Deposit processed",
		"pool_id", poolID,
		"receiver", receiver,
		"amount", amount.String(),
		"shares", shares.String(),
	)

	return record, nil
}
