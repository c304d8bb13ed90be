package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// PreviewUserAssets returns the user's current redeemable asset value: the
// frozen proportional payout once the pool is in emergency, otherwise a
// live preview quote from the external vault. No fee is deducted; fees are
// realized only at withdrawal or claim time, so callers must treat this as
// an upper bound on what they will net.
func (k *Keeper) PreviewUserAssets(ctx sdk.Context, poolID, user string) (math.Int, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return math.ZeroInt(), nil
	}

	position := k.GetPosition(ctx, poolID, user)
	if position.Shares.IsZero() {
		return math.ZeroInt(), nil
	}

	if pool.Emergency {
		if !pool.TotalShares.IsPositive() {
			return math.ZeroInt(), types.ErrBrokenLedger
		}
		return pool.WithdrawnAssets.Mul(position.Shares).Quo(pool.TotalShares), nil
	}

	return k.vaultKeeper.PreviewSharesToAssets(ctx, poolID, position.Shares)
}

// QueryServer defines the vaultpool QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Pool returns a pool by ID
func (q *QueryServer) Pool(ctx context.Context, poolID string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	return pool, nil
}

// Pools returns all pools with pagination
func (q *QueryServer) Pools(ctx context.Context, offset, limit uint64) ([]*types.Pool, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allPools := q.keeper.GetAllPools(sdkCtx)

	total := uint64(len(allPools))
	if offset >= total {
		return []*types.Pool{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}
	return allPools[offset:end], total, nil
}

// Position returns a user's position in a pool. Unknown pairs yield the
// implicit zero record.
func (q *QueryServer) Position(ctx context.Context, poolID, user string) (*types.UserPosition, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetPosition(sdkCtx, poolID, user), nil
}

// PoolPositions returns every recorded position in a pool
func (q *QueryServer) PoolPositions(ctx context.Context, poolID string) ([]*types.UserPosition, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetPoolPositions(sdkCtx, poolID), nil
}

// UserRecords returns a user's ledger records, optionally filtered by kind
func (q *QueryServer) UserRecords(ctx context.Context, user, kind string) ([]*types.LedgerRecord, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetUserRecords(sdkCtx, user, kind), nil
}

// FeeConfig returns the current fee configuration
func (q *QueryServer) FeeConfig(ctx context.Context) (types.FeeConfig, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetFeeConfig(sdkCtx), nil
}

// Preview returns the user's current redeemable asset value
func (q *QueryServer) Preview(ctx context.Context, poolID, user string) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.PreviewUserAssets(sdkCtx, poolID, user)
}

// Operator returns the current and pending operator addresses
func (q *QueryServer) Operator(ctx context.Context) (current, pending string, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.Operator(sdkCtx), q.keeper.PendingOperator(sdkCtx), nil
}
