package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// Operator returns the current operator address. Until the role has been
// handed over on-store, the keeper's construction-time authority holds it.
func (k *Keeper) Operator(ctx sdk.Context) string {
	store := k.GetStore(ctx)
	bz := store.Get(OperatorKey)
	if bz == nil {
		return k.authority
	}
	return string(bz)
}

// PendingOperator returns the address of an in-flight operator handover,
// empty if none
func (k *Keeper) PendingOperator(ctx sdk.Context) string {
	store := k.GetStore(ctx)
	return string(store.Get(PendingOperatorKey))
}

// IsOperator reports whether the caller holds the operator role
func (k *Keeper) IsOperator(ctx sdk.Context, caller string) bool {
	return caller == k.Operator(ctx)
}

// TransferOperator starts a two-step operator handover. The role only moves
// once the new operator accepts.
func (k *Keeper) TransferOperator(ctx sdk.Context, caller, newOperator string) error {
	if !k.IsOperator(ctx, caller) {
		return types.ErrUnauthorized
	}

	store := k.GetStore(ctx)
	store.Set(PendingOperatorKey, []byte(newOperator))

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vaultpool_operator_transfer",
			sdk.NewAttribute("operator", caller),
			sdk.NewAttribute("pending_operator", newOperator),
		),
	)

	k.logger.Info("Operator handover started", "operator", caller, "pending_operator", newOperator)
	return nil
}

// AcceptOperator completes the handover for the pending operator
func (k *Keeper) AcceptOperator(ctx sdk.Context, caller string) error {
	pending := k.PendingOperator(ctx)
	if pending == "" {
		return types.ErrNoPendingOperator
	}
	if caller != pending {
		return types.ErrUnauthorized
	}

	store := k.GetStore(ctx)
	store.Set(OperatorKey, []byte(caller))
	store.Delete(PendingOperatorKey)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vaultpool_operator_accepted",
			sdk.NewAttribute("operator", caller),
		),
	)

	k.logger.Info("Operator handover completed", "operator", caller)
	return nil
}
