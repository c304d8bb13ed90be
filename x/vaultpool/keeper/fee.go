package keeper

import (
	"encoding/json"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// GetFeeConfig returns the current fee configuration, the disabled default
// if none was ever set. Operations read this once at settlement time; there
// is no per-deposit snapshot.
func (k *Keeper) GetFeeConfig(ctx sdk.Context) types.FeeConfig {
	store := k.GetStore(ctx)
	bz := store.Get(FeeConfigKey)
	if bz == nil {
		return types.DefaultFeeConfig()
	}
	var config types.FeeConfig
	if err := json.Unmarshal(bz, &config); err != nil {
		return types.DefaultFeeConfig()
	}
	return config
}

// SetFeeConfig replaces the fee configuration. Operator only; takes effect
// for every subsequent withdrawal and claim immediately.
func (k *Keeper) SetFeeConfig(ctx sdk.Context, caller string, config types.FeeConfig) error {
	if !k.IsOperator(ctx, caller) {
		return types.ErrUnauthorized
	}
	if err := config.Validate(); err != nil {
		return err
	}

	config.UpdatedAt = time.Now().Unix()
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(config)
	store.Set(FeeConfigKey, bz)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vaultpool_fee_config",
			sdk.NewAttribute("recipient", config.Recipient),
			sdk.NewAttribute("rate", config.Rate.String()),
			sdk.NewAttribute("enabled", boolString(config.Enabled)),
		),
	)

	k.logger.Info("Fee config updated",
		"recipient", config.Recipient,
		"rate", config.Rate.String(),
		"enabled", config.Enabled,
	)
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
