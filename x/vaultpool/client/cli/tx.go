package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// GetTxCmd returns the transaction commands for the vaultpool module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "vaultpool",
		Short:                      "Vaultpool module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdDeposit(),
		CmdWithdraw(),
		CmdTriggerEmergency(),
		CmdEmergencyClaim(),
		CmdSetFeeConfig(),
	)

	return cmd
}

// CmdDeposit returns the command to deposit into a pool
func CmdDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit [pool-id] [amount]",
		Short: "Deposit assets into a pool",
		Long: `Deposit assets into a pool, receiving vault shares at the external
vault's current rate.

Examples:
  vaultpoold tx vaultpool deposit morpho-usdc 1000 --from alice
  vaultpoold tx vaultpool deposit morpho-usdc 1000 --receiver cosmos1... --from alice`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			receiver, _ := cmd.Flags().GetString("receiver")

			msg := &types.MsgDeposit{
				Depositor: clientCtx.GetFromAddress().String(),
				PoolID:    args[0],
				Amount:    args[1],
				Receiver:  receiver,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String("receiver", "", "Credit shares to this address instead of the depositor")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWithdraw returns the command to withdraw from a pool
func CmdWithdraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw [pool-id] [shares]",
		Short: "Redeem shares for assets on the normal path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			receiver, _ := cmd.Flags().GetString("receiver")

			msg := &types.MsgWithdraw{
				Withdrawer: clientCtx.GetFromAddress().String(),
				PoolID:     args[0],
				Shares:     args[1],
				Receiver:   receiver,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String("receiver", "", "Send assets to this address instead of the withdrawer")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdTriggerEmergency returns the command to freeze a pool (operator only)
func CmdTriggerEmergency() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger-emergency [pool-id]",
		Short: "Freeze a pool and convert it into a claim pot (operator only, one-way)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgTriggerEmergency{
				Operator: clientCtx.GetFromAddress().String(),
				PoolID:   args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdEmergencyClaim returns the command to claim from a frozen pool
func CmdEmergencyClaim() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emergency-claim [pool-id]",
		Short: "Claim your proportional share of a frozen pool's pot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgEmergencyClaim{
				Claimant: clientCtx.GetFromAddress().String(),
				PoolID:   args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetFeeConfig returns the command to update the fee config (operator only)
func CmdSetFeeConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-fee-config [recipient] [rate] [enabled]",
		Short: "Set the performance fee configuration (operator only)",
		Long: `Set the performance fee configuration. The rate is a decimal fraction
of realized profit, e.g. 0.02 for 2%.

Example:
  vaultpoold tx vaultpool set-fee-config cosmos1fee... 0.02 true --from operator`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			enabled, err := strconv.ParseBool(args[2])
			if err != nil {
				return err
			}

			msg := &types.MsgSetFeeConfig{
				Operator:  clientCtx.GetFromAddress().String(),
				Recipient: args[0],
				Rate:      args[1],
				Enabled:   enabled,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
