package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/freQuensy23-coder/morphoEmergency/api"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/client/cli"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// NewRootCmd creates the root command for vaultpoold
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vaultpoold",
		Short: "Pooled custodial wrapper daemon for an external yield vault",
		Long: `vaultpoold runs a pooled wrapper over an external yield vault: user
deposits are exchanged for vault shares on a per-pool ledger, withdrawals
charge a performance fee on realized profit only, and an operator can
freeze a pool into a proportional claim pot in an emergency.`,
	}

	rootCmd.AddCommand(
		NewServeCmd(),
		cli.GetQueryCmd(),
		cli.GetTxCmd(),
	)

	return rootCmd
}

// NewServeCmd creates the serve command, which runs the standalone daemon
// with an in-memory store and a simulated vault
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the standalone API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			denom, _ := cmd.Flags().GetString("denom")
			noRateLimit, _ := cmd.Flags().GetBool("no-rate-limit")
			feeRecipient, _ := cmd.Flags().GetString("fee-recipient")
			feeRate, _ := cmd.Flags().GetString("fee-rate")

			logger := log.NewLogger(os.Stderr)

			service, err := api.NewStandaloneService(denom, logger)
			if err != nil {
				return fmt.Errorf("failed to build service: %w", err)
			}

			// Optional fee config at boot
			if feeRecipient != "" {
				rate, err := math.LegacyNewDecFromStr(feeRate)
				if err != nil {
					return fmt.Errorf("invalid fee rate %q: %w", feeRate, err)
				}
				config := types.FeeConfig{
					Recipient: feeRecipient,
					Rate:      rate,
					Enabled:   true,
				}
				if err := service.SetFeeConfig(service.Operator(), config); err != nil {
					return fmt.Errorf("failed to set fee config: %w", err)
				}
			}

			config := api.DefaultConfig()
			config.Host = host
			config.Port = port
			config.DisableRateLimit = noRateLimit

			server := api.NewServer(config, service)

			go func() {
				if err := server.Start(); err != nil {
					logger.Error("server error", "err", err)
				}
			}()

			logger.Info("vaultpoold started",
				"addr", fmt.Sprintf("%s:%d", host, port),
				"denom", denom,
				"operator", service.Operator(),
			)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Stop(ctx)
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "Server host")
	cmd.Flags().Int("port", 8080, "Server port")
	cmd.Flags().String("denom", "uusdc", "Underlying asset denom")
	cmd.Flags().Bool("no-rate-limit", false, "Disable rate limiting")
	cmd.Flags().String("fee-recipient", "", "Enable the performance fee paid to this address")
	cmd.Flags().String("fee-rate", "0.02", "Performance fee rate as a decimal fraction of profit")

	return cmd
}
