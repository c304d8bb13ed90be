package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
)

const flagAPIEndpoint = "api-endpoint"

// GetQueryCmd returns the cli query commands for the vaultpool module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "vaultpool",
		Short:                      "Querying commands for the vaultpool module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryPool(),
		CmdQueryPools(),
		CmdQueryPosition(),
		CmdQueryPreview(),
		CmdQueryFeeConfig(),
	)

	return cmd
}

// queryAPI fetches a path from the vaultpoold API server and prints the body
func queryAPI(cmd *cobra.Command, path string) error {
	endpoint, _ := cmd.Flags().GetString(flagAPIEndpoint)
	resp, err := http.Get(endpoint + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query failed: %s: %s", resp.Status, string(body))
	}
	fmt.Println(string(body))
	return nil
}

func addAPIFlag(cmd *cobra.Command) {
	cmd.Flags().String(flagAPIEndpoint, "http://localhost:8080", "vaultpoold API endpoint")
}

// CmdQueryPool returns the command to query a single pool
func CmdQueryPool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Query a pool's ledger state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryAPI(cmd, "/v1/pools/"+url.PathEscape(args[0]))
		},
	}

	addAPIFlag(cmd)
	return cmd
}

// CmdQueryPools returns the command to list pools
func CmdQueryPools() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "List all pools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryAPI(cmd, "/v1/pools")
		},
	}

	addAPIFlag(cmd)
	return cmd
}

// CmdQueryPosition returns the command to query a user position
func CmdQueryPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position [pool-id] [address]",
		Short: "Query a user's position in a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryAPI(cmd, "/v1/pools/"+url.PathEscape(args[0])+"/positions/"+url.PathEscape(args[1]))
		},
	}

	addAPIFlag(cmd)
	return cmd
}

// CmdQueryPreview returns the command to preview redeemable assets
func CmdQueryPreview() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [pool-id] [address]",
		Short: "Preview a user's redeemable asset value (gross of fee)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryAPI(cmd, "/v1/pools/"+url.PathEscape(args[0])+"/preview/"+url.PathEscape(args[1]))
		},
	}

	addAPIFlag(cmd)
	return cmd
}

// CmdQueryFeeConfig returns the command to query the fee configuration
func CmdQueryFeeConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee-config",
		Short: "Query the current performance fee configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryAPI(cmd, "/v1/fee-config")
		},
	}

	addAPIFlag(cmd)
	return cmd
}
