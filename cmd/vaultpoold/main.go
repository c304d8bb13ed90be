package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/freQuensy23-coder/morphoEmergency/cmd/vaultpoold/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("failure when running vaultpoold", "err", err)
		os.Exit(1)
	}
}
