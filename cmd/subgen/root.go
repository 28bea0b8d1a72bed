package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Use:   "subgen",
	Short: "Generate signed, encrypted decoder fixtures for testing and provisioning",
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("encoder-key", "", "The encoder's Ed25519 private key (64 bytes), hex-encoded")
	rootCmd.AddCommand(subscriptionCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(keygenCmd)
}
