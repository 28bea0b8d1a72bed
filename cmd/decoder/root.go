package main

import (
	"log/slog"
	"os"

	"github.com/pion/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"hermannm.dev/devlog"
)

var logLevel slog.LevelVar

var rootCmd = &cobra.Command{
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Use:   "decoder",
	Short: "Content-protection decoder for a subscribed satellite channel feed",
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &logLevel,
	})))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().String("secrets", "", "Path to the provisioned secrets file")
	rootCmd.PersistentFlags().String("flash-file", "decoder.flash", "Path to the persisted flash image")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("secrets", rootCmd.PersistentFlags().Lookup("secrets"))
	_ = viper.BindPFlag("flash-file", rootCmd.PersistentFlags().Lookup("flash-file"))
	viper.SetEnvPrefix("decoder")
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd)
}

func loggerFactory() logging.LoggerFactory {
	if viper.GetBool("debug") {
		logLevel.Set(slog.LevelDebug)
	}
	return logging.NewDefaultLoggerFactory()
}
