package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ectf-pp/decoder/pkg/device"
	"github.com/ectf-pp/decoder/pkg/flash"
	"github.com/ectf-pp/decoder/pkg/hostlink"
	"github.com/ectf-pp/decoder/pkg/secrets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Boot the decoder and serve host commands",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "TCP address to listen on; empty means speak the protocol over stdio")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	secretsPath := viper.GetString("secrets")
	if secretsPath == "" {
		return fmt.Errorf("--secrets is required")
	}

	provisioned, err := secrets.Load(secretsPath)
	if err != nil {
		return err
	}

	flashDev, err := flash.OpenFile(viper.GetString("flash-file"), device.PageSize(), device.FlashImageSize())
	if err != nil {
		return fmt.Errorf("opening flash image: %w", err)
	}

	dev, err := device.New(device.Config{
		Flash:         flashDev,
		Secrets:       provisioned,
		LoggerFactory: loggerFactory(),
	})
	if err != nil {
		return err
	}
	if err := dev.Boot(); err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	listen := viper.GetString("listen")
	if listen == "" {
		slog.Info("serving on stdio")
		return dev.Serve(stdioConn{})
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	defer ln.Close()
	slog.Info("listening", "addr", ln.Addr())

	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()
	slog.Info("accepted connection", "remote", conn.RemoteAddr())

	return dev.Serve(conn)
}

type stdioConn struct{}

func (stdioConn) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioConn) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

var _ hostlink.Conn = stdioConn{}
