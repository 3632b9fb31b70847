package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"qrmenu-backend/internal/app"
	"qrmenu-backend/internal/config"
)

func main() {
	cliApp := &cli.App{
		Name:  "qrmenu-backend",
		Usage: "QR menu business console API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port, overrides HTTP_PORT"},
			&cli.StringFlag{Name: "log-level", Usage: "log level, overrides LOG_LEVEL"},
			&cli.StringFlag{Name: "log-format", Usage: "json or text, overrides LOG_FORMAT"},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "[FATAL]", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v := c.String("port"); v != "" {
		cfg.HTTPPort = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.LogFormat = v
	}

	logger := config.InitLogger(cfg)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Release()

	server := newServer(a)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.HTTPPort).Info("server listening")
		errCh <- server.Listen(":" + cfg.HTTPPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
	return nil
}
