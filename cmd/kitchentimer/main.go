package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgedlt/countdown"
	"github.com/edgedlt/countdown/internal/console"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type cfg struct {
	TickInterval     time.Duration
	SubscriberBuffer int
	LogLevel         string
}

type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().Duration("tick-interval", time.Second, "period of the countdown scheduling loop")
	cmd.Flags().Int("subscriber-buffer", 64, "event channel capacity per subscriber")
	cmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err = viper.ReadInConfig(); err != nil {
			// it's ok if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return err
			}
		}
	}

	c.cfg.TickInterval = viper.GetDuration("tick-interval")
	c.cfg.SubscriberBuffer = viper.GetInt("subscriber-buffer")
	c.cfg.LogLevel = viper.GetString("log-level")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = lvl
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(c.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	host := countdown.NewHost(
		countdown.WithLogger(logger),
		countdown.WithTickInterval(c.cfg.TickInterval),
		countdown.WithSubscriberBuffer(c.cfg.SubscriberBuffer),
	)
	m, err := host.Manager()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := m.Subscribe()
	if err != nil {
		return err
	}
	con := console.New(m, os.Stdout, logger)

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		con.Watch(ctx, sub)
	}()

	if err := con.Execute("help"); err != nil {
		return err
	}
	runErr := con.Run(ctx, os.Stdin)

	sub.Close()
	<-watchDone

	if !host.ReleaseIfIdle() {
		logger.Warn("exiting with active timers",
			zap.Int("timers", m.TimerCount()))
		if err := host.Close(); err != nil {
			return err
		}
	}
	return runErr
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "kitchentimer",
		Short:   "Run several countdown timers from the terminal",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
