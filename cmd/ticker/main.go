package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/cmd/ticker/internal/host"
	"github.com/shubham-shewale/crypto-ticker/cmd/ticker/internal/render"
	"github.com/shubham-shewale/crypto-ticker/pkg/config"
	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

var (
	interval    time.Duration
	ticks       int
	marquee     bool
	colored     bool
	maxFraction float64
	jitter      float64
	seed        int64
)

var rootCmd = &cobra.Command{
	Use:   "ticker",
	Short: "Simulated crypto price ticker",
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render the simulated ticker in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		// stdout carries the ticker itself
		logger, err := config.NewLoggerTo(cfg.Logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer logger.Sync()

		// flags win over config
		if cmd.Flags().Changed("interval") {
			cfg.Ticker.Interval = interval
		}
		if cmd.Flags().Changed("max-fraction") {
			cfg.Ticker.MaxPriceFraction = maxFraction
		}
		if cmd.Flags().Changed("jitter") {
			cfg.Ticker.ChangeJitter = jitter
		}
		if cfg.Ticker.Interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", cfg.Ticker.Interval)
		}

		var opts []pricefeed.Option
		if cmd.Flags().Changed("seed") {
			opts = append(opts, pricefeed.WithRand(rand.New(rand.NewSource(seed))))
		}
		sim, err := cfg.Ticker.NewSimulator(opts...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		onState := func(state pricefeed.FeedState) {
			if marquee {
				fmt.Fprintln(out, render.Marquee(state))
				return
			}
			fmt.Fprintln(out, time.Now().Format(time.TimeOnly))
			render.Table(out, state, colored)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Debug("Ticker started", zap.Strings("symbols", cfg.Ticker.Symbols()), zap.Duration("interval", cfg.Ticker.Interval))
		err = host.New(sim, cfg.Ticker.Interval, logger, onState).Run(ctx, ticks)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "time between ticks")
	watchCmd.Flags().IntVar(&ticks, "ticks", 0, "stop after this many ticks (0 runs until interrupted)")
	watchCmd.Flags().BoolVar(&marquee, "marquee", false, "render a single scrolling line instead of a table")
	watchCmd.Flags().BoolVar(&colored, "color", false, "color symbols by accent and changes by direction")
	watchCmd.Flags().Float64Var(&maxFraction, "max-fraction", pricefeed.DefaultMaxPriceFraction, "max relative price move per tick")
	watchCmd.Flags().Float64Var(&jitter, "jitter", pricefeed.DefaultChangeJitter, "change percent jitter width per tick")
	watchCmd.Flags().Int64Var(&seed, "seed", 0, "seed for a reproducible run")

	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
