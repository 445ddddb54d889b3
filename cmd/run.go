package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tariffbroker/app"
	"github.com/kilianp07/tariffbroker/infra/logger"
	"github.com/kilianp07/tariffbroker/qa/scenarios"
)

var (
	runScenario string
	runInterval time.Duration
	runSteps    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the broker service against a simulated market",
	Long: "Run decides once per interval against the scenario's market, with every " +
		"configured output enabled: metrics sinks, the Prometheus endpoint, the decision journal and MQTT.",
	RunE: runService,
}

func init() {
	runCmd.Flags().StringVarP(&runScenario, "scenario", "s", "", "scenario file describing the market")
	runCmd.Flags().DurationVar(&runInterval, "interval", time.Second, "wall-clock duration of one timeslot")
	runCmd.Flags().IntVar(&runSteps, "steps", 0, "stop after this many timeslots (0 runs until interrupted)")
	_ = runCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(runCmd)
}

func runService(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := scenarios.Load(runScenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	market, cfg, err := scenarios.Prepare(sc, cfg, app.Options{Log: logger.New("simulator")})
	if err != nil {
		return err
	}
	svc, err := app.New(cfg, scenarios.Predictors(market.World))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx, market, runInterval, runSteps)
}
