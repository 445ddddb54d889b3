package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tariffbroker/app"
	"github.com/kilianp07/tariffbroker/core/journal"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/infra/logger"
	"github.com/kilianp07/tariffbroker/infra/mqtt"
	"github.com/kilianp07/tariffbroker/qa/scenarios"
)

var (
	simTimeslots int
	simVerbose   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>...",
	Short: "Play scenarios as fast as possible and print a summary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simTimeslots, "timeslots", "n", 0, "override the scenario length")
	simulateCmd.Flags().BoolVarP(&simVerbose, "verbose", "v", false, "print every decision")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, path := range args {
		sc, err := scenarios.Load(path)
		if err != nil {
			return err
		}
		if simTimeslots > 0 {
			sc.Timeslots = simTimeslots
		}
		rep, err := scenarios.Run(ctx, sc, cfg, app.Options{
			Journal:   store,
			Sink:      sink,
			Publisher: mqtt.NewMemoryPublisher(),
			Log:       logger.New(sc.Name),
		})
		if err != nil {
			return err
		}
		if simVerbose {
			printDecisions(out, rep)
		}
		status := "ok"
		if err := rep.Check(sc.Expected); err != nil {
			status = err.Error()
			failed++
		}
		fmt.Fprintf(out, "%s [%s] timeslots=%d publish=%d revoke=%d noop=%d warmup_overrides=%d subscribers=%.0f: %s\n",
			rep.Scenario, rep.Strategy, rep.Timeslots, rep.Publishes, rep.Revokes, rep.NoOps, rep.WarmupOverrides, rep.Subscribers, status)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios missed their expectations", failed, len(args))
	}
	return nil
}

func printDecisions(w io.Writer, rep *scenarios.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TS\tACTION\tUTILITY\tNOOP\tSUBSCRIBERS\tPRICE")
	for i, d := range rep.Decisions {
		step := rep.Steps[i]
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.0f\t%.4f\n",
			d.Event.Timeslot, d.Event.Action, d.Event.Utility, d.Event.NoOpUtility, step.Subscribers, step.ClearingPrice)
	}
	_ = tw.Flush()
}
