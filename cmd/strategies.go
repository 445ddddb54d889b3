package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tariffbroker/core/journal"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/core/optimizer"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the strategies, search methods and outputs that can be configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b := optimizer.NewBuilder(cfg.Optimizer, optimizer.Deps{}, cfg.Decision.HourOffset)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "strategies: %s\n", strings.Join(b.StrategyNames(), ", "))
		fmt.Fprintf(out, "methods:    %s\n", strings.Join(b.MethodNames(), ", "))
		fmt.Fprintf(out, "sinks:      %s\n", strings.Join(coremetrics.SinkNames(), ", "))
		fmt.Fprintf(out, "journals:   %s\n", strings.Join([]string{journal.BackendNone, journal.BackendJSONL, journal.BackendRotating, journal.BackendSQLite}, ", "))
		fmt.Fprintf(out, "configured: %s\n", cfg.Optimizer.Strategy.Type)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
