package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/odds-apex/internal/engine"
	"github.com/yourusername/odds-apex/internal/report"
)

var (
	laysReport   string
	laysBankroll float64
	laysPolicy   string
	laysFlat     float64
	laysMini     float64
)

var laysCmd = &cobra.Command{
	Use:   "lays",
	Short: "Size lay bets from report lines",
	Long: `Parses report lines (as printed by score and field), ranks them as one field and sizes
lays under the chosen policy. Lines without a model percentage or live odds are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		in, err := openInput(laysReport)
		if err != nil {
			return err
		}
		defer in.Close()

		req := engine.StakeRequest{Policy: laysPolicy, Bankroll: laysBankroll}
		if req.Policy == "" {
			req.Policy = cfg.Staking.DefaultPolicy
		}
		if cmd.Flags().Changed("flat-pct") {
			req.FlatPct = &laysFlat
		}
		if cmd.Flags().Changed("mini-kelly-pct") {
			req.MiniKellyPct = &laysMini
		}

		result, err := eng.StakeReport(ctx, in, req)
		if err != nil {
			return err
		}
		if n := len(result.Skipped); n > 0 {
			appLog.WithField("skipped", n).Info("Ignored report lines without a model or live odds")
		}

		out := cmd.OutOrStdout()
		if err := report.WriteStakeTable(out, result.Bankroll, result.CapFraction, result.Policy, result.Recommendations); err != nil {
			return err
		}
		if len(result.Field) > 0 {
			fmt.Fprintln(out)
			return report.WriteFieldTable(out, result.Field)
		}
		return nil
	},
}

func init() {
	laysCmd.Flags().StringVarP(&laysReport, "report", "r", "-", "Report file, - for stdin")
	laysCmd.Flags().Float64VarP(&laysBankroll, "bankroll", "b", 0, "Bankroll to size lays against")
	laysCmd.Flags().StringVarP(&laysPolicy, "policy", "p", "", "Staking policy: capped-kelly, flat, flat-mini-kelly or tiered-ev")
	laysCmd.Flags().Float64Var(&laysFlat, "flat-pct", 0, "Flat liability percent for flat-mini-kelly")
	laysCmd.Flags().Float64Var(&laysMini, "mini-kelly-pct", 0, "Kelly percent added on top of the flat share")
	_ = laysCmd.MarkFlagRequired("bankroll")
}
