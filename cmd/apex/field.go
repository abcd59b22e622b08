package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/odds-apex/internal/report"
	"github.com/yourusername/odds-apex/internal/staking"
)

var (
	fieldInput    string
	fieldSeed     int64
	fieldPolicy   string
	fieldBankroll float64
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Value a whole field and flag mispriced favourites",
	Long: `Reads a list of competitor forms (YAML), prints a report line per competitor and the
ranked field table. With --bankroll, lays are sized under --policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		subs, err := readField(fieldInput)
		if err != nil {
			return err
		}
		result, err := eng.EvaluateField(ctx, subs, seedFlag(cmd, fieldSeed))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range result.Entries {
			fmt.Fprintln(out, report.Format(e.Valuation))
		}
		fmt.Fprintln(out)
		if err := report.WriteFieldTable(out, result.Entries); err != nil {
			return err
		}
		for _, f := range result.Failures {
			appLog.WithError(f.Err).WithField("index", f.Index).Warnf("Skipped %s", f.Name)
		}

		if fieldBankroll <= 0 {
			return nil
		}
		policy := fieldPolicy
		if policy == "" {
			policy = cfg.Staking.DefaultPolicy
		}
		candidates := make([]staking.Candidate, 0, len(result.Entries))
		for _, e := range result.Entries {
			candidates = append(candidates, staking.CandidateFromEntry(e))
		}
		recs, err := eng.RecommendStakes(policy, fieldBankroll, candidates)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		return report.WriteStakeTable(out, fieldBankroll, eng.StakingSettings().CapFraction, policy, recs)
	},
}

func init() {
	fieldCmd.Flags().StringVarP(&fieldInput, "input", "i", "-", "Field file (YAML list of forms), - for stdin")
	fieldCmd.Flags().Int64Var(&fieldSeed, "seed", 0, "Simulation seed shared by every competitor")
	fieldCmd.Flags().StringVar(&fieldPolicy, "policy", "", "Staking policy (defaults to staking.default_policy)")
	fieldCmd.Flags().Float64Var(&fieldBankroll, "bankroll", 0, "Bankroll for lay sizing; 0 skips staking")
}
