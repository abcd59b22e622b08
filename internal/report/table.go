package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-apex/internal/models"
)

const rule = "---------------------------------------------------------"

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteStakeTable renders lay recommendations with the bankroll and per-competitor cap.
func WriteStakeTable(w io.Writer, bankroll, capFraction float64, policy string, recs []models.StakeRecommendation) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Bankroll: %s\n", money(bankroll))
	fmt.Fprintf(&b, "Max liability per competitor (%s%%): %s\n\n",
		decimal.NewFromFloat(capFraction*100).Round(2).String(), money(capFraction*bankroll))

	if len(recs) == 0 {
		b.WriteString("No positive-EV lays found.\n")
	} else {
		fmt.Fprintf(&b, "Recommendations (%s, per competitor cap):\n", policy)
		b.WriteString(rule + "\n")
		for _, r := range recs {
			fmt.Fprintf(&b, "%-12s | Odds: %5.2f | LayEV: %+.3f | Stake: %6s | Liab: %6s\n",
				r.Name, r.Odds, r.EVLay, money(r.Stake), money(r.Liability))
		}
		b.WriteString(rule + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFieldTable renders a classified field with ranks and signal tiers.
func WriteFieldTable(w io.Writer, entries []models.FieldEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODEL%\tMARKET%\tEDGE%\tMODEL RANK\tMARKET RANK\tDELTA\tTIER\tLAY EV")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%+.2f\t%d\t%d\t%+d\t%s\t%+.3f\n",
			e.Name, e.Final*100, e.Implied*100, e.EdgePercent(),
			e.ModelRank, e.MarketRank, e.RankDelta, e.Tier, e.EVLay)
	}
	return tw.Flush()
}
