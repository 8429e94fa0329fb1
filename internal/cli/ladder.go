package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arnavshah/shift-roster-go/pkg/scheduler"
)

type ladderRow struct {
	Index              int    `json:"index"`
	BalanceSlack       int    `json:"relax_balance"`
	SoftenPreferences  bool   `json:"relax_preferences"`
	ExtendConsecutive  bool   `json:"relax_consecutive"`
	AllowLateThenEarly bool   `json:"relax_late_early"`
	MaxConsecutive     int    `json:"max_consecutive"`
	Description        string `json:"description"`
}

func newLadderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ladder",
		Short: "Print the relaxation profiles in attempt order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.checkOutput(); err != nil {
				return err
			}
			var rows []ladderRow
			for i, p := range scheduler.Ladder() {
				rows = append(rows, ladderRow{
					Index:              i + 1,
					BalanceSlack:       p.BalanceSlack,
					SoftenPreferences:  p.SoftenPreferences,
					ExtendConsecutive:  p.ExtendConsecutive,
					AllowLateThenEarly: p.AllowLateThenEarly,
					MaxConsecutive:     p.MaxConsecutive(),
					Description:        p.Description,
				})
			}

			w := cmd.OutOrStdout()
			if done, err := opts.emit(w, rows); done || err != nil {
				return err
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tbalance\tprefs soft\tmax run\tlate->early\tdescription")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t+%d\t%t\t%d\t%t\t%s\n", r.Index, r.BalanceSlack, r.SoftenPreferences, r.MaxConsecutive, r.AllowLateThenEarly, r.Description)
			}
			return tw.Flush()
		},
	}
}
