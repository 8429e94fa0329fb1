package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/shift-roster-go/pkg/diagnosis"
)

type diagnoseReport struct {
	Snapshot diagnosis.Snapshot  `json:"diagnostics"`
	Findings []diagnosis.Finding `json:"reasons"`
}

func newDiagnoseCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report the staffing arithmetic and likely conflicts of a request without solving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.checkOutput(); err != nil {
				return err
			}
			req, err := loadRequest(cmd, file)
			if err != nil {
				return err
			}
			report := diagnoseReport{
				Snapshot: diagnosis.Summarize(req),
				Findings: diagnosis.Diagnose(req),
			}

			w := cmd.OutOrStdout()
			if done, err := opts.emit(w, report); done || err != nil {
				return err
			}
			s := report.Snapshot
			fmt.Fprintf(w, "staff %d (newbies %d, nakaban-only %d), %d requests\n", s.TotalStaff, s.Newbies, s.NakabanOnly, s.TotalRequests)
			if s.RequiredDailyMax > 0 {
				fmt.Fprintf(w, "required per day %d-%d\n", s.RequiredDaily, s.RequiredDailyMax)
			} else {
				fmt.Fprintf(w, "required per day %d or more\n", s.RequiredDaily)
			}
			fmt.Fprintf(w, "off days per staff %d, working days %d, utilization %.1f%%\n\n", s.TargetOffDays, s.WorkingDays, s.Utilization)
			printFindings(w, report.Findings)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (.json, .yaml or - for stdin)")
	return cmd
}
