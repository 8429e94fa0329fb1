package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavshah/shift-roster-go/internal/solver"
	"github.com/arnavshah/shift-roster-go/pkg/diagnosis"
	"github.com/arnavshah/shift-roster-go/pkg/export"
	"github.com/arnavshah/shift-roster-go/pkg/models"
	"github.com/arnavshah/shift-roster-go/pkg/scheduler"
)

type solveOptions struct {
	file          string
	xlsx          string
	engine        string
	timeLimit     time.Duration
	improveTime   time.Duration
	seed          int64
	maxIterations int
	tolerance     int
}

func newSolveCmd(opts *options) *cobra.Command {
	so := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run the relaxation ladder for a request file",
		Example: `  rosterctl solve -f april.yaml
  rosterctl solve -f april.json --xlsx april.xlsx --time-limit 10s
  rosterctl solve -f april.yaml --engine local --seed 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSolve(cmd, opts, so)
		},
	}
	def := solver.DefaultOptions()
	cmd.Flags().StringVarP(&so.file, "file", "f", "", "request file (.json, .yaml or - for stdin)")
	cmd.Flags().StringVar(&so.xlsx, "xlsx", "", "write the roster workbook to this path")
	cmd.Flags().StringVar(&so.engine, "engine", solver.EngineSAT, "solver engine: sat or local")
	cmd.Flags().DurationVar(&so.timeLimit, "time-limit", scheduler.DefaultTimeLimit, "engine budget per ladder attempt")
	cmd.Flags().DurationVar(&so.improveTime, "improve-time", def.ImproveTime, "time the sat engine spends raising the objective")
	cmd.Flags().Int64Var(&so.seed, "seed", def.Seed, "local search seed; restarts use seed+1, seed+2, ...")
	cmd.Flags().IntVar(&so.maxIterations, "max-iterations", def.MaxIterations, "local search moves before a restart")
	cmd.Flags().IntVar(&so.tolerance, "tolerance", -1, "override the request's balance tolerance")
	return cmd
}

func runSolve(cmd *cobra.Command, opts *options, so *solveOptions) error {
	if err := opts.checkOutput(); err != nil {
		return err
	}
	req, err := loadRequest(cmd, so.file)
	if err != nil {
		return err
	}
	if so.tolerance >= 0 {
		req.Balance.Tolerance = so.tolerance
	}

	engineOpts := solver.DefaultOptions()
	engineOpts.Seed = so.seed
	engineOpts.MaxIterations = so.maxIterations
	engineOpts.ImproveTime = so.improveTime
	engine, err := solver.NewEngine(so.engine, engineOpts)
	if err != nil {
		return err
	}
	sch := scheduler.New(engine, so.timeLimit, opts.logger(cmd))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	out, err := sch.Run(ctx, req)
	if err != nil {
		return err
	}

	if out.Success && so.xlsx != "" {
		if err := writeWorkbook(so.xlsx, req.Calendar.Year, req.Calendar.Month, out); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if done, err := opts.emit(w, models.NewScheduleResponse(out, "")); done || err != nil {
		if err == nil && !out.Success {
			return ErrNoRoster
		}
		return err
	}

	if !out.Success {
		fmt.Fprintf(w, "%s (%d attempts)\n\n", models.FailureMessage, len(out.Attempts))
		printFindings(w, out.Findings)
		return ErrNoRoster
	}
	printRoster(w, out)
	if so.xlsx != "" {
		fmt.Fprintf(w, "\nworkbook written to %s\n", so.xlsx)
	}
	return nil
}

func writeWorkbook(path string, year, month int, out *scheduler.Outcome) error {
	f, err := export.Workbook(year, month, out.NumDays, out.Rows)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func printRoster(w io.Writer, out *scheduler.Outcome) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	header := []string{"name"}
	for d := 1; d <= out.NumDays; d++ {
		header = append(header, fmt.Sprint(d))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range out.Rows {
		fmt.Fprintln(tw, r.Name+"\t"+strings.Join(r.Shifts, "\t"))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nprofile %d/%d %s %s\n", out.ProfileIndex+1, len(scheduler.Ladder()), out.Profile, out.Profile.Description)
	if out.Relaxation != nil {
		fmt.Fprintf(w, "balance tolerance adjusted to %d\n", out.Relaxation.AdjustedBalanceTolerance)
	}
	if out.Fairness != nil {
		fmt.Fprintf(w, "fairness %.1f (working days %.1f ± %.2f, max early/late gap %d)\n",
			out.Fairness.Score, out.Fairness.MeanWorkingDays, out.Fairness.StdDevWorkingDays, out.Fairness.MaxBalanceGap)
	}
}

func printFindings(w io.Writer, findings []diagnosis.Finding) {
	for _, f := range findings {
		fmt.Fprintf(w, "[%s] %s\n  %s\n  %s\n", f.Kind, f.Title, f.Message, f.Suggestion)
	}
}
