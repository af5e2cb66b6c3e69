package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cardmark/internal/config"
	"github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/tui"
	"github.com/mrz1836/cardmark/internal/watermark"
)

type batchOptions struct {
	seriesDir string
	parallel  int
	verify    bool
}

// AddBatchCommand adds the batch command to the root command.
func AddBatchCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newBatchCmd(flags))
}

func newBatchCmd(flags *GlobalFlags) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Sign and stamp (or verify) every card in a series",
		Long: `Process every card directory directly under --series-dir that contains
card.json. Cards run in parallel; a failing card is reported and does not
stop the others. The command exits 1 if any card failed.

Examples:
  cardmark batch --series-dir cards/2026-Q1
  cardmark batch --series-dir cards/2026-Q1 --verify --parallel 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.seriesDir, "series-dir", "", "directory holding one sub-directory per card")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "cards processed concurrently (default: batch.parallelism, 4)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "verify sidecars instead of signing and stamping")
	_ = cmd.MarkFlagRequired("series-dir")

	return cmd
}

func runBatch(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *batchOptions) error {
	overrides := &config.Config{Batch: config.BatchConfig{Parallelism: opts.parallel}}
	rt, err := newRuntime(ctx, flags, overrides)
	if err != nil {
		return err
	}

	run := rt.svc.ApplyAll
	if opts.verify {
		run = rt.svc.VerifyAll
	}

	report, err := run(ctx, opts.seriesDir, rt.cfg.Batch.Parallelism)
	if report == nil {
		return err
	}

	out := tui.NewOutput(w, flags.Output)
	if flags.Output == OutputJSON {
		if jerr := out.JSON(report); jerr != nil {
			return jerr
		}
	} else {
		out.Table([]string{"Card", "Status", "Detail"}, batchRows(report))
	}

	if err != nil {
		return err
	}
	if berr := report.Err(); berr != nil {
		if flags.Output == OutputJSON {
			return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, berr)
		}
		return berr
	}

	if flags.Output != OutputJSON {
		out.Success(fmt.Sprintf("%d cards processed in %s (%s)", len(report.Outcomes), report.Duration().Round(time.Millisecond), report.RunID))
	}
	return nil
}

func batchRows(report *watermark.BatchReport) [][]string {
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		status, detail := "ok", o.Output
		switch {
		case stderrors.Is(o.Err, errors.ErrSignatureMismatch):
			status, detail = "mismatch", o.Result.Message
		case o.Err != nil:
			status, detail = "failed", o.Error
		case o.Result != nil:
			detail = o.Result.Message
		}
		rows = append(rows, []string{filepath.Base(o.CardDir), status, detail})
	}
	return rows
}
