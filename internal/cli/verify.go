package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/sidecar"
	"github.com/mrz1836/cardmark/internal/tui"
	"github.com/mrz1836/cardmark/internal/watermark"
)

type verifyOptions struct {
	cardDir string
	svg     string
}

// AddVerifyCommand adds the verify command to the root command.
func AddVerifyCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newVerifyCmd(flags))
}

func newVerifyCmd(flags *GlobalFlags) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a card's sidecar signature",
		Long: `Recompute the card's signature and compare it with the one embedded in
the sidecar. Only the sidecar is checked; the PNG is not inspected.

Exit codes:
  0  signature matches
  1  signature mismatch
  2  sidecar missing or unreadable, or no embedded signature

Examples:
  cardmark verify --card-dir cards/2026-Q1/001
  cardmark verify --card-dir cards/2026-Q1/001 --svg /tmp/mark.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cardDir, "card-dir", "", "card directory containing card.json")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "sidecar path (default: <card-dir>/watermark.svg)")
	_ = cmd.MarkFlagRequired("card-dir")

	return cmd
}

func runVerify(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *verifyOptions) error {
	rt, err := newRuntime(ctx, flags, nil)
	if err != nil {
		return err
	}

	res, verr := rt.svc.Verify(ctx, opts.cardDir, opts.svg)
	out := tui.NewOutput(w, flags.Output)

	if flags.Output == OutputJSON {
		if err := out.JSON(res); err != nil {
			return err
		}
		if verr != nil {
			return classifyVerifyError(res, fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, verr))
		}
		return nil
	}

	if verr == nil {
		out.Success(res.Message)
		return nil
	}
	if stderrors.Is(verr, errors.ErrSignatureMismatch) {
		out.Fields([]tui.Field{
			{Label: "Expected", Value: res.Expected},
			{Label: "Actual", Value: res.Actual},
		})
	}
	return classifyVerifyError(res, verr)
}

// classifyVerifyError marks sidecar problems for exit code 2. Mismatches and
// other failures keep exit code 1.
func classifyVerifyError(res *watermark.Result, err error) error {
	switch {
	case stderrors.Is(err, errors.ErrSignatureMismatch):
		return err
	case stderrors.Is(err, errors.ErrParse):
		return errors.NewExitCode2Error(err)
	case stderrors.Is(err, errors.ErrInputMissing) && res != nil && !sidecar.Exists(res.SidecarPath):
		return errors.NewExitCode2Error(err)
	default:
		return err
	}
}
