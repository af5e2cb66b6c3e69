package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cardmark/internal/tui"
	"github.com/mrz1836/cardmark/internal/watermark"
)

type applyOptions struct {
	cardDir string
	in      string
	out     string
	size    int
	inset   int

	sizeSet  bool
	insetSet bool
}

// AddApplyCommand adds the apply command to the root command.
func AddApplyCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newApplyCmd(flags))
}

func newApplyCmd(flags *GlobalFlags) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Burn the signature sigil into a card PNG",
		Long: `Burn the sigil derived from the card's signature into the bottom-right
corner of the card PNG. The sidecar is written first when it does not exist;
an existing sidecar is left as is.

Examples:
  cardmark apply --card-dir cards/2026-Q1/001
  cardmark apply --card-dir cards/2026-Q1/001 --out /tmp/stamped.png --size 48`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.sizeSet = cmd.Flags().Changed("size")
			opts.insetSet = cmd.Flags().Changed("inset")
			return runApply(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cardDir, "card-dir", "", "card directory containing card.json")
	cmd.Flags().StringVar(&opts.in, "in", "", "source PNG (default: <card-dir>/outputs/card_1024x1536.png)")
	cmd.Flags().StringVar(&opts.out, "out", "", "destination PNG (default: overwrite --in)")
	cmd.Flags().IntVar(&opts.size, "size", 0, "sigil size in pixels (default: watermark.raster_size, 36)")
	cmd.Flags().IntVar(&opts.inset, "inset", 0, "distance from the image corner (default: watermark.inset, 12)")
	_ = cmd.MarkFlagRequired("card-dir")

	return cmd
}

func runApply(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *applyOptions) error {
	rt, err := newRuntime(ctx, flags, nil)
	if err != nil {
		return err
	}

	ro := rt.svc.Settings().Raster
	if opts.sizeSet {
		ro.Size = opts.size
	}
	if opts.insetSet {
		ro.Inset = opts.inset
	}
	if err := ro.Validate(); err != nil {
		return err
	}

	res, err := rt.svc.Apply(ctx, opts.cardDir, watermark.ApplyOptions{In: opts.in, Out: opts.out, Raster: ro})
	if err != nil {
		return err
	}

	if flags.Output == OutputJSON {
		return tui.NewOutput(w, flags.Output).JSON(res)
	}
	_, _ = fmt.Fprintln(w, res.ImagePath)
	return nil
}
