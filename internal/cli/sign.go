package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cardmark/internal/tui"
	"github.com/mrz1836/cardmark/internal/watermark"
)

type signOptions struct {
	cardDir string
	out     string
	size    int
}

// AddSignCommand adds the sign command to the root command.
func AddSignCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newSignCmd(flags))
}

func newSignCmd(flags *GlobalFlags) *cobra.Command {
	opts := &signOptions{}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a card and write its watermark sidecar",
		Long: `Sign a card's identity and (re)write its vector sidecar.

The sidecar carries the signature and canonical payload in XML comments
followed by the sigil drawn as SVG.

Examples:
  cardmark sign --card-dir cards/2026-Q1/001
  cardmark sign --card-dir cards/2026-Q1/001 --out /tmp/mark.svg --size 144`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSign(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cardDir, "card-dir", "", "card directory containing card.json")
	cmd.Flags().StringVar(&opts.out, "out", "", "sidecar path (default: <card-dir>/watermark.svg)")
	cmd.Flags().IntVar(&opts.size, "size", 0, "sidecar size in pixels (default: watermark.svg_size, 72)")
	_ = cmd.MarkFlagRequired("card-dir")

	return cmd
}

func runSign(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *signOptions) error {
	rt, err := newRuntime(ctx, flags, nil)
	if err != nil {
		return err
	}

	path, err := rt.svc.Sign(ctx, opts.cardDir, watermark.SignOptions{Out: opts.out, Size: opts.size})
	if err != nil {
		return err
	}

	if flags.Output == OutputJSON {
		return tui.NewOutput(w, flags.Output).JSON(map[string]string{"sidecar_path": path})
	}
	_, _ = fmt.Fprintln(w, path)
	return nil
}
