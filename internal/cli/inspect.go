package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/cardmark/internal/sigil"
	"github.com/mrz1836/cardmark/internal/tui"
	"github.com/mrz1836/cardmark/internal/watermark"
)

type inspectOptions struct {
	cardDir string
	svg     string
}

// AddInspectCommand adds the inspect command to the root command.
func AddInspectCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newInspectCmd(flags))
}

func newInspectCmd(flags *GlobalFlags) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show a card's identity, payload and sigil",
		Long: `Show the identity fields, canonical payload and computed signature of a
card next to what its sidecar embeds, with the 5x5 sigil grid as text.
The signing key is never printed.

Examples:
  cardmark inspect --card-dir cards/2026-Q1/001
  cardmark inspect --card-dir cards/2026-Q1/001 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cardDir, "card-dir", "", "card directory containing card.json")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "sidecar path (default: <card-dir>/watermark.svg)")
	_ = cmd.MarkFlagRequired("card-dir")

	return cmd
}

func runInspect(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *inspectOptions) error {
	rt, err := newRuntime(ctx, flags, nil)
	if err != nil {
		return err
	}

	in, err := rt.svc.Inspect(ctx, opts.cardDir, opts.svg)
	if err != nil {
		return err
	}

	out := tui.NewOutput(w, flags.Output)
	if flags.Output == OutputJSON {
		return out.JSON(in)
	}

	grid, err := sigil.NewGrid(in.Signed.Signature)
	if err != nil {
		return err
	}
	out.Fields(inspectFields(in, tui.RenderGrid(grid)))
	return nil
}

// inspectFields lists what inspect shows, labels title-cased.
func inspectFields(in *watermark.Inspection, grid string) []tui.Field {
	title := cases.Title(language.English)
	id := in.Signed.Identity

	type row struct{ label, value string }
	raw := []row{
		{"series", id.Series},
		{"number", id.Number},
		{"word", id.Word},
		{"rarity", id.Rarity},
		{"card type", id.CardType},
		{"payload", in.Signed.Payload},
		{"signature", in.Signed.Signature},
		{"sidecar", in.SidecarPath},
		{"sidecar present", strconv.FormatBool(in.SidecarPresent)},
	}
	if in.SidecarPresent {
		raw = append(raw,
			row{"embedded signature", orNone(in.EmbeddedSig)},
			row{"embedded payload", orNone(in.EmbeddedPayload)},
			row{"signature matches", strconv.FormatBool(in.SignatureMatches)},
			row{"payload matches", strconv.FormatBool(in.PayloadMatches)},
		)
	}
	raw = append(raw, row{"sigil", grid})

	fields := make([]tui.Field, 0, len(raw))
	for _, r := range raw {
		fields = append(fields, tui.Field{Label: title.String(r.label), Value: r.value})
	}
	return fields
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
