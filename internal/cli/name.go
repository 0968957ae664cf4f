package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/config"
)

func newNameCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "name <r> <g> <b> | name <#hex>",
		Short: "Name a colour from the garment colour table",
		Long: `Print the garment colour table name for an RGB triple or hex code.

Examples:
  swatch name 34 139 34
  swatch name '#228b22'
  swatch name --namer.metric lab 200 30 40
  swatch name --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("expected <#hex> or <r> <g> <b>, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			namer, err := a.cfg.NewNamer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if list {
				for _, name := range namer.Vocabulary() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			c, err := parseColourArgs(args)
			if err != nil {
				return err
			}
			name := namer.Name(c)
			if isTerminal(out) {
				fmt.Fprintf(out, "%s %s\n", colour.ColourPreviewWithText(c, name, len(name)+4), c.Hex())
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", name, c.Hex())
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list every name the table can produce")
	cmd.Flags().String(config.KeyNamerMetric, "rgb", "colour naming metric (rgb, lab)")
	return cmd
}

func parseColourArgs(args []string) (colour.RGB, error) {
	if len(args) == 1 {
		return colour.ParseHex(args[0])
	}
	var ch [3]uint8
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return colour.RGB{}, fmt.Errorf("invalid channel %q: must be 0-255", arg)
		}
		ch[i] = uint8(v)
	}
	return colour.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}
