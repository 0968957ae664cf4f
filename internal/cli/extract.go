package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/extract"
	simage "github.com/jmylchreest/swatch/internal/image"
)

type extractOptions struct {
	format  string
	preview bool
}

// imageResult pairs a Record with the image it came from.
type imageResult struct {
	Image  string          `json:"image"`
	Record *extract.Record `json:"attributes"`
}

func newExtractCmd(a *app) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <image|url|directory>",
		Short: "Extract colour and pattern attributes from garment photos",
		Long: `Extract the dominant colour, centre average colour, colour names and
surface pattern from a garment photo.

The argument may be a local file, an HTTP(S) URL or a directory, in which
case every supported image directly inside it is processed.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract attributes with an ONNX pattern model
  swatch extract --classifier.model models/pattern.onnx.xz shirt.jpg

  # JSON output, reproducible clusters
  swatch extract -f json --cluster.seed 42 shirt.jpg

  # Process a directory with colour swatches in the terminal
  swatch extract --preview ./catalogue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour swatches when writing to a terminal")
	addPipelineFlags(cmd.Flags())
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, target string, opts *extractOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format: %s (supported: text, json)", opts.format)
	}
	if err := simage.ValidateImagePath(target); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	paths := []string{target}
	single := true
	if !simage.IsURL(target) {
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			if paths, err = simage.ScanDirectoryForImages(target); err != nil {
				return err
			}
			single = false
		}
	}

	pipeline, closer, err := a.openPipeline()
	if err != nil {
		return fmt.Errorf("failed to load pattern model: %w", err)
	}
	defer closer.Close()

	ctx := cmd.Context()
	loader := simage.NewSmartLoader()
	results := make([]imageResult, 0, len(paths))
	for _, path := range paths {
		a.logger.Debug("loading image", "path", path)
		img, err := loader.Load(ctx, path)
		if err == nil {
			var record *extract.Record
			if record, err = pipeline.Extract(ctx, img); err == nil {
				results = append(results, imageResult{Image: path, Record: record})
				continue
			}
		}
		if single {
			return fmt.Errorf("failed to extract attributes: %w", err)
		}
		a.logger.Warn("skipping image", "path", path, "error", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no images in %s could be processed", target)
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		return writeJSON(out, results, single)
	}
	fmt.Fprint(out, formatResults(results, opts.preview && isTerminal(out)))
	return nil
}

// writeJSON writes the bare Record for a single image, matching the HTTP
// response, or an array of image results for a directory.
func writeJSON(w io.Writer, results []imageResult, single bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if single {
		return enc.Encode(results[0].Record)
	}
	return enc.Encode(results)
}

func formatResults(results []imageResult, preview bool) string {
	table := NewTable([]string{"Image", "Dominant", "Average", "Pattern", "Confidence"})
	for _, r := range results {
		table.AddRow([]string{
			r.Image,
			colourCell(r.Record.DominantColor, r.Record.DominantColorName, preview),
			colourCell(r.Record.AverageColor, r.Record.AverageColorName, preview),
			r.Record.Pattern,
			r.Record.ConfidenceString(),
		})
	}
	return table.Render()
}

func colourCell(c colour.RGB, name string, preview bool) string {
	cell := fmt.Sprintf("%s %s", name, c.Hex())
	if preview {
		return colour.ColourPreview(c, 2) + " " + cell
	}
	return cell
}

// isTerminal reports whether w is a terminal, so escape sequences are
// never written into files or pipes.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
