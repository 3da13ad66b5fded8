// Package main provides the CLI entry point for xlimage-go.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xlimage-go/internal/config"
	"github.com/ukaji3/xlimage-go/internal/logger"
	"github.com/ukaji3/xlimage-go/pkg/xlimage"
	"github.com/ukaji3/xlimage-go/pkg/xlimage/imaging"
	"github.com/ukaji3/xlimage-go/pkg/xlimage/models"
	"github.com/xuri/excelize/v2"
)

// app carries state shared by the subcommands once flags and config are
// resolved.
type app struct {
	configPath string
	debug      bool
	logJSON    bool
	tempDir    string

	cfg config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{log: logger.Discard()}

	rootCmd := &cobra.Command{
		Use:   "xlimage",
		Short: "Extract pictures anchored to cells of Excel files",
		Long: `xlimage-go finds the picture placed over a worksheet cell of an .xlsx file
and writes it out as a standalone image.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./"+config.FileName+" if present)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log pipeline stages to stderr")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&a.tempDir, "temp-dir", "", "Directory for working files (default: system temp dir)")

	rootCmd.AddCommand(newGetCmd(a), newListCmd(a))
	return rootCmd
}

func (a *app) init(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Log.Debug = a.debug
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = a.logJSON
	}
	if flags.Changed("temp-dir") {
		cfg.TempDir = a.tempDir
	}

	a.cfg = cfg
	a.log = logger.New(stderr, logger.Config{Debug: cfg.Log.Debug, JSON: cfg.Log.JSON})
	return nil
}

func (a *app) options() xlimage.Options {
	opts := xlimage.DefaultOptions()
	opts.TempDir = a.cfg.TempDir
	opts.JPEGQuality = a.cfg.Output.JPEGQuality
	opts.Logger = a.log
	return opts
}

func newGetCmd(a *app) *cobra.Command {
	var (
		sheetName  string
		cellRef    string
		row, col   int
		outputPath string
		format     string
		quality    int
	)

	cmd := &cobra.Command{
		Use:   "get [input.xlsx]",
		Short: "Write the picture covering a cell to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]

			cell, err := parseCell(cellRef, row, col)
			if err != nil {
				return err
			}

			opts := a.options()
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}
			if opts.Format, err = imaging.ParseFormat(format); err != nil {
				return err
			}
			if cmd.Flags().Changed("quality") {
				opts.JPEGQuality = quality
			}

			if outputPath == "-" {
				return writeStdout(cmd.OutOrStdout(), inputPath, sheetName, cell, opts)
			}

			img, err := xlimage.SaveImage(inputPath, sheetName, cell, outputPath, opts)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}
			a.log.Info("picture saved", "media", img.MediaPath, "output", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Worksheet name (exact match)")
	cmd.Flags().StringVarP(&cellRef, "cell", "c", "", "Target cell in A1 notation, e.g. B3")
	cmd.Flags().IntVar(&row, "row", -1, "Target row index (0-based)")
	cmd.Flags().IntVar(&col, "col", -1, "Target column index (0-based)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path, or - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: png, jpeg, gif, bmp, tiff (default: from output extension)")
	cmd.Flags().IntVar(&quality, "quality", imaging.DefaultJPEGQuality, "JPEG quality (1-100)")
	_ = cmd.MarkFlagRequired("sheet")
	_ = cmd.MarkFlagRequired("output")
	cmd.MarkFlagsMutuallyExclusive("cell", "row")
	cmd.MarkFlagsMutuallyExclusive("cell", "col")

	return cmd
}

func writeStdout(w io.Writer, inputPath, sheetName string, cell models.Cell, opts xlimage.Options) error {
	img, err := xlimage.GetImage(inputPath, sheetName, cell, opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	format := opts.Format
	if format == "" {
		format = img.Format
	}
	data, err := imaging.Convert(img.Data, img.Format, format, opts.JPEGQuality)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func newListCmd(a *app) *cobra.Command {
	var (
		sheetName string
		pretty    bool
	)

	cmd := &cobra.Command{
		Use:   "list [input.xlsx]",
		Short: "List the pictures of a workbook as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]

			var result any
			if sheetName != "" {
				sp, err := xlimage.ListPictures(inputPath, sheetName, a.options())
				if err != nil {
					return fmt.Errorf("listing failed: %w", err)
				}
				result = sp
			} else {
				all, err := xlimage.ListAllPictures(inputPath, a.options())
				if err != nil {
					return fmt.Errorf("listing failed: %w", err)
				}
				result = all
			}

			var jsonData []byte
			var err error
			if pretty {
				jsonData, err = json.MarshalIndent(result, "", "  ")
			} else {
				jsonData, err = json.Marshal(result)
			}
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Worksheet name (default: all sheets)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	return cmd
}

// parseCell turns either an A1 reference or a 0-based row/column pair into
// a zero-based cell.
func parseCell(ref string, row, col int) (models.Cell, error) {
	if ref != "" {
		c, r, err := excelize.CellNameToCoordinates(ref)
		if err != nil {
			return models.Cell{}, fmt.Errorf("invalid cell %q: %w", ref, err)
		}
		return models.Cell{Row: r - 1, Col: c - 1}, nil
	}
	if row < 0 || col < 0 {
		return models.Cell{}, errors.New("either --cell or both --row and --col (0-based) are required")
	}
	return models.Cell{Row: row, Col: col}, nil
}
