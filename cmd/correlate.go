package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/chart"
	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/service"
	"github.com/KaramelBytes/pricecorr-cli/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	corFormat       string
	corOutputPath   string
	corGraphsDir    string
	corNoGraph      bool
	corFields1      string
	corFields2      string
	corTargets      []string
	corNoAutoDetect bool
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <file1> <file2>",
	Short: "Correlate the price changes of two CSV/JSON files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := current()
		format := c.OutputFormat
		if cmd.Flags().Changed("format") {
			format = corFormat
		}
		format = strings.ToLower(strings.TrimSpace(format))
		switch format {
		case "", "text", "md", "markdown":
			format = "text"
		case "json", "yaml", "yml":
		default:
			return fmt.Errorf("unsupported --format: %s (use json|yaml|text)", format)
		}

		req := service.Request{}
		var err error
		if req.File1, err = readInput(args[0]); err != nil {
			return err
		}
		if req.File2, err = readInput(args[1]); err != nil {
			return err
		}
		if req.File1Fields, err = parseFields(corFields1); err != nil {
			return fmt.Errorf("--fields1: %w", err)
		}
		if req.File2Fields, err = parseFields(corFields2); err != nil {
			return fmt.Errorf("--fields2: %w", err)
		}
		if len(corTargets) > 0 || corNoAutoDetect {
			conf := dataset.DefaultConfiguration()
			conf.TargetColumns = corTargets
			conf.AutoDetectColumns = !corNoAutoDetect
			req.Configuration = &conf
		}

		opts := service.Options{StagingDir: c.StagingDir}
		if c.RenderGraphs && !corNoGraph {
			dir := c.GraphsDir
			if corGraphsDir != "" {
				dir = corGraphsDir
			}
			opts.Renderer = chart.HTMLRenderer{Dir: dir}
		}
		res, err := service.New(opts).Analyze(cmd.Context(), req)
		if err != nil {
			return err
		}

		var out []byte
		switch format {
		case "json":
			if out, err = utils.PrettyJSON(res); err != nil {
				return err
			}
		case "yaml", "yml":
			if out, err = yaml.Marshal(res); err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
		default:
			out = []byte(res.Report.Markdown())
		}

		if corOutputPath != "" {
			if err := utils.SafeWriteFile(corOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", corOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	correlateCmd.Flags().StringVarP(&corFormat, "format", "f", "text", "output format: json|yaml|text")
	correlateCmd.Flags().StringVarP(&corOutputPath, "output", "o", "", "optional path to write the report")
	correlateCmd.Flags().StringVar(&corGraphsDir, "graphs-dir", "", "directory that receives graphs/correlations.html (overrides config)")
	correlateCmd.Flags().BoolVar(&corNoGraph, "no-graph", false, "do not render the correlation chart")
	correlateCmd.Flags().StringVar(&corFields1, "fields1", "", "field type hints for file1 as JSON, or @path to a JSON file")
	correlateCmd.Flags().StringVar(&corFields2, "fields2", "", "field type hints for file2 as JSON, or @path to a JSON file")
	correlateCmd.Flags().StringSliceVar(&corTargets, "targets", nil, "comma-separated price columns to try first")
	correlateCmd.Flags().BoolVar(&corNoAutoDetect, "no-auto-detect", false, "only try --targets when detecting price columns")
}

func readInput(path string) (service.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return service.File{Name: path, Data: data}, nil
}

// parseFields decodes a FieldDefinition list given inline or as @file.
func parseFields(v string) ([]dataset.FieldDefinition, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	raw := []byte(v)
	if strings.HasPrefix(v, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(v, "@"))
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var defs []dataset.FieldDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}
