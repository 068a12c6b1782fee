package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/analysis"
	"github.com/KaramelBytes/pricecorr-cli/internal/infer"
	"github.com/KaramelBytes/pricecorr-cli/internal/loader"
	"github.com/KaramelBytes/pricecorr-cli/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	insFormat     string
	insSampleRows int
	insOutliers   bool
	insOutlierThr float64
	insSniff      bool
	insQuiet      bool
	insTargets    []string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <files...>",
	Short: "Profile CSV/JSON files and show the detected price and symbol columns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		format := strings.ToLower(strings.TrimSpace(insFormat))
		switch format {
		case "", "text", "md", "markdown", "json", "yaml", "yml":
		default:
			return fmt.Errorf("unsupported --format: %s (use json|yaml|text)", insFormat)
		}

		opt := analysis.DefaultOptions()
		if insSampleRows >= 0 {
			opt.SampleRows = insSampleRows
		}
		opt.Outliers = insOutliers
		if insOutlierThr > 0 {
			opt.OutlierThreshold = insOutlierThr
		}
		if len(insTargets) > 0 {
			opt.Configuration.TargetColumns = insTargets
		}

		lopt := loader.DefaultOptions()
		lopt.StagingDir = current().StagingDir
		if insSniff {
			lopt.Classifier = infer.SampleClassifier{Fallback: infer.HeaderClassifier{}}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !insQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := loader.LoadFile(path, lopt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rep := analysis.Profile(ds, opt)

			var b []byte
			switch format {
			case "json":
				if b, err = utils.PrettyJSON(rep); err != nil {
					return err
				}
			case "yaml", "yml":
				if b, err = yaml.Marshal(rep); err != nil {
					return fmt.Errorf("marshal yaml: %w", err)
				}
			default:
				b = []byte(rep.Markdown())
			}
			fmt.Fprintln(out, strings.TrimRight(string(b), "\n"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insFormat, "format", "f", "text", "output format: json|yaml|text")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include (0 = none)")
	inspectCmd.Flags().BoolVar(&insOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	inspectCmd.Flags().Float64Var(&insOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	inspectCmd.Flags().BoolVar(&insSniff, "sniff", false, "classify CSV columns from sample values instead of header names")
	inspectCmd.Flags().BoolVarP(&insQuiet, "quiet", "q", false, "suppress progress lines")
	inspectCmd.Flags().StringSliceVar(&insTargets, "targets", nil, "comma-separated price columns to try first")
}

// expandInputs resolves glob patterns and literal paths into a sorted,
// de-duplicated file list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}
