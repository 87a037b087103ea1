package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaFormat     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX file and produce a full EDA report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := reportFormat(cmd, anaFormat)
		if err != nil {
			return err
		}
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		out, err := tools.Report(format)
		if err != nil {
			return err
		}

		// Decide where to write: --output path or stdout
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(appFs, anaOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
		return nil
	},
}

// reportFormat returns the --format flag, or the configured format when the
// flag was not given.
func reportFormat(cmd *cobra.Command, flag string) (string, error) {
	format := settings().ReportFormat
	if cmd.Flags().Changed("format") {
		format = flag
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "", "text", "markdown", "md":
		return "text", nil
	case "json", "yaml", "yml":
		return format, nil
	}
	return "", fmt.Errorf("unsupported --format: %s (use text|json|yaml)", format)
}

// reportExt is the file suffix used for a report format.
func reportExt(format string) string {
	switch format {
	case "json":
		return ".report.json"
	case "yaml", "yml":
		return ".report.yaml"
	}
	return ".report.txt"
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to this file instead of stdout")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "text", "report format: text|json|yaml")
}
