package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/edaloom-cli/internal/utils"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	abOutputDir string
	abFormat    string
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress, one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		format, err := reportFormat(cmd, abFormat)
		if err != nil {
			return err
		}
		outDir := firstNonEmpty(abOutputDir, settings().OutputDir)
		if outDir != "" {
			if err := utils.EnsureDir(appFs, outDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		runID := uuid.NewString()
		start := time.Now()
		logger.Info("batch started", "run", runID, "files", len(files), "format", format)

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			tools, err := openTools(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rep, err := tools.Report(format)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if outDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, strings.TrimRight(rep, "\n"))
				}
				continue
			}
			base := filepath.Base(path)
			stem := strings.TrimSuffix(base, filepath.Ext(base))
			if ldSheetName != "" {
				stem += "__sheet-" + utils.SlugName(ldSheetName, "sheet")
			}
			ext := reportExt(format)
			outFile, err := utils.UniquePath(appFs, outDir, stem, ext)
			if err != nil {
				return err
			}
			if !abQuiet && filepath.Base(outFile) != stem+ext {
				fmt.Fprintf(out, "⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(appFs, outFile, []byte(rep)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote report for %s to %s\n", base, outFile)
			}
		}
		logger.Info("batch finished", "run", runID, "files", total, "elapsed", time.Since(start))
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates, in
// sorted order.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := afero.Glob(appFs, arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if ok, _ := afero.Exists(appFs, arg); ok {
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

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "directory for per-file reports (stdout if omitted)")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "text", "report format: text|json|yaml")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
