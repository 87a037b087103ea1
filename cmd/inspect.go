package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/query"
	"github.com/KaramelBytes/edaloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var corrThreshold string

var overviewCmd = &cobra.Command{
	Use:   "overview <file>",
	Short: "Show shape, memory usage, column names and declared types",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		out, err := tools.Overview()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var qualityCmd = &cobra.Command{
	Use:   "quality <file>",
	Short: "Report missing values and duplicate rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tools.Quality())
		return nil
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "List all columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tools.Columns())
		return nil
	},
}

var columnCmd = &cobra.Command{
	Use:   "column <file> <name>",
	Short: "Analyze one column in detail",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		out, err := tools.DescribeColumn(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var correlationsCmd = &cobra.Command{
	Use:   "correlations <file>",
	Short: "List numeric column pairs with |r| above a threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		th := corrThreshold
		if !cmd.Flags().Changed("threshold") {
			th = strconv.FormatFloat(settings().CorrelationThreshold, 'f', -1, 64)
		}
		fmt.Fprint(cmd.OutOrStdout(), tools.DescribeCorrelations(th))
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights <file>",
	Short: "Show automated insights and recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tools.DescribeInsights())
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <file> <col1,col2,...>",
	Short: "Compare statistics between columns",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		out, err := tools.DescribeComparison(query.ParseColumnList(strings.Join(args[1:], ",")))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var vizCmd = &cobra.Command{
	Use:   "viz <file> <column>",
	Short: "Print the chart payload of a column as JSON",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := openTools(args[0])
		if err != nil {
			return err
		}
		v, err := tools.Visualization(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd, qualityCmd, columnsCmd, columnCmd, correlationsCmd, insightsCmd, compareCmd, vizCmd)
	correlationsCmd.Flags().StringVarP(&corrThreshold, "threshold", "t", "0.7", "absolute correlation threshold (invalid values fall back to 0.7)")
}
