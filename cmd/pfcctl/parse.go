package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Normalize a raw AI answer",
}

var parseMealCmd = &cobra.Command{
	Use:   "meal [file|-]",
	Short: "Parse a meal analysis answer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		res := utils.ParseMealAnalysis(raw)
		if !res.OK {
			return fmt.Errorf("parse failed: %s", res.Reason)
		}
		// totals are reported as sent; itemSum shows what the items add up to
		return printJSON(cmd.OutOrStdout(), struct {
			utils.MealAnalysisResult
			ItemSum utils.FoodItem `json:"itemSum"`
		}{res.Value, res.Value.SumFoods()})
	},
}

var parseAdviceCmd = &cobra.Command{
	Use:   "advice [file|-]",
	Short: "Parse an advice answer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		return printParsed(cmd.OutOrStdout(), utils.ParseAdvice(raw))
	},
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(b), nil
}

func printParsed[T any](w io.Writer, res utils.ParseResult[T]) error {
	if !res.OK {
		return fmt.Errorf("parse failed: %s", res.Reason)
	}
	return printJSON(w, res.Value)
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.AddCommand(parseMealCmd, parseAdviceCmd)
}
