package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/council/internal/extract"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a contract file and print clause verdicts as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	text, err := extract.Text(content, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("extracting text from %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s contains no extractable text", path)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()

	ctx := cmd.Context()
	units, err := a.segmenter.Segment(ctx, text)
	if err != nil {
		return err
	}

	results := a.driver.Run(ctx, units)

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
