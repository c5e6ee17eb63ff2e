package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/core/parser"
	"github.com/penwyp/go-claude-usage/internal/presentation/formatter"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:    "parse [file|-]",
	Short:  "Debug command to parse captured /usage output",
	Long:   `Parses text captured from "claude /usage" (a file, or stdin when omitted or "-") and prints the snapshot without touching the shared store.`,
	Args:   cobra.MaximumNArgs(1),
	Hidden: true, // Hidden from help
	RunE:   runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if _, err := initRuntime(cmd); err != nil {
		return err
	}
	defer util.CloseLogger()

	out, err := formatter.NewFormatter(outputFormat)
	if err != nil {
		return err
	}

	raw, err := readParseInput(cmd, args)
	if err != nil {
		return err
	}

	now := util.GetTimeProvider().Now()
	snapshot, err := parser.Parse(string(raw), now)
	if err != nil {
		return err
	}

	return out.FormatUsage(cmd.OutOrStdout(), formatter.Report{
		Snapshot:    snapshot,
		Preferences: model.DefaultPreferences(),
		GeneratedAt: now,
	})
}

func readParseInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	path := expandPath(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
