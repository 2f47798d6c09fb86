package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/models"
)

var importOverwrite bool

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import pasted CifraClub links from a file or stdin",
	Long: `Reads one link per line (spreadsheet columns are fine: a CifraClub URL and an
optional YouTube URL), imports them one by one and prints what happened to each.
Songs already in the library are reported as "exists" unless --overwrite is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		return runImport(cmd, a.Importer, text, a.Parser.Host(), importOverwrite)
	},
}

func init() {
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "replace songs that are already in the library")
	rootCmd.AddCommand(importCmd)
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

func runImport(cmd *cobra.Command, im *importer.Importer, text, host string, overwrite bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rows := importer.ParsePaste(text, host)
	if len(rows) == 0 {
		return fmt.Errorf("no %s links found", host)
	}

	batch := im.Registry().Create(rows)
	batch, runErr := im.Run(ctx, batch.ID)
	if batch.ID == "" {
		return runErr
	}

	if overwrite && runErr == nil {
		for _, row := range batch.Rows {
			if row.Status != models.ImportExists {
				continue
			}
			resolved, err := im.Resolve(ctx, batch.ID, row.ID, models.DecisionAdoptParsed)
			if err != nil {
				return err
			}
			batch = resolved
		}
	}

	counts := map[string]int{}
	for i, row := range batch.Rows {
		counts[row.Status]++
		fmt.Fprintf(out, "#%-3d %-7s %s%s\n", i+1, row.Status, row.CifraURL, rowNote(row))
	}
	fmt.Fprintf(out, "\n%d done, %d exists, %d error\n",
		counts[models.ImportDone], counts[models.ImportExists], counts[models.ImportError])

	if counts[models.ImportExists] > 0 {
		fmt.Fprintln(out, "Run again with --overwrite to replace the existing songs.")
	}
	return runErr
}

func rowNote(row models.ImportRow) string {
	switch {
	case row.Error != "":
		return "  (" + row.Error + ")"
	case row.SongID != nil:
		return fmt.Sprintf("  (song #%d)", *row.SongID)
	case row.ExistingSongID != nil:
		return fmt.Sprintf("  (already song #%d)", *row.ExistingSongID)
	default:
		return ""
	}
}
