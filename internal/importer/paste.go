package importer

import (
	"regexp"
	"strings"

	"github.com/AndrewDonelson/viola-flow/internal/youtube"
)

// columns in a pasted spreadsheet line are tab or wide-space separated
var columnSep = regexp.MustCompile(`\t+|\s{2,}`)

// ParsePaste turns pasted text (one song per line, optionally followed by a
// video link) into rows. Lines without a source URL are ignored.
func ParsePaste(text, host string) []RowInput {
	var rows []RowInput

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		var row RowInput
		for _, part := range columnSep.Split(trimmed, -1) {
			part = strings.TrimSpace(part)
			switch {
			case part == "":
			case row.CifraURL == "" && strings.Contains(part, host):
				row.CifraURL = part
			case row.YoutubeURL == "" && youtube.IsVideoURL(part):
				row.YoutubeURL = part
			}
		}

		if row.CifraURL == "" && strings.Contains(trimmed, host) {
			row.CifraURL = trimmed
		}
		if row.CifraURL != "" {
			rows = append(rows, row)
		}
	}

	return rows
}
