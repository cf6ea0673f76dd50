// package formatter renders song lists and listening data to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Table is a titled grid of rows; Data keeps the source value for JSON output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Data    any
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}
}

// Extension returns the file extension for a format, defaulting to JSON.
func Extension(format string) string {
	switch format {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

// SongsTable builds a table of songs: #, ID, Title, Artist, Emotion, File.
func SongsTable(title string, songs []models.Song) Table {
	rows := make([][]string, 0, len(songs))
	for i, s := range songs {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.ID.String(), s.Title, s.Artist, s.EmotionTag, s.FilePath})
	}
	return Table{
		Title:   title,
		Headers: []string{"#", "ID", "Title", "Artist", "Emotion", "File"},
		Rows:    rows,
		Data:    songs,
	}
}

// EmotionHistoryTable builds a table of captures with one-decimal confidence.
func EmotionHistoryTable(records []models.EmotionRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Emotion, models.FormatPercent(r.Confidence, 1), models.DisplayTime(r.Timestamp)})
	}
	return Table{
		Title:   "Emotion History",
		Headers: []string{"Emotion", "Confidence", "Time"},
		Rows:    rows,
		Data:    records,
	}
}

// ListeningHistoryTable builds a table of plays.
func ListeningHistoryTable(records []models.ListeningRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.ID.String(), r.Title, r.Artist, models.DisplayTime(r.Timestamp)})
	}
	return Table{
		Title:   "Listening History",
		Headers: []string{"ID", "Title", "Artist", "Played"},
		Rows:    rows,
		Data:    records,
	}
}

// MostPlayedTable builds a ranked table of played songs.
func MostPlayedTable(songs []models.PlayedSong) Table {
	rows := make([][]string, 0, len(songs))
	for i, s := range songs {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.ID.String(), s.Title, s.Artist, strconv.Itoa(s.PlayCount)})
	}
	return Table{
		Title:   "Most Played",
		Headers: []string{"Rank", "ID", "Title", "Artist", "Plays"},
		Rows:    rows,
		Data:    songs,
	}
}

// StatsTable builds the emotion distribution table with percentage shares.
func StatsTable(stats models.EmotionStats) Table {
	rows := make([][]string, 0, len(stats.Distribution))
	for _, c := range stats.Distribution {
		rows = append(rows, []string{c.Emotion, strconv.Itoa(c.Count), stats.Share(c) + "%"})
	}
	return Table{
		Title:   fmt.Sprintf("Emotion Stats (%d captures)", stats.TotalCaptures),
		Headers: []string{"Emotion", "Count", "Share"},
		Rows:    rows,
		Data:    stats,
	}
}

// ExportToCSV writes the header row followed by every row.
func ExportToCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading and a pipe table. Pipes inside cells are escaped.
func ExportToMarkdown(t Table) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", t.Title))
	if len(t.Rows) == 0 {
		buf.WriteString("_No entries._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| " + strings.Join(escapeCells(t.Headers), " | ") + " |\n")
	sep := make([]string, len(t.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	buf.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range t.Rows {
		buf.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	return buf.Bytes(), nil
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// ExportToText renders an aligned plain-text table.
func ExportToText(t Table) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(t.Title + "\n")
	if len(t.Rows) == 0 {
		buf.WriteString("(none)\n")
		return buf.Bytes(), nil
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = cell + strings.Repeat(" ", widths[i]-len([]rune(cell)))
		}
		buf.WriteString(strings.TrimRight(strings.Join(parts, "  "), " ") + "\n")
	}

	writeRow(t.Headers)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return buf.Bytes(), nil
}

// Render encodes t in the given format.
func Render(t Table, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(t)
	case FormatMarkdown:
		return ExportToMarkdown(t)
	case FormatText:
		return ExportToText(t)
	case FormatJSON, "":
		return shared.MarshalJSON(t.Data, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats(), ", "))
	}
}

// WriteExport renders t and writes it to basePath plus the format's extension, creating parent directories.
func WriteExport(t Table, format, basePath string) (string, error) {
	data, err := Render(t, format)
	if err != nil {
		return "", err
	}

	path := basePath + Extension(format)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
