package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lectio/internal/api"
)

type checkKind int

const (
	checkInfo checkKind = iota
	checkOK
	checkWarn
	checkFail
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	labelWidth = 20
	indent     = "  "

	// Wide enough for a verse, narrow enough for an 80-column terminal.
	cellWidth = 60
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable draws rows with a rounded border. Columns listed in wrap are
// word-wrapped to cellWidth.
func renderTable(headers []string, rows [][]string, wrap ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(wrap))
	for _, col := range wrap {
		configs = append(configs, table.ColumnConfig{
			Number:           col + 1,
			WidthMax:         cellWidth,
			WidthMaxEnforcer: text.WrapSoft,
			AlignHeader:      text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func renderCheckLine(label string, kind checkKind, message string, colorize bool) string {
	status := fmt.Sprintf("[%s]", kindLabel(kind))
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", indent, labelWidth, label+":", status)
	if colorize {
		return kindColor(kind) + line + ansiReset
	}
	return line
}

func kindLabel(kind checkKind) string {
	switch kind {
	case checkOK:
		return "OK"
	case checkWarn:
		return "WARN"
	case checkFail:
		return "FAIL"
	default:
		return "INFO"
	}
}

func kindColor(kind checkKind) string {
	switch kind {
	case checkOK:
		return ansiGreen
	case checkWarn:
		return ansiYellow
	case checkFail:
		return ansiRed
	default:
		return ansiBlue
	}
}

func renderHeading(title string, colorize bool) string {
	line := "== " + strings.TrimSpace(title) + " =="
	if colorize {
		return ansiBlue + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printReading writes a passage as a heading followed by numbered verses.
func printReading(out io.Writer, reading api.Reading, colorize bool) {
	heading := reading.Title
	if reading.Reference != "" && reading.Reference != reading.Title {
		heading += " (" + reading.Reference + ")"
	}
	fmt.Fprintln(out, renderHeading(heading, colorize))
	if len(reading.Verses) == 0 {
		fmt.Fprintln(out, text.WrapSoft(reading.Text, 78))
		return
	}
	for _, verse := range reading.Verses {
		line := verse.Text
		if verse.Number > 0 {
			line = fmt.Sprintf("%3d  %s", verse.Number, verse.Text)
		}
		fmt.Fprintln(out, text.WrapSoft(line, 78))
	}
}
