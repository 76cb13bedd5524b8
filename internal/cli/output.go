package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stock-researcher/internal/config"
)

// applyUISettings applies the [ui] config section: a kill switch for
// colored output and the date and time display formats.
func applyUISettings(ui config.UIConfig) {
	if !ui.ColorEnabled {
		color.NoColor = true
	}
	if ui.DateFormat != "" {
		dateFormat = ui.DateFormat
	}
	if ui.TimeFormat != "" {
		timeFormat = ui.TimeFormat
	}
}

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && !color.NoColor && isTerminal(),
	}
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.colored(color.FgGreen, format, args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.colored(color.FgRed, format, args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.colored(color.FgYellow, format, args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.colored(color.FgCyan, format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if o.colorEnabled {
		fmt.Fprintln(o.writer, color.New(color.Bold).Sprint(msg))
	} else {
		fmt.Fprintln(o.writer, msg)
	}
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if o.colorEnabled {
		fmt.Fprintln(o.writer, color.New(color.Faint).Sprint(msg))
	} else {
		fmt.Fprintln(o.writer, msg)
	}
}

func (o *Output) colored(attr color.Attribute, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if o.colorEnabled {
		fmt.Fprintln(o.writer, color.New(attr).Sprint(msg))
	} else {
		fmt.Fprintln(o.writer, msg)
	}
}

// Green returns green colored text.
func (o *Output) Green(text string) string {
	if o.colorEnabled {
		return color.GreenString(text)
	}
	return text
}

// Red returns red colored text.
func (o *Output) Red(text string) string {
	if o.colorEnabled {
		return color.RedString(text)
	}
	return text
}

// Yellow returns yellow colored text.
func (o *Output) Yellow(text string) string {
	if o.colorEnabled {
		return color.YellowString(text)
	}
	return text
}

// Cyan returns cyan colored text.
func (o *Output) Cyan(text string) string {
	if o.colorEnabled {
		return color.CyanString(text)
	}
	return text
}

// FormatChangeColored formats a price change with direction color.
func (o *Output) FormatChangeColored(change, changePct float64) string {
	text := FormatChange(change, changePct)
	if change > 0 {
		return o.Green(text)
	}
	if change < 0 {
		return o.Red(text)
	}
	return text
}

// Signal colors an overall signal label.
func (o *Output) Signal(signal string) string {
	switch signal {
	case "BULLISH":
		return o.Green("📈 " + signal)
	case "BEARISH":
		return o.Red("📉 " + signal)
	default:
		return o.Yellow("→ " + signal)
	}
}

// Rating colors a fundamental rating label.
func (o *Output) Rating(rating string) string {
	switch rating {
	case "STRONG BUY", "BUY":
		return o.Green(rating)
	case "SELL", "STRONG SELL":
		return o.Red(rating)
	case "HOLD":
		return o.Yellow(rating)
	default:
		return rating
	}
}

// MarketStatusText colors a market status label.
func (o *Output) MarketStatusText(status string) string {
	switch status {
	case "OPEN":
		return o.Green("● OPEN")
	case "CLOSED":
		return o.Red("● CLOSED")
	case "PRE_OPEN":
		return o.Yellow("● PRE-OPEN")
	default:
		return status
	}
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		output:  output,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	var parts []string
	for i, cell := range cells {
		if i < len(widths) {
			padded := PadRight(cell, widths[i])
			if isHeader && t.output.colorEnabled {
				padded = color.New(color.Bold).Sprint(padded)
			}
			parts = append(parts, padded)
		}
	}
	t.output.Println(strings.Join(parts, "  "))
}

func (t *Table) printSeparator(widths []int) {
	var parts []string
	for _, w := range widths {
		parts = append(parts, strings.Repeat("─", w))
	}
	t.output.Println(strings.Join(parts, "──"))
}
