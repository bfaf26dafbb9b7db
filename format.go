package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// statusf prints a status message to stderr unless quiet mode is set.
func statusf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printTable writes aligned columns to the given writer.
// headers and each row must have the same length.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow(w, headers, widths)

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
	}

	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}

// progressPrinter renders per-file transfer progress. On a terminal it
// redraws a single "name: NN%" line; otherwise it stays silent between the
// per-file start lines so piped output is not flooded.
type progressPrinter struct {
	out         io.Writer
	tty         bool
	lastPercent int
}

func newProgressPrinter() *progressPrinter {
	return &progressPrinter{
		out:         os.Stderr,
		tty:         isatty.IsTerminal(os.Stderr.Fd()),
		lastPercent: -1,
	}
}

// StartFile announces the next file in the batch.
func (p *progressPrinter) StartFile(index int, name string, totalFiles int) {
	p.lastPercent = -1

	statusf("Transferring file %d/%d: %s\n", index+1, totalFiles, name)
}

// FileProgress redraws the current file's percentage on every change.
func (p *progressPrinter) FileProgress(name string, sent, total int64) {
	if !p.tty || flagQuiet || total <= 0 {
		return
	}

	percent := int(sent * 100 / total)
	if percent == p.lastPercent {
		return
	}

	p.lastPercent = percent

	fmt.Fprintf(p.out, "\r%s: %d%%", name, percent)

	if percent >= 100 {
		fmt.Fprintln(p.out)
	}
}

// Percent adapts the printer to download progress reporting.
func (p *progressPrinter) Percent(percent int) {
	if !p.tty || flagQuiet {
		return
	}

	if percent == p.lastPercent {
		return
	}

	p.lastPercent = percent

	fmt.Fprintf(p.out, "\r%d%%", percent)

	if percent >= 100 {
		fmt.Fprintln(p.out)
	}
}
