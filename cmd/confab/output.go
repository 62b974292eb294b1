package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"
)

// printOptions controls paragraph layout. columns -1 wraps to the terminal
// width, 0 disables wrapping, and a positive value wraps to a block of that
// width centered on the terminal.
type printOptions struct {
	columns int
	pause   time.Duration
}

// printParagraphs writes paragraphs separated by blank lines, wrapped and
// padded per the options, sleeping between paragraphs when a pause is set.
func printParagraphs(w io.Writer, paragraphs []string, opts printOptions) {
	width, padding := resolveColumns(opts.columns, terminalWidth())
	pad := strings.Repeat(" ", padding)

	for i, p := range paragraphs {
		if i > 0 && opts.pause > 0 {
			time.Sleep(opts.pause)
		}

		if width <= 0 {
			fmt.Fprintln(w, p)
		} else {
			for _, line := range wrapText(p, width) {
				fmt.Fprintf(w, "%s%s\n", pad, line)
			}
		}
		fmt.Fprintln(w)
	}
}

// resolveColumns maps the columns flag to a wrap width and a left padding
// for the given terminal width.
func resolveColumns(columns, termWidth int) (width, padding int) {
	switch {
	case columns == 0:
		return 0, 0
	case columns < 0:
		return termWidth, 0
	default:
		padding = (termWidth - columns) / 2
		if padding < 0 {
			padding = 0
		}
		return columns, padding
	}
}

// terminalWidth reports the width of the terminal on stdout, or 80 when
// stdout is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText greedily wraps text at spaces. A word longer than the width gets
// a line of its own rather than being split.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	lineLen := utf8.RuneCountInString(words[0])
	for _, word := range words[1:] {
		wordLen := utf8.RuneCountInString(word)
		if lineLen+1+wordLen <= width {
			line += " " + word
			lineLen += 1 + wordLen
			continue
		}
		lines = append(lines, line)
		line = word
		lineLen = wordLen
	}
	return append(lines, line)
}
