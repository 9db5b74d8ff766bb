package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PrintBanner writes the nodeweave banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                 _                                   ", "#818cf8"},
		{"  _ __   ___   __| | _____      _____  __ ___   _____ ", "#a78bfa"},
		{" | '_ \\ / _ \\ / _` |/ _ \\ \\ /\\ / / _ \\/ _` \\ \\ / / _ \\", "#c084fc"},
		{" | | | | (_) | (_| |  __/\\ V  V /  __/ (_| |\\ V /  __/", "#e879f9"},
		{" |_| |_|\\___/ \\__,_|\\___| \\_/\\_/ \\___|\\__,_| \\_/ \\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
