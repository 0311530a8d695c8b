package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the assistant banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`  ___            _    _       `, "#d6a77a"},
		{` | _ ) __ _ _ _ (_)__| |_ __ _ `, "#c28e5c"},
		{` | _ \/ _' | '_|| (_-<  _/ _' |`, "#a9744a"},
		{` |___/\__,_|_|  |_/__/\__\__,_|`, "#8b5a34"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}
