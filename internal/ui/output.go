package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	forceColor   bool
	disableColor bool
)

func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Paint renders s with st when w gets color.
func Paint(w io.Writer, st lipgloss.Style, s string) string {
	if disableColor || (!forceColor && !IsTTY(w)) {
		return s
	}
	return st.Render(s)
}

func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, Paint(w, t.Success, t.SymDone+" "+msg))
}

func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, Paint(w, t.Error, t.SymFail+" "+msg))
}

// TermWidth is the width of the terminal behind w, or fallback.
func TermWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}
