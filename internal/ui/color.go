package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Renderer is the lipgloss renderer bound to stdout.
// lipgloss v1.x auto-detects TrueColor but doesn't apply it without
// an explicit SetColorProfile call on some terminals.
var Renderer = newRenderer()

func newRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(os.Stdout)
	if os.Getenv("NO_COLOR") != "" {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.TrueColor)
	}
	return r
}

// Predefined styles for consistent CLI output.
var (
	Green  = Renderer.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	Cyan   = Renderer.NewStyle().Foreground(lipgloss.Color("14"))
	Red    = Renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	Yellow = Renderer.NewStyle().Foreground(lipgloss.Color("11"))
	White  = Renderer.NewStyle().Foreground(lipgloss.Color("15"))
	Dim    = Renderer.NewStyle().Foreground(lipgloss.Color("245"))
)

// Success prints a green check followed by msg.
func Success(format string, a ...any) {
	fmt.Println(Green.Render("✓") + " " + fmt.Sprintf(format, a...))
}

// Failure prints a red cross followed by msg.
func Failure(format string, a ...any) {
	fmt.Println(Red.Render("✗") + " " + fmt.Sprintf(format, a...))
}

// Warn prints a yellow exclamation mark followed by msg.
func Warn(format string, a ...any) {
	fmt.Println(Yellow.Render("!") + " " + fmt.Sprintf(format, a...))
}

// Field prints an aligned "label value" line as used by show-style commands.
func Field(label, value string) {
	fmt.Println(Cyan.Render(fmt.Sprintf("%-10s", label)) + White.Render(value))
}
