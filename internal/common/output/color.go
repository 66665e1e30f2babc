package output

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	// Change colors
	Updated   = color.New(color.FgGreen)
	Unchanged = color.New(color.Faint)
	New       = color.New(color.FgCyan)
	Skipped   = color.New(color.FgMagenta)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header = color.New(color.FgWhite, color.Bold)
	Tool   = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("! "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintInfo prints an informational message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf(format+"\n", args...)
}

// PrintHeader prints a section header
func PrintHeader(format string, args ...interface{}) {
	Header.Printf(format+"\n", args...)
}

// PrintChange prints a version change line "name: old → new"
func PrintChange(name, oldVersion, newVersion string) {
	Tool.Printf("%s", name)
	fmt.Printf(": %s → ", oldVersion)
	Updated.Printf("%s\n", newVersion)
}
