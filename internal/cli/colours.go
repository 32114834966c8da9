package cli

import "github.com/fatih/color"

// Colour scheme for status lines.
var (
	Title   = color.New(color.FgCyan, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Success = color.New(color.FgGreen)
	Info    = color.New(color.FgBlue)
	Warning = color.New(color.FgYellow)
)
