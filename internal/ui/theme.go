// Package ui provides terminal presentation helpers: headless detection,
// a colour theme and an indeterminate spinner.
package ui

import "os"

// Colors holds the theme's hex colours.
type Colors struct {
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Muted     string
}

// Theme is the colour scheme shared by spinner and prompts.
type Theme struct {
	Colors  Colors
	NoColor bool
}

// NewTheme returns the default theme. Colour is disabled when NO_COLOR is set.
func NewTheme() *Theme {
	_, noColor := os.LookupEnv("NO_COLOR")
	return &Theme{
		Colors: Colors{
			Primary:   "#FF9900",
			Secondary: "#232F3E",
			Success:   "#10B981",
			Warning:   "#F59E0B",
			Error:     "#EF4444",
			Muted:     "#6B7280",
		},
		NoColor: noColor,
	}
}
