// Package style provides shared colors and icons for terminal output.
package style

// Colors, as hex strings accepted by termenv.RGBColor.
const (
	Slate  = "#667085"
	Green  = "#22A06B"
	Red    = "#D93025"
	Yellow = "#F59E0B"
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
)
