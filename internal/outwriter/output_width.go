package outwriter

import (
	"os"

	"golang.org/x/term"
)

// getMaxTableNameWidth calculates the maximum width for repository names in table
// output based on terminal width and the fixed columns of the table.
func getMaxTableNameWidth(fixedWidth int) int {
	// Get terminal width
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		termWidth = 80 // Conservative default for narrow terminals and CI
	}

	// Reserve generous space for table borders, separators, and padding
	available := termWidth - fixedWidth - 20
	if available < 15 {
		// Minimum reasonable name width
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
