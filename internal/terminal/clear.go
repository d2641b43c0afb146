// Package terminal provides utilities for terminal operations such as
// clearing previously printed text.
package terminal

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines clears text from the terminal that was previously
// printed. It calculates how many lines were used by the provided text based
// on the current terminal width, then moves up and clears each line. Used to
// scrub credential prompts after the user presses Enter.
func ClearPreviousLines(textLength int) {
	termWidth := 80 // default fallback
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1
	}

	// After Enter the cursor sits on a fresh line below the input.
	for i := 0; i < totalLines+1; i++ {
		fmt.Print("\033[1A") // move up one line
		fmt.Print("\033[2K") // clear entire line
	}
	fmt.Print("\r")
}
