package colour

import (
	"fmt"
	"strings"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// ColourPreview returns an ANSI-coloured preview string for a colour.
// Width specifies how many characters wide the colour block should be.
// Uses background colour with spaces for a solid block.
func ColourPreview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	return background(c) + strings.Repeat(" ", width) + ansiReset
}

// ColourPreviewWithText returns a colour preview with text overlay.
// The text colour is black or white, whichever contrasts with the block.
func ColourPreviewWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	fg := RGB{R: 255, G: 255, B: 255}
	if Luminance(c) > 0.5 {
		fg = RGB{}
	}

	// Pad or truncate text to fit width.
	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return background(c) + foreground(fg) + displayText + ansiReset
}

func background(c RGB) string {
	return fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
}

func foreground(c RGB) string {
	return fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, c.R, c.G, c.B, ansiSuffix)
}
