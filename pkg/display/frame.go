// Package display draws the LCD to a terminal or an image.
package display

import (
	"fmt"
	"io"
	"strings"

	"gotama/pkg/cpu"
	"gotama/pkg/peripherals"
)

// IconNames labels the eight LCD icons, top row first.
var IconNames = [cpu.IconCount]string{
	"food", "light", "game", "medic",
	"bath", "stats", "scold", "call",
}

const (
	pixelOn  = "█"
	pixelOff = " "

	reverse = "\x1b[7m"
	reset   = "\x1b[0m"
	home    = "\x1b[H"
)

var (
	borderTop    = "┌" + strings.Repeat("─", cpu.LCDWidth) + "┐"
	borderBottom = "└" + strings.Repeat("─", cpu.LCDWidth) + "┘"
)

// iconCell is the column width of one icon label; four fit the frame.
const iconCell = cpu.LCDWidth / 4

// WriteFrame draws one full frame at the cursor home position. Lines end in
// CRLF because the terminal is in raw mode.
func WriteFrame(w io.Writer, lcd peripherals.Matrix, icons peripherals.Icons) error {
	var b strings.Builder
	b.Grow((cpu.LCDWidth*3 + 8) * (cpu.LCDHeight + 4))

	b.WriteString(home)
	b.WriteString(borderTop)
	b.WriteString("\r\n")
	for _, row := range lcd {
		b.WriteString("│")
		for _, on := range row {
			if on {
				b.WriteString(pixelOn)
			} else {
				b.WriteString(pixelOff)
			}
		}
		b.WriteString("│\r\n")
	}
	b.WriteString(borderBottom)
	b.WriteString("\r\n")

	for row := 0; row < 2; row++ {
		b.WriteString(" ")
		for i := row * 4; i < row*4+4; i++ {
			label := fmt.Sprintf("%-*s", iconCell, IconNames[i])
			if icons[i] {
				b.WriteString(reverse + label + reset)
			} else {
				b.WriteString(label)
			}
		}
		b.WriteString("\r\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
