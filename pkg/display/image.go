package display

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	"gotama/pkg/cpu"
	"gotama/pkg/peripherals"
	"gotama/pkg/utils"
)

var (
	LCDBackground = color.RGBA{R: 0xB4, G: 0xC4, B: 0x9C, A: 0xFF}
	LCDPixel      = color.RGBA{R: 0x1C, G: 0x24, B: 0x1C, A: 0xFF}
	LCDIconOff    = color.RGBA{R: 0xA0, G: 0xB0, B: 0x8C, A: 0xFF}
)

// Native layout: one icon row above and one below the dot matrix, each
// icon a 2x1 block centred in a quarter of the width.
const (
	imageWidth  = cpu.LCDWidth
	imageHeight = cpu.LCDHeight + 4
	matrixTop   = 2
)

func iconRect(i int) image.Rectangle {
	x := (i%4)*iconCell + iconCell/2 - 1
	y := 0
	if i >= 4 {
		y = imageHeight - 1
	}
	return image.Rect(x, y, x+2, y+1)
}

// Image renders the LCD and icons scaled up by scale.
func Image(lcd peripherals.Matrix, icons peripherals.Icons, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}

	src := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: LCDBackground}, image.Point{}, draw.Src)

	for y, row := range lcd {
		for x, on := range row {
			if on {
				src.SetRGBA(x, matrixTop+y, LCDPixel)
			}
		}
	}
	for i, on := range icons {
		c := LCDIconOff
		if on {
			c = LCDPixel
		}
		draw.Draw(src, iconRect(i), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, imageWidth*scale, imageHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SavePNG writes img to path, replacing any existing file atomically.
func SavePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save screenshot: %w", err)
	}
	return nil
}
