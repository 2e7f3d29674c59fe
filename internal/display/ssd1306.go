package display

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Address is the I2C address the periph driver always uses.
const Address = 0x3C

// SSD1306 draws frames on an I2C SSD1306 OLED.
type SSD1306 struct {
	dev  *ssd1306.Dev
	face *basicfont.Face
}

// NewSSD1306 opens an SSD1306 of the given size at Address on bus.
func NewSSD1306(bus i2c.Bus, width, height int) (*SSD1306, error) {
	opts := ssd1306.DefaultOpts
	opts.W = width
	opts.H = height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("init ssd1306: %w", err)
	}
	return &SSD1306{dev: dev, face: basicfont.Face7x13}, nil
}

// Width returns the panel width in pixels.
func (s *SSD1306) Width() int { return s.dev.Bounds().Dx() }

// Render clears the panel and draws f, vertically centred.
func (s *SSD1306) Render(f Frame) error {
	bounds := s.dev.Bounds()
	img := image1bit.NewVerticalLSB(bounds)
	drawText(img, s.face, f)
	if err := s.dev.Draw(bounds, img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Halt turns the panel off.
func (s *SSD1306) Halt() error {
	return s.dev.Halt()
}

// drawText rasterises each line at native size and scales it into dst.
func drawText(dst xdraw.Image, face *basicfont.Face, f Frame) {
	scale := f.Scale
	if scale < 1 {
		scale = 1
	}
	lines := strings.Split(f.Text, "\n")
	lineH := face.Height * scale
	top := (dst.Bounds().Dy() - lineH*len(lines)) / 2
	if top < 0 {
		top = 0
	}

	for i, line := range lines {
		if line == "" {
			continue
		}
		w := face.Advance * len([]rune(line))
		glyphs := image.NewGray(image.Rect(0, 0, w, face.Height))
		d := font.Drawer{
			Dst:  glyphs,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot:  fixed.P(0, face.Ascent),
		}
		d.DrawString(line)

		dr := image.Rect(f.X, top+i*lineH, f.X+w*scale, top+(i+1)*lineH)
		xdraw.NearestNeighbor.Scale(dst, dr, glyphs, glyphs.Bounds(), xdraw.Over, nil)
	}
}
