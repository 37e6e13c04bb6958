package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable UI button
type Button struct {
	Label   string
	X, Y    float64
	W, H    float64
	clicked bool   // Track if already clicked this frame
	OnClick func() // Callback function

	// Styling
	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a new button instance
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		W:          width,
		H:          height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

// Update checks for mouse interaction
func (b *Button) Update() {
	b.handle(cursorIn(b.X, b.Y, b.W, b.H), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

// handle fires OnClick once per press while the cursor is over the button.
func (b *Button) handle(over, pressed bool) {
	if over && pressed {
		if !b.clicked && b.OnClick != nil {
			b.OnClick()
		}
		b.clicked = true
		return
	}
	b.clicked = false
}

// Draw renders the button
func (b *Button) Draw(screen *ebiten.Image) {
	// Choose color based on hover state
	bgColor := b.BGColor
	if cursorIn(b.X, b.Y, b.W, b.H) {
		bgColor = b.HoverColor
	}

	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		bgColor, true)

	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+6), int(b.Y+(b.H-16)/2))
}

func (b *Button) Height() float64 { return b.H + 6 }

func (b *Button) moveTo(x, y float64) { b.X, b.Y = x, y }
