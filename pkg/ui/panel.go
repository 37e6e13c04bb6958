package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelMargin = 10.0
	titleHeight = 24.0
)

// Panel stacks widgets vertically under a title, on a translucent background.
type Panel struct {
	Title   string
	X, Y    float64
	Width   float64
	Widgets []Widget

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewPanel creates an empty panel
func NewPanel(x, y, width float64, title string) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddButton adds a full-width button under the previous widget.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.Width-2*panelMargin, 22, label, onClick)
	p.add(b)
	return b
}

// AddCheckbox adds a checkbox under the previous widget.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.add(c)
	return c
}

func (p *Panel) add(w Widget) {
	w.moveTo(p.X+panelMargin, p.Y+p.Height()-panelMargin)
	p.Widgets = append(p.Widgets, w)
}

// Height is the height of the title plus every widget.
func (p *Panel) Height() float64 {
	h := titleHeight + 2*panelMargin
	for _, w := range p.Widgets {
		h += w.Height()
	}
	return h
}

// Update handles input for all widgets
func (p *Panel) Update() {
	for _, w := range p.Widgets {
		w.Update()
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	h := p.Height()
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(h),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(h),
		2, p.BorderColor, true)

	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+panelMargin), int(p.Y+5))

	for _, w := range p.Widgets {
		w.Draw(screen)
	}
}
