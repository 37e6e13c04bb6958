package ui

import "github.com/hajimehoshi/ebiten/v2"

// Widget is anything a Panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	moveTo(x, y float64)
}

// contains reports whether the point (px, py) lies in the rectangle.
func contains(x, y, w, h float64, px, py int) bool {
	fx, fy := float64(px), float64(py)
	return fx >= x && fx <= x+w && fy >= y && fy <= y+h
}

// cursorIn reports whether the mouse cursor lies in the rectangle.
func cursorIn(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	return contains(x, y, w, h, mx, my)
}
