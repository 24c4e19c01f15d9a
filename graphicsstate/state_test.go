package graphicsstate

import (
	"errors"
	"math"
	"testing"

	"github.com/tsawler/gridmatch/model"
)

func TestMatrix(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 2))
	if got, want := m.Transform(model.Point{X: 1, Y: 1}), (model.Point{X: 22, Y: 42}); got != want {
		t.Errorf("Transform() = %v, want %v", got, want)
	}
	if got := Identity().Multiply(m); got != m {
		t.Errorf("Identity().Multiply(m) = %v, want %v", got, m)
	}
	if got := Scale(3, 3).LineScale(); math.Abs(got-3) > 1e-9 {
		t.Errorf("LineScale() = %v, want 3", got)
	}
	// 90 degree rotation keeps widths
	if got := (Matrix{0, 1, -1, 0, 0, 0}).LineScale(); math.Abs(got-1) > 1e-9 {
		t.Errorf("rotation LineScale() = %v, want 1", got)
	}
}

func TestGraphicsState_SaveRestore(t *testing.T) {
	gs := NewGraphicsState()
	gs.LineWidth = 3
	gs.FillColor = model.Red
	gs.Save()
	gs.LineWidth = 5
	gs.FillColor = model.Green
	gs.Transform(Scale(2, 2))

	if gs.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", gs.Depth())
	}
	if err := gs.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if gs.LineWidth != 3 || gs.FillColor != model.Red || gs.CTM != Identity() {
		t.Errorf("restored state = %+v", gs)
	}
	if err := gs.Restore(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Restore() error = %v, want %v", err, ErrStackUnderflow)
	}
}

func TestGraphicsState_Transform(t *testing.T) {
	gs := NewGraphicsState()
	gs.Transform(Translate(10, 0))
	gs.Transform(Scale(2, 2))

	// the later cm applies in the translated system
	if got, want := gs.CTM.Transform(model.Point{X: 1, Y: 0}), (model.Point{X: 12, Y: 0}); got != want {
		t.Errorf("CTM.Transform() = %v, want %v", got, want)
	}

	gs.LineWidth = 1.5
	style := gs.Style(true, false)
	if style.StrokeWidth != 3 || !style.Stroked || style.Filled {
		t.Errorf("Style() = %+v", style)
	}
}

func TestDeviceColor(t *testing.T) {
	tests := []struct {
		in     []float64
		want   model.Color
		wantOK bool
	}{
		{[]float64{0.5}, model.Gray(0.5), true},
		{[]float64{0.7, 1, 0.7}, model.Color{R: 0.7, G: 1, B: 0.7}, true},
		{[]float64{0, 0, 0, 0}, model.White, true},
		{[]float64{1, 0, 0, 0}, model.Color{R: 0, G: 1, B: 1}, true},
		{[]float64{0, 0, 0, 1}, model.Black, true},
		{[]float64{1.5, -1, 0}, model.Red, true},
		{[]float64{1, 2}, model.Color{}, false},
		{nil, model.Color{}, false},
	}

	for _, tt := range tests {
		got, ok := DeviceColor(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("DeviceColor(%v) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
