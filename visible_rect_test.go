package compositor

import (
	"image"
	"testing"

	"github.com/gogpu/compositor/geom"
)

func TestCalculateVisibleRect(t *testing.T) {
	tests := []struct {
		name   string
		target image.Rectangle
		layer  image.Rectangle
		m      geom.Transform
		want   image.Rectangle
	}{
		{
			name:   "fully inside",
			target: image.Rect(0, 0, 100, 100),
			layer:  image.Rect(0, 0, 30, 30),
			m:      geom.Identity().Translate(10, 10),
			want:   image.Rect(0, 0, 30, 30),
		},
		{
			name:   "partially outside",
			target: image.Rect(0, 0, 100, 100),
			layer:  image.Rect(0, 0, 30, 30),
			m:      geom.Identity().Translate(80, 90),
			want:   image.Rect(0, 0, 20, 10),
		},
		{
			name:   "fully outside",
			target: image.Rect(0, 0, 100, 100),
			layer:  image.Rect(0, 0, 30, 30),
			m:      geom.Identity().Translate(200, 0),
			want:   image.Rectangle{},
		},
		{
			name:   "scaled",
			target: image.Rect(0, 0, 100, 100),
			layer:  image.Rect(0, 0, 100, 100),
			m:      geom.Identity().Scale(2, 2),
			want:   image.Rect(0, 0, 50, 50),
		},
		{
			name:   "empty target",
			target: image.Rectangle{},
			layer:  image.Rect(0, 0, 30, 30),
			m:      geom.Identity(),
			want:   image.Rectangle{},
		},
		{
			name:   "rotated 45 degrees",
			target: image.Rect(0, 0, 100, 100),
			layer:  image.Rect(0, 0, 30, 30),
			m:      geom.Identity().Translate(50, 0).RotateAboutZAxis(45),
			want:   image.Rect(0, 0, 30, 30),
		},
		{
			name:   "huge scale",
			target: image.Rect(0, 0, 100, 100),
			layer:  image.Rect(0, 0, 10, 10),
			m:      geom.Identity().Scale(1e37, 1e37),
			want:   image.Rectangle{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateVisibleRect(tt.target, tt.layer, tt.m)
			if got != tt.want {
				t.Errorf("CalculateVisibleRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateVisibleRectPerspective(t *testing.T) {
	// A layer tilted away behind the camera is only partly visible; the
	// result must stay finite and inside the layer.
	m := geom.Identity().
		ApplyPerspectiveDepth(10).
		RotateAboutXAxis(80)
	layer := image.Rect(-50, -50, 50, 50)
	got := CalculateVisibleRect(image.Rect(-100, -100, 100, 100), layer, m)
	if !got.In(layer) {
		t.Errorf("CalculateVisibleRect() = %v, want inside %v", got, layer)
	}
}
