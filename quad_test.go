package offscreen

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestFullscreenQuad(t *testing.T) {
	q := FullscreenQuad()
	if len(q) != 4 {
		t.Fatalf("quad has %d vertices, want 4", len(q))
	}
	var minX, minY, maxX, maxY float32 = 1, 1, -1, -1
	for _, v := range q {
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
		// v is flipped relative to y.
		if wantV := (1 - v.Y) / 2; v.V != wantV {
			t.Errorf("vertex %+v: v = %v, want %v", v, v.V, wantV)
		}
		if wantU := (v.X + 1) / 2; v.U != wantU {
			t.Errorf("vertex %+v: u = %v, want %v", v, v.U, wantU)
		}
	}
	if minX != -1 || maxX != 1 || minY != -1 || maxY != 1 {
		t.Errorf("quad bounds [%v,%v]x[%v,%v], want [-1,1]x[-1,1]", minX, maxX, minY, maxY)
	}
}

func TestQuadBytes(t *testing.T) {
	b := quadBytes()
	if len(b) != 64 {
		t.Fatalf("len = %d, want 64", len(b))
	}
	want := []float32{-1, -1, 0, 1, -1, 1, 0, 0, 1, -1, 1, 1, 1, 1, 1, 0}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestQuadVertexLayout(t *testing.T) {
	l := QuadVertexLayout()
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if l.Layouts[0].Stride != 16 || l.Attributes[1].Offset != 8 {
		t.Errorf("layout = %+v", l)
	}
}
