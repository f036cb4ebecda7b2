package game

import "testing"

func TestDir_DeltaAndOpposite(t *testing.T) {
	for _, d := range []Dir{DirUp, DirDown, DirLeft, DirRight} {
		dx, dy := d.Delta()
		if dx*dx+dy*dy != 1 {
			t.Fatalf("%s delta is not a unit step: (%d,%d)", d, dx, dy)
		}
		ox, oy := d.Opposite().Delta()
		if ox != -dx || oy != -dy {
			t.Fatalf("%s opposite delta (%d,%d), want (%d,%d)", d, ox, oy, -dx, -dy)
		}
		if d.Opposite().Opposite() != d {
			t.Fatalf("%s opposite is not an involution", d)
		}
	}
}

func TestDir_ParseRoundTrip(t *testing.T) {
	for _, d := range []Dir{DirUp, DirDown, DirLeft, DirRight} {
		got, ok := ParseDir(d.String())
		if !ok || got != d {
			t.Fatalf("ParseDir(%q) = %v, %v", d.String(), got, ok)
		}
	}
	if _, ok := ParseDir("diagonal"); ok {
		t.Fatalf("ParseDir accepted a bad heading")
	}
}

func TestPoint_In(t *testing.T) {
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{8, 8}, true},
		{Point{-1, 4}, false},
		{Point{4, -1}, false},
		{Point{9, 4}, false},
		{Point{4, 9}, false},
	}
	for _, c := range cases {
		if got := c.p.In(9, 9); got != c.want {
			t.Fatalf("In(%+v) = %v want %v", c.p, got, c.want)
		}
	}
}

func TestPoint_AddMovesUpward(t *testing.T) {
	p := Point{X: 3, Y: 3}.Add(DirUp)
	if p != (Point{X: 3, Y: 4}) {
		t.Fatalf("up from (3,3) = %+v", p)
	}
}
