package geometry

import "testing"

func TestWKTPoint(t *testing.T) {
	g := NewPoint(2.5, 3)
	if got, want := WKT(g), "POINT (2.5 3)"; got != want {
		t.Fatalf("WKT() = %q, want %q", got, want)
	}
}

func TestWKTPointZ(t *testing.T) {
	g := NewPointZ(2.5, 3, 10)
	if got, want := WKT(g), "POINT Z (2.5 3 10)"; got != want {
		t.Fatalf("WKT() = %q, want %q", got, want)
	}
}

func TestWKTLineString(t *testing.T) {
	g := NewLineString([]Coord{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if got, want := WKT(g), "LINESTRING (0 0,1 1)"; got != want {
		t.Fatalf("WKT() = %q, want %q", got, want)
	}
}

func TestWKTPolygon(t *testing.T) {
	ring := Line{Points: []Coord{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0}}}
	g := NewPolygon([]Line{ring})
	want := "POLYGON ((0 0,0 1,1 1,0 0))"
	if got := WKT(g); got != want {
		t.Fatalf("WKT() = %q, want %q", got, want)
	}
}

func TestWKTMultiPointEmpty(t *testing.T) {
	g := NewMultiPoint(nil)
	if got, want := WKT(g), "MULTIPOINT EMPTY"; got != want {
		t.Fatalf("WKT() = %q, want %q", got, want)
	}
}

func TestEWKT(t *testing.T) {
	g := NewPoint(2.5, 3)
	want := "SRID=3857;POINT (2.5 3)"
	if got := EWKT(g, 3857); got != want {
		t.Fatalf("EWKT() = %q, want %q", got, want)
	}
}
