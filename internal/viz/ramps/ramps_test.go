package ramps

import "testing"

func TestFilter(t *testing.T) {
	all := Filter(SelectAll)
	if len(all) != len(catalog) {
		t.Fatalf("all = %d, want %d", len(all), len(catalog))
	}

	for _, r := range Filter(SelectOpen) {
		switch r.License {
		case "CC0", "CC-BY", "CC-BY-SA", "Public Domain":
		default:
			t.Errorf("open filter returned %s (%s)", r.Name, r.License)
		}
	}

	for _, r := range Filter(SelectDistributable) {
		if !r.Distribute {
			t.Errorf("distributable filter returned %s", r.Name)
		}
	}
	if len(Filter(SelectDistributable)) >= len(all) {
		t.Error("distributable filter removed nothing")
	}
}

func TestCatalogWellFormed(t *testing.T) {
	for _, r := range Catalog() {
		if _, err := r.Stops(0, 1); err != nil {
			t.Errorf("%s: %v", r.Name, err)
		}
	}
}

func TestColorReliefPaint(t *testing.T) {
	r, ok := Lookup("grayscale")
	if !ok {
		t.Fatal("grayscale missing")
	}
	paint, err := ColorReliefPaint(r, 500, 4500, 0.7)
	if err != nil {
		t.Fatal(err)
	}

	expr := paint["color-relief-color"].([]any)
	if expr[0] != "interpolate" {
		t.Errorf("expr[0] = %v", expr[0])
	}
	if expr[3] != 500.0 || expr[4] != "#000000" || expr[5] != 4500.0 || expr[6] != "#ffffff" {
		t.Errorf("stops = %v", expr[3:])
	}
	if paint["color-relief-opacity"] != 0.7 {
		t.Errorf("opacity = %v", paint["color-relief-opacity"])
	}

	if _, err := ColorReliefPaint(r, 10, 10, 1); err == nil {
		t.Error("expected error for empty range")
	}
}
