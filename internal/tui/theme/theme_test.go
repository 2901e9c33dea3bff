package theme

import "testing"

func TestNextWraps(t *testing.T) {
	if got := Next(All[len(All)-1].Name); got.Name != All[0].Name {
		t.Fatalf("Next(last) = %q, want %q", got.Name, All[0].Name)
	}
	if got := Next("flexoki-dark"); got.Name != "flexoki-light" {
		t.Fatalf("Next(flexoki-dark) = %q", got.Name)
	}
	if got := Next("unknown"); got.Name != All[0].Name {
		t.Fatalf("Next(unknown) = %q", got.Name)
	}
}

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("nope"); got.Name != FlexokiDark.Name {
		t.Fatalf("ByName(nope) = %q", got.Name)
	}
	if !Known("terminal") || Known("nope") {
		t.Fatal("Known mismatch")
	}
	if len(Names()) != len(All) {
		t.Fatal("Names length mismatch")
	}
}
