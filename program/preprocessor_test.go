package program

import (
	"path/filepath"
	"testing"
)

func TestPlain(t *testing.T) {
	sources, err := Includes("../testdata/preprocessor/include-none.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 {
		t.Fatalf("unexpected number of sources: exp %v, got %v", 1, len(sources))
	}
}

func TestIncludeSingle(t *testing.T) {
	sources, err := Includes("../testdata/preprocessor/include-single.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("unexpected number of sources: exp %v, got %v", 2, len(sources))
	}
	if base := filepath.Base(sources[0].Filename); base != "color.glsl" {
		t.Fatalf("the dependency should come first, got %q", base)
	}
}

func TestIncludeRecursive(t *testing.T) {
	sources, err := Includes("../testdata/preprocessor/include-recursive.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 3 {
		t.Fatalf("unexpected number of sources: exp %v, got %v", 3, len(sources))
	}
	for i, exp := range []string{"hash.glsl", "noise.glsl", "include-recursive.glsl"} {
		if base := filepath.Base(sources[i].Filename); base != exp {
			t.Errorf("unexpected source at %d: exp %q, got %q", i, exp, base)
		}
	}
}

func TestStopRecursionCycle(t *testing.T) {
	sources, err := Includes("../testdata/preprocessor/include-cycle.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 {
		t.Fatalf("unexpected number of sources: exp %v, got %v", 1, len(sources))
	}
}

func TestStopMutualRecursion(t *testing.T) {
	sources, err := Includes("../testdata/preprocessor/cycle-a.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("unexpected number of sources: exp %v, got %v", 2, len(sources))
	}
	if base := filepath.Base(sources[1].Filename); base != "cycle-a.glsl" {
		t.Fatalf("the including file should come last, got %q", base)
	}
}

func TestIncludeOnce(t *testing.T) {
	sources, err := Includes("../testdata/preprocessor/include-diamond.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 3 {
		t.Fatalf("unexpected number of sources: exp %v, got %v", 3, len(sources))
	}
}

func TestIncludeMissing(t *testing.T) {
	if _, err := Includes("../testdata/preprocessor/does-not-exist.glsl"); err == nil {
		t.Fatalf("expected an error")
	}
}
