package tree

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeHierarchyRoot(t *testing.T) {
	place := ComputeHierarchy[struct{}](nil)
	if place.Level != 0 {
		t.Errorf("level: got %d, want 0", place.Level)
	}
	if place.Path != "" {
		t.Errorf("path: got %q, want empty", place.Path)
	}
}

func TestComputeHierarchyUnderRoot(t *testing.T) {
	parent := &Node[struct{}]{ID: uuid.New(), Level: 0, Path: ""}
	place := ComputeHierarchy(parent)
	if place.Level != 1 {
		t.Errorf("level: got %d, want 1", place.Level)
	}
	if place.Path != parent.ID.String() {
		t.Errorf("path: got %q, want %q", place.Path, parent.ID)
	}
}

func TestComputeHierarchyDeep(t *testing.T) {
	grandparent := uuid.New()
	parent := &Node[struct{}]{ID: uuid.New(), Level: 1, Path: grandparent.String()}
	place := ComputeHierarchy(parent)
	if place.Level != 2 {
		t.Errorf("level: got %d, want 2", place.Level)
	}
	want := grandparent.String() + "/" + parent.ID.String()
	if place.Path != want {
		t.Errorf("path: got %q, want %q", place.Path, want)
	}
}

func TestSegments(t *testing.T) {
	if got := Segments(""); got != nil {
		t.Errorf("Segments(\"\") = %v, want nil", got)
	}
	a, b := uuid.New(), uuid.New()
	segs := Segments(a.String() + "/" + b.String())
	if len(segs) != 2 || segs[0] != a.String() || segs[1] != b.String() {
		t.Errorf("Segments = %v, want [%s %s]", segs, a, b)
	}
}

func TestPathContains(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	path := a.String() + "/" + b.String()

	if !PathContains(path, a) {
		t.Error("expected path to contain first segment")
	}
	if !PathContains(path, b) {
		t.Error("expected path to contain second segment")
	}
	if PathContains(path, c) {
		t.Error("did not expect path to contain unrelated id")
	}
	if PathContains("", a) {
		t.Error("empty path contains nothing")
	}
}

func TestSameParent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	a2 := a

	if !SameParent(nil, nil) {
		t.Error("nil == nil")
	}
	if SameParent(&a, nil) || SameParent(nil, &a) {
		t.Error("nil != non-nil")
	}
	if !SameParent(&a, &a2) {
		t.Error("same id should match")
	}
	if SameParent(&a, &b) {
		t.Error("different ids should not match")
	}
}

// TestLevelMatchesSegments checks the denormalization invariant: a node's
// level always equals the number of segments in its path.
func TestLevelMatchesSegments(t *testing.T) {
	node := (*Node[struct{}])(nil)
	for level := 0; level < 5; level++ {
		place := ComputeHierarchy(node)
		if place.Level != level {
			t.Fatalf("level: got %d, want %d", place.Level, level)
		}
		if got := len(Segments(place.Path)); got != level {
			t.Fatalf("segments: got %d, want %d", got, level)
		}
		node = &Node[struct{}]{ID: uuid.New(), Level: place.Level, Path: place.Path}
	}
}
