package drag

import "testing"

func TestResolverOnlyArmsForFragmentDrags(t *testing.T) {
	var r Resolver

	r.Arm(KindFolder)
	r.Enter(strPtr("fold-1"), Rect{X: 0, Y: 0, W: 10, H: 1})
	if _, ok := r.Current(); ok {
		t.Fatalf("resolver armed for a folder drag")
	}

	r.Arm(KindFragment)
	r.Enter(strPtr("fold-1"), Rect{X: 0, Y: 0, W: 10, H: 1})
	if id, ok := r.Current(); !ok || id == nil || *id != "fold-1" {
		t.Fatalf("candidate = %v, %v", id, ok)
	}
}

func TestResolverLeaveOnlyClearsOutsideRect(t *testing.T) {
	var r Resolver
	r.Arm(KindFragment)
	r.Enter(strPtr("fold-1"), Rect{X: 2, Y: 5, W: 10, H: 2})

	// A bubbled leave while the pointer is still inside must not flicker
	// the candidate away.
	r.Leave(4, 6)
	if _, ok := r.Current(); !ok {
		t.Fatalf("leave inside rect cleared the candidate")
	}

	r.Leave(1, 5)
	if _, ok := r.Current(); ok {
		t.Fatalf("leave outside rect kept the candidate")
	}
}

func TestResolverNewCandidateReplacesPrevious(t *testing.T) {
	var r Resolver
	r.Arm(KindFragment)
	r.Enter(strPtr("fold-1"), Rect{X: 0, Y: 0, W: 5, H: 1})
	r.Enter(nil, Rect{X: 0, Y: 4, W: 5, H: 1})

	id, ok := r.Current()
	if !ok || id != nil {
		t.Fatalf("candidate = %v, %v; want uncategorized", id, ok)
	}
}

func TestResolverDisarmClearsEverything(t *testing.T) {
	var r Resolver
	r.Arm(KindFragment)
	r.Enter(strPtr("fold-1"), Rect{X: 0, Y: 0, W: 5, H: 1})
	r.Disarm()

	if _, ok := r.Current(); ok {
		t.Fatalf("disarm left a candidate")
	}
	r.Enter(strPtr("fold-2"), Rect{X: 0, Y: 0, W: 5, H: 1})
	if _, ok := r.Current(); ok {
		t.Fatalf("disarmed resolver accepted an enter")
	}
}
