package drag

// Rect is a hit region in cell coordinates.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Resolver turns raw enter/leave geometry over folder headers into a single
// authoritative drop candidate. Headers can overlap or nest in the rendered
// layout; the resolver only honors a leave when the pointer is really
// outside the candidate's rectangle, so bubbled leave events don't flicker
// the candidate away.
type Resolver struct {
	armed  bool
	set    bool
	folder *string
	rect   Rect
}

// Arm enables the resolver for the duration of a fragment drag. Folder
// drags never have folder drop targets, so any other kind disarms.
func (r *Resolver) Arm(kind Kind) {
	if kind == KindFragment {
		r.armed = true
		return
	}
	r.Disarm()
}

func (r *Resolver) Disarm() {
	r.armed = false
	r.set = false
	r.folder = nil
	r.rect = Rect{}
}

func (r *Resolver) Armed() bool { return r.armed }

// Enter makes the given folder header (nil = uncategorized) the candidate.
// A new candidate implicitly replaces the previous one.
func (r *Resolver) Enter(folder *string, rect Rect) {
	if !r.armed {
		return
	}
	r.set = true
	r.folder = folder
	r.rect = rect
}

// Leave clears the candidate only when (x, y) is actually outside the
// candidate header's rectangle.
func (r *Resolver) Leave(x, y int) {
	if !r.set {
		return
	}
	if r.rect.Contains(x, y) {
		return
	}
	r.set = false
	r.folder = nil
	r.rect = Rect{}
}

// Current reports the active candidate. ok is false when there is none;
// a nil folder with ok=true is the uncategorized header.
func (r *Resolver) Current() (folder *string, ok bool) {
	if !r.armed || !r.set {
		return nil, false
	}
	return r.folder, true
}
