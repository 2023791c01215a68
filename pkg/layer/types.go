package layer

// Kind identifies what a layer node holds.
type Kind string

// Layer kinds known to the classifier. Hosts may report other kinds; they
// are carried through untouched and never match a classification.
const (
	KindGroup      Kind = "GROUP"
	KindPixel      Kind = "PIXEL"
	KindText       Kind = "TEXT"
	KindAdjustment Kind = "ADJUSTMENT"
)

// Bounds is a layer's bounding rectangle in document pixel coordinates.
// Left and Top are inclusive, Right and Bottom exclusive.
type Bounds struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
}

// Width returns Right-Left.
func (b Bounds) Width() int { return b.Right - b.Left }

// Height returns Bottom-Top.
func (b Bounds) Height() int { return b.Bottom - b.Top }

// Empty reports whether the rectangle covers no pixels.
func (b Bounds) Empty() bool { return b.Right <= b.Left || b.Bottom <= b.Top }

// Within reports whether the rectangle lies fully inside a width×height canvas
// and covers at least one pixel.
func (b Bounds) Within(width, height int) bool {
	return b.Left >= 0 && b.Top >= 0 && b.Left < b.Right && b.Top < b.Bottom &&
		b.Right <= width && b.Bottom <= height
}

// Union returns the smallest rectangle containing both b and o.
// An empty operand is ignored.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Bounds{
		Left:   min(b.Left, o.Left),
		Top:    min(b.Top, o.Top),
		Right:  max(b.Right, o.Right),
		Bottom: max(b.Bottom, o.Bottom),
	}
}

// Node is a snapshot of one entry in a document's layer tree.
// Children is only populated for group kinds.
type Node struct {
	ID       string
	Name     string
	Kind     Kind
	Bounds   Bounds
	HasMask  bool
	Children []*Node
}

// IsGroup reports whether the node is a layer group.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }
