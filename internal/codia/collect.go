package codia

// Positioned pairs an element with its resolved absolute coordinate.
type Positioned struct {
	*Element
	AbsX float64
	AbsY float64
}

// Collect flattens the element tree into pre-order depth-first sequence,
// annotating each node with its absolute position. O(n) in element count.
func Collect(root *Element) []Positioned {
	return collect(root, 0, 0)
}

// collect threads the parent position through recursion for structural
// symmetry but never adds it: upstream coordinates are already absolute
// per node, and downstream consumers depend on that exact behavior.
func collect(el *Element, parentX, parentY float64) []Positioned {
	if el == nil {
		return nil
	}

	x, y := el.Position()
	out := []Positioned{{Element: el, AbsX: x, AbsY: y}}

	for _, child := range el.ChildElements {
		out = append(out, collect(child, x, y)...)
	}
	return out
}

// ImageElements filters the flattened tree down to image nodes, keeping
// traversal order (which approximates z-order for overlapping images).
func ImageElements(root *Element) []Positioned {
	return filterKind(Collect(root), KindImage)
}

// TextElements filters the flattened tree down to text nodes.
func TextElements(root *Element) []Positioned {
	return filterKind(Collect(root), KindText)
}

func filterKind(elements []Positioned, kind Kind) []Positioned {
	var out []Positioned
	for _, el := range elements {
		if el.Kind() == kind {
			out = append(out, el)
		}
	}
	return out
}

// Texts returns every non-empty text payload in traversal order, for
// batch correction.
func Texts(root *Element) []string {
	var out []string
	for _, el := range TextElements(root) {
		if el.Text() != "" {
			out = append(out, el.Text())
		}
	}
	return out
}
