package resource

// Equal reports whether a and b hold the same metadata and the same regions,
// compared by name. Region order and attribute order do not matter; child
// order does.
func Equal(a, b *Resource) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Metadata != b.Metadata || a.RegionCount() != b.RegionCount() {
		return false
	}
	for ra := range a.Regions() {
		rb := b.Region(ra.Name)
		if rb == nil {
			return false
		}
		if !NodeEqual(ra.Root, rb.Root) {
			return false
		}
	}
	return true
}

// NodeEqual reports whether the trees rooted at a and b are structurally
// equal. Parents are not compared.
func NodeEqual(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Name != b.Name || a.AttributeCount() != b.AttributeCount() || len(a.Children) != len(b.Children) {
		return false
	}
	for name, va := range a.Attributes() {
		vb, ok := b.Attribute(name)
		if !ok || !va.Equal(vb) {
			return false
		}
	}
	for i := range a.Children {
		if !NodeEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
