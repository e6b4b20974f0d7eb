package resource

import (
	"fmt"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Metadata records the engine version and time a resource was written
// with.
type Metadata struct {
	Timestamp    uint64
	MajorVersion uint32
	MinorVersion uint32
	Revision     uint32
	BuildNumber  uint32
}

// Region is an independently stored, named tree of a resource. The region
// name and the name of its root node are distinct and often differ
// ("Config" holding a node named "root").
type Region struct {
	Name string
	Root *Node
}

// Resource is a decoded document: metadata and regions with unique names.
type Resource struct {
	Metadata Metadata

	regions *orderedmap.OrderedMap[string, *Region]
}

func NewResource() *Resource {
	return &Resource{regions: orderedmap.New[string, *Region]()}
}

// AddRegion stores root as the region called name. A region with the same
// name is replaced, keeping its position. root must not be nil.
func (r *Resource) AddRegion(name string, root *Node) *Region {
	if root == nil {
		panic(fmt.Sprintf("resource: region %q has no root node", name))
	}
	if r.regions == nil {
		r.regions = orderedmap.New[string, *Region]()
	}
	root.Parent = nil
	rgn := &Region{Name: name, Root: root}
	r.regions.Set(name, rgn)
	return rgn
}

func (r *Resource) Region(name string) *Region {
	if r.regions == nil {
		return nil
	}
	rgn, _ := r.regions.Get(name)
	return rgn
}

func (r *Resource) RegionCount() int {
	if r.regions == nil {
		return 0
	}
	return r.regions.Len()
}

// Regions iterates over the regions of r in the order they were added.
func (r *Resource) Regions() iter.Seq[*Region] {
	return func(yield func(*Region) bool) {
		if r.regions == nil {
			return
		}
		for p := r.regions.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Value) {
				return
			}
		}
	}
}

// Walk calls f on every node of every region, see Node.Walk.
func (r *Resource) Walk(f func(rgn *Region, y *Node, depth int) (bool, error)) error {
	for rgn := range r.Regions() {
		err := rgn.Root.Walk(func(y *Node, depth int) (bool, error) {
			return f(rgn, y, depth)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
