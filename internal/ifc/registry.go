package ifc

import (
	"sync"

	"github.com/starford/ifcstep/internal/step"
)

var (
	registryOnce sync.Once
	registry     *step.Registry
)

// Registry returns the keywords this package can decode. The registry is
// shared and must not be modified.
func Registry() *step.Registry {
	registryOnce.Do(func() {
		r := step.NewRegistry()
		step.Register[Wall](r)
		step.Register[WallType](r)
		step.Register[Slab](r)
		step.Register[BuildingStorey](r)
		step.Register[Person](r)
		step.Register[Material](r)
		step.Register[MaterialLayer](r)
		step.Register[MaterialLayerSet](r)
		step.Register[MaterialLayerSetUsage](r)
		step.Register[RelAssociatesMaterial](r)
		step.Register[CartesianPoint](r)
		step.Register[Direction](r)
		step.Register[LocalPlacement](r)
		registry = r
	})
	return registry
}

// NewFile returns an empty IFC4 file.
func NewFile(name string) *step.File {
	return step.NewFile("IFC4", name)
}

// Describe returns the GlobalId and name of a rooted entity, or empty
// strings for any other entity.
func Describe(e step.Entity) (globalID, name string) {
	r, ok := e.(Rooted)
	if !ok {
		return "", ""
	}
	root := r.Root()
	if n, ok := root.Name.Custom(); ok {
		name = n.Text()
	}
	return root.GlobalID.Text(), name
}
