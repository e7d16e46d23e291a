package ifc

import (
	"fmt"

	"github.com/starford/ifcstep/internal/step"
)

// Layer set directions and senses.
const (
	Axis1 step.Enum = "AXIS1"
	Axis2 step.Enum = "AXIS2"
	Axis3 step.Enum = "AXIS3"

	SensePositive step.Enum = "POSITIVE"
	SenseNegative step.Enum = "NEGATIVE"
)

// Material is IFCMATERIAL.
type Material struct {
	Name        step.Label
	Description label
	Category    label
}

func NewMaterial(name string) *Material {
	return &Material{Name: step.NewLabel(name)}
}

func (*Material) Keyword() string { return "IFCMATERIAL" }

func (m *Material) Params() []step.Param {
	return []step.Param{&m.Name, &m.Description, &m.Category}
}

// MaterialLayer is IFCMATERIALLAYER.
type MaterialLayer struct {
	Material       step.Optional[step.TypedID[Material]]
	LayerThickness step.Real
	IsVentilated   step.Optional[step.Logical]
	Name           label
	Description    label
	Category       label
	Priority       step.Optional[step.Integer]
}

func NewMaterialLayer(material step.TypedID[Material], thickness float64) *MaterialLayer {
	return &MaterialLayer{
		Material:       step.Some(material),
		LayerThickness: step.NewReal(thickness),
	}
}

func (*MaterialLayer) Keyword() string { return "IFCMATERIALLAYER" }

func (l *MaterialLayer) Params() []step.Param {
	return []step.Param{&l.Material, &l.LayerThickness, &l.IsVentilated,
		&l.Name, &l.Description, &l.Category, &l.Priority}
}

// MaterialLayerSet is IFCMATERIALLAYERSET.
type MaterialLayerSet struct {
	MaterialLayers step.List[step.TypedID[MaterialLayer]]
	LayerSetName   label
	Description    label
}

func NewMaterialLayerSet(layers ...step.TypedID[MaterialLayer]) *MaterialLayerSet {
	return &MaterialLayerSet{MaterialLayers: layers}
}

func (*MaterialLayerSet) Keyword() string { return "IFCMATERIALLAYERSET" }

func (s *MaterialLayerSet) Params() []step.Param {
	return []step.Param{&s.MaterialLayers, &s.LayerSetName, &s.Description}
}

// Thickness sums the thickness of every layer in the set at id.
func Thickness(m *step.DataMap, id step.TypedID[MaterialLayerSet]) (float64, error) {
	set, err := step.Get(m, id)
	if err != nil {
		return 0, fmt.Errorf("ifc: thickness of %s: %w", id, err)
	}
	var total float64
	for _, lid := range set.MaterialLayers {
		layer, err := step.Get(m, lid)
		if err != nil {
			return 0, fmt.Errorf("ifc: thickness of %s: %w", id, err)
		}
		total += layer.LayerThickness.Float()
	}
	return total, nil
}

// MaterialLayerSetUsage is IFCMATERIALLAYERSETUSAGE.
type MaterialLayerSetUsage struct {
	ForLayerSet             step.TypedID[MaterialLayerSet]
	LayerSetDirection       step.Enum
	DirectionSense          step.Enum
	OffsetFromReferenceLine step.Real
	ReferenceExtent         step.Optional[step.Real]
}

func NewMaterialLayerSetUsage(set step.TypedID[MaterialLayerSet], direction, sense step.Enum, offset float64) *MaterialLayerSetUsage {
	return &MaterialLayerSetUsage{
		ForLayerSet:             set,
		LayerSetDirection:       direction,
		DirectionSense:          sense,
		OffsetFromReferenceLine: step.NewReal(offset),
	}
}

func (*MaterialLayerSetUsage) Keyword() string { return "IFCMATERIALLAYERSETUSAGE" }

func (u *MaterialLayerSetUsage) Params() []step.Param {
	return []step.Param{&u.ForLayerSet, &u.LayerSetDirection, &u.DirectionSense,
		&u.OffsetFromReferenceLine, &u.ReferenceExtent}
}

// RelAssociatesMaterial is IFCRELASSOCIATESMATERIAL: it assigns one material
// definition to any number of objects or types.
type RelAssociatesMaterial struct {
	root             Root
	RelatedObjects   step.List[step.ID]
	RelatingMaterial step.ID
}

// NewRelAssociatesMaterial returns an empty association for material.
func NewRelAssociatesMaterial(material step.ID) *RelAssociatesMaterial {
	return &RelAssociatesMaterial{root: NewRoot(""), RelatingMaterial: material}
}

func (*RelAssociatesMaterial) Keyword() string { return "IFCRELASSOCIATESMATERIAL" }

func (r *RelAssociatesMaterial) Params() []step.Param {
	return append(r.root.params(), &r.RelatedObjects, &r.RelatingMaterial)
}

func (r *RelAssociatesMaterial) Root() *Root { return &r.root }

// Relate adds objects to the association, skipping ones already related.
func (r *RelAssociatesMaterial) Relate(objects ...step.ID) *RelAssociatesMaterial {
	for _, o := range objects {
		if !r.Relates(o) {
			r.RelatedObjects = append(r.RelatedObjects, o)
		}
	}
	return r
}

// Relates reports whether id is one of the related objects.
func (r *RelAssociatesMaterial) Relates(id step.ID) bool {
	for _, o := range r.RelatedObjects {
		if o == id {
			return true
		}
	}
	return false
}
