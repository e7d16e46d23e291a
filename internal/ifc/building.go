package ifc

import "github.com/starford/ifcstep/internal/step"

// Wall predefined types.
const (
	WallMovable       step.Enum = "MOVABLE"
	WallParapet       step.Enum = "PARAPET"
	WallPartitioning  step.Enum = "PARTITIONING"
	WallPlumbingWall  step.Enum = "PLUMBINGWALL"
	WallShear         step.Enum = "SHEAR"
	WallSolidWall     step.Enum = "SOLIDWALL"
	WallStandard      step.Enum = "STANDARD"
	WallPolygonal     step.Enum = "POLYGONAL"
	WallElementedWall step.Enum = "ELEMENTEDWALL"
	WallUserDefined   step.Enum = "USERDEFINED"
	WallNotDefined    step.Enum = "NOTDEFINED"
)

// Slab predefined types.
const (
	SlabFloor       step.Enum = "FLOOR"
	SlabRoof        step.Enum = "ROOF"
	SlabLanding     step.Enum = "LANDING"
	SlabBaseSlab    step.Enum = "BASESLAB"
	SlabUserDefined step.Enum = "USERDEFINED"
	SlabNotDefined  step.Enum = "NOTDEFINED"
)

// Wall is IFCWALL.
type Wall struct {
	element        Element
	PredefinedType enum
}

// NewWall returns a wall with a fresh GlobalId.
func NewWall(name string) *Wall {
	return &Wall{element: NewElement(NewProduct(NewObject(NewRoot(name))))}
}

func (*Wall) Keyword() string { return "IFCWALL" }

func (w *Wall) Params() []step.Param {
	return append(w.element.params(), &w.PredefinedType)
}

func (w *Wall) Element() *Element { return &w.element }
func (w *Wall) Product() *Product { return w.element.Product() }
func (w *Wall) Object() *Object   { return w.element.Object() }
func (w *Wall) Root() *Root       { return w.element.Root() }

// WallType is IFCWALLTYPE.
type WallType struct {
	elementType    ElementType
	PredefinedType step.Enum
}

// NewWallType returns a wall type with a fresh GlobalId.
func NewWallType(name string, predefined step.Enum) *WallType {
	return &WallType{
		elementType:    NewElementType(NewTypeProduct(NewTypeObject(NewRoot(name)))),
		PredefinedType: predefined,
	}
}

func (*WallType) Keyword() string { return "IFCWALLTYPE" }

func (t *WallType) Params() []step.Param {
	return append(t.elementType.params(), &t.PredefinedType)
}

func (t *WallType) ElementType() *ElementType { return &t.elementType }
func (t *WallType) TypeProduct() *TypeProduct { return t.elementType.TypeProduct() }
func (t *WallType) TypeObject() *TypeObject   { return t.elementType.TypeObject() }
func (t *WallType) Root() *Root               { return t.elementType.Root() }

// Slab is IFCSLAB.
type Slab struct {
	element        Element
	PredefinedType enum
}

// NewSlab returns a slab with a fresh GlobalId.
func NewSlab(name string, predefined step.Enum) *Slab {
	s := &Slab{element: NewElement(NewProduct(NewObject(NewRoot(name))))}
	if predefined != "" {
		s.PredefinedType = step.Some(predefined)
	}
	return s
}

func (*Slab) Keyword() string { return "IFCSLAB" }

func (s *Slab) Params() []step.Param {
	return append(s.element.params(), &s.PredefinedType)
}

func (s *Slab) Element() *Element { return &s.element }
func (s *Slab) Product() *Product { return s.element.Product() }
func (s *Slab) Object() *Object   { return s.element.Object() }
func (s *Slab) Root() *Root       { return s.element.Root() }

// BuildingStorey is IFCBUILDINGSTOREY.
type BuildingStorey struct {
	structure SpatialStructureElement
	Elevation step.Optional[step.Real]
}

// NewBuildingStorey returns an ELEMENT storey at the given elevation.
func NewBuildingStorey(name string, elevation float64) *BuildingStorey {
	s := &BuildingStorey{
		structure: NewSpatialStructureElement(NewSpatialElement(NewProduct(NewObject(NewRoot(name))))),
		Elevation: step.Some(step.NewReal(elevation)),
	}
	s.structure.CompositionType = step.Some(CompositionElement)
	return s
}

func (*BuildingStorey) Keyword() string { return "IFCBUILDINGSTOREY" }

func (s *BuildingStorey) Params() []step.Param {
	return append(s.structure.params(), &s.Elevation)
}

func (s *BuildingStorey) SpatialStructureElement() *SpatialStructureElement { return &s.structure }
func (s *BuildingStorey) SpatialElement() *SpatialElement                   { return s.structure.SpatialElement() }
func (s *BuildingStorey) Product() *Product                                 { return s.structure.Product() }
func (s *BuildingStorey) Object() *Object                                   { return s.structure.Object() }
func (s *BuildingStorey) Root() *Root                                       { return s.structure.Root() }
