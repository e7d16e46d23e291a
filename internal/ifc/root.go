package ifc

import "github.com/starford/ifcstep/internal/step"

type (
	label   = step.Optional[step.Label]
	enum    = step.Optional[step.Enum]
	ref     = step.Optional[step.ID]
	refList = step.Optional[step.List[step.ID]]
)

// Root is the first attribute block of every rooted entity.
type Root struct {
	GlobalID     step.Label
	OwnerHistory ref
	Name         label
	Description  label
}

// NewRoot returns a root block with a fresh GlobalId and the given name.
func NewRoot(name string) Root {
	r := Root{GlobalID: newGlobalIDLabel()}
	if name != "" {
		r.Name = step.Some(step.NewLabel(name))
	}
	return r
}

func (r *Root) params() []step.Param {
	return []step.Param{&r.GlobalID, &r.OwnerHistory, &r.Name, &r.Description}
}

// Rooted is implemented by every entity that starts with a Root block.
type Rooted interface {
	step.Entity
	Root() *Root
}

// Object adds the object type to Root.
type Object struct {
	root       Root
	ObjectType label
}

func NewObject(root Root) Object { return Object{root: root} }

func (o *Object) Root() *Root { return &o.root }

func (o *Object) params() []step.Param {
	return append(o.root.params(), &o.ObjectType)
}

// Product is an object with a placement and a shape.
type Product struct {
	object          Object
	ObjectPlacement step.Optional[step.TypedID[LocalPlacement]]
	Representation  ref
}

func NewProduct(object Object) Product { return Product{object: object} }

func (p *Product) Object() *Object { return &p.object }
func (p *Product) Root() *Root     { return p.object.Root() }

func (p *Product) params() []step.Param {
	return append(p.object.params(), &p.ObjectPlacement, &p.Representation)
}

// Element is a physical component of a building.
type Element struct {
	product Product
	Tag     label
}

func NewElement(product Product) Element { return Element{product: product} }

func (e *Element) Product() *Product { return &e.product }
func (e *Element) Object() *Object   { return e.product.Object() }
func (e *Element) Root() *Root       { return e.product.Root() }

func (e *Element) params() []step.Param {
	return append(e.product.params(), &e.Tag)
}

// SpatialElement is a product that defines space rather than occupying it.
type SpatialElement struct {
	product  Product
	LongName label
}

func NewSpatialElement(product Product) SpatialElement { return SpatialElement{product: product} }

func (e *SpatialElement) Product() *Product { return &e.product }
func (e *SpatialElement) Object() *Object   { return e.product.Object() }
func (e *SpatialElement) Root() *Root       { return e.product.Root() }

func (e *SpatialElement) params() []step.Param {
	return append(e.product.params(), &e.LongName)
}

// SpatialStructureElement is a level of the site/building/storey hierarchy.
type SpatialStructureElement struct {
	spatial         SpatialElement
	CompositionType enum
}

func NewSpatialStructureElement(spatial SpatialElement) SpatialStructureElement {
	return SpatialStructureElement{spatial: spatial}
}

func (e *SpatialStructureElement) SpatialElement() *SpatialElement { return &e.spatial }
func (e *SpatialStructureElement) Product() *Product               { return e.spatial.Product() }
func (e *SpatialStructureElement) Object() *Object                 { return e.spatial.Object() }
func (e *SpatialStructureElement) Root() *Root                     { return e.spatial.Root() }

func (e *SpatialStructureElement) params() []step.Param {
	return append(e.spatial.params(), &e.CompositionType)
}

// Element composition types.
const (
	CompositionComplex step.Enum = "COMPLEX"
	CompositionElement step.Enum = "ELEMENT"
	CompositionPartial step.Enum = "PARTIAL"
)

// TypeObject is the type-level counterpart of Object.
type TypeObject struct {
	root                 Root
	ApplicableOccurrence label
	HasPropertySets      refList
}

func NewTypeObject(root Root) TypeObject { return TypeObject{root: root} }

func (t *TypeObject) Root() *Root { return &t.root }

func (t *TypeObject) params() []step.Param {
	return append(t.root.params(), &t.ApplicableOccurrence, &t.HasPropertySets)
}

// TypeProduct is a type object that may carry shared representations.
type TypeProduct struct {
	typeObject         TypeObject
	RepresentationMaps refList
	Tag                label
}

func NewTypeProduct(typeObject TypeObject) TypeProduct { return TypeProduct{typeObject: typeObject} }

func (t *TypeProduct) TypeObject() *TypeObject { return &t.typeObject }
func (t *TypeProduct) Root() *Root             { return t.typeObject.Root() }

func (t *TypeProduct) params() []step.Param {
	return append(t.typeObject.params(), &t.RepresentationMaps, &t.Tag)
}

// ElementType is the type-level counterpart of Element.
type ElementType struct {
	typeProduct TypeProduct
	ElementType label
}

func NewElementType(typeProduct TypeProduct) ElementType {
	return ElementType{typeProduct: typeProduct}
}

func (t *ElementType) TypeProduct() *TypeProduct { return &t.typeProduct }
func (t *ElementType) TypeObject() *TypeObject   { return t.typeProduct.TypeObject() }
func (t *ElementType) Root() *Root               { return t.typeProduct.Root() }

func (t *ElementType) params() []step.Param {
	return append(t.typeProduct.params(), &t.ElementType)
}
