// Package ifc defines a subset of the IFC4 entity types on top of package
// step.
//
// IFC attribute layouts are inherited along the schema's supertype chain:
// IFCWALL lists the attributes of IfcRoot, then IfcObject, IfcProduct and
// IfcElement, then its own. Each supertype is a struct here and subtypes hold
// their supertype as an unexported field, reachable through accessor methods
// such as Root or Product. Params of a concrete type lists the supertype
// attributes first, which yields the schema order on the wire.
package ifc
