package ifc

import "github.com/starford/ifcstep/internal/step"

// CartesianPoint is IFCCARTESIANPOINT.
type CartesianPoint struct {
	Coordinates step.List[step.Real]
}

func NewCartesianPoint(coords ...float64) *CartesianPoint {
	return &CartesianPoint{Coordinates: reals(coords)}
}

func (*CartesianPoint) Keyword() string { return "IFCCARTESIANPOINT" }

func (p *CartesianPoint) Params() []step.Param { return []step.Param{&p.Coordinates} }

// Floats returns the coordinates as float64.
func (p *CartesianPoint) Floats() []float64 { return floats(p.Coordinates) }

// Direction is IFCDIRECTION.
type Direction struct {
	DirectionRatios step.List[step.Real]
}

func NewDirection(ratios ...float64) *Direction {
	return &Direction{DirectionRatios: reals(ratios)}
}

func (*Direction) Keyword() string { return "IFCDIRECTION" }

func (d *Direction) Params() []step.Param { return []step.Param{&d.DirectionRatios} }

// Floats returns the ratios as float64.
func (d *Direction) Floats() []float64 { return floats(d.DirectionRatios) }

// LocalPlacement is IFCLOCALPLACEMENT. RelativePlacement names an
// IFCAXIS2PLACEMENT2D or 3D.
type LocalPlacement struct {
	PlacementRelTo    step.Optional[step.TypedID[LocalPlacement]]
	RelativePlacement step.ID
}

func NewLocalPlacement(relative step.ID) *LocalPlacement {
	return &LocalPlacement{RelativePlacement: relative}
}

func (*LocalPlacement) Keyword() string { return "IFCLOCALPLACEMENT" }

func (p *LocalPlacement) Params() []step.Param {
	return []step.Param{&p.PlacementRelTo, &p.RelativePlacement}
}

func reals(fs []float64) step.List[step.Real] {
	out := make(step.List[step.Real], len(fs))
	for i, f := range fs {
		out[i] = step.NewReal(f)
	}
	return out
}

func floats(rs step.List[step.Real]) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.Float()
	}
	return out
}
