package step

// Minimal entity types used by the engine tests.

type testLabel struct {
	Value Label
}

func (*testLabel) Keyword() string { return "IFCLABEL" }

func (l *testLabel) Params() []Param { return []Param{&l.Value} }

type testWall struct {
	Name        Optional[TypedID[testLabel]]
	Description Optional[Label]
	Tag         Optional[Label]
}

func (*testWall) Keyword() string { return "IFCWALL" }

func (w *testWall) Params() []Param {
	return []Param{&w.Name, &w.Description, &w.Tag}
}

type testPoint struct {
	Coordinates List[Real]
}

func (*testPoint) Keyword() string { return "IFCCARTESIANPOINT" }

func (p *testPoint) Params() []Param { return []Param{&p.Coordinates} }

func testRegistry() *Registry {
	r := NewRegistry()
	Register[testLabel](r)
	Register[testWall](r)
	Register[testPoint](r)
	return r
}
