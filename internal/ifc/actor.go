package ifc

import "github.com/starford/ifcstep/internal/step"

// Person is IFCPERSON.
type Person struct {
	Identification label
	FamilyName     label
	GivenName      label
	MiddleNames    step.Optional[step.List[step.Label]]
	PrefixTitles   step.Optional[step.List[step.Label]]
	SuffixTitles   step.Optional[step.List[step.Label]]
	Roles          refList
	Addresses      refList
}

// NewPerson returns a person with only the given name set.
func NewPerson(given string) *Person {
	return &Person{GivenName: step.Some(step.NewLabel(given))}
}

func (*Person) Keyword() string { return "IFCPERSON" }

func (p *Person) Params() []step.Param {
	return []step.Param{&p.Identification, &p.FamilyName, &p.GivenName,
		&p.MiddleNames, &p.PrefixTitles, &p.SuffixTitles, &p.Roles, &p.Addresses}
}

// DisplayName joins the given and family names that are set.
func (p *Person) DisplayName() string {
	var name string
	for _, part := range []label{p.GivenName, p.FamilyName} {
		l, ok := part.Custom()
		if !ok || l.Text() == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += l.Text()
	}
	return name
}
