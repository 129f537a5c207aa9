package model

// SectionKind identifies one of the test sections inside an assessment.
type SectionKind string

const (
	SectionAptitude SectionKind = "aptitude"
	SectionValues   SectionKind = "values"
	SectionPersonal SectionKind = "personal"
)

// SectionOrder is the fixed sequence sections are taken in. It is the only
// place kind-specific ordering appears; the lifecycle works off its length.
var SectionOrder = []SectionKind{SectionAptitude, SectionValues, SectionPersonal}

func (k SectionKind) Valid() bool {
	switch k {
	case SectionAptitude, SectionValues, SectionPersonal:
		return true
	}
	return false
}
