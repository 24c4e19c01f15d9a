package match

// State is the matcher's position in the document hierarchy. It survives
// page boundaries.
type State int

const (
	AwaitingSection State = iota
	InSection
	InElement
)

func (s State) String() string {
	switch s {
	case AwaitingSection:
		return "awaiting-section"
	case InSection:
		return "in-section"
	case InElement:
		return "in-element"
	default:
		return "unknown"
	}
}

// RowKind is what a policy decided a row is.
type RowKind int

const (
	// RowSkip rows carry nothing and leave the state unchanged.
	RowSkip RowKind = iota
	// RowHeader rows name the table columns.
	RowHeader
	// RowSection rows open a section.
	RowSection
	// RowElementHeader rows open an element group.
	RowElementHeader
	// RowElement rows open an element and fill its fields.
	RowElement
	// RowContinuation rows add to the current element.
	RowContinuation
)

func (k RowKind) String() string {
	switch k {
	case RowSkip:
		return "skip"
	case RowHeader:
		return "header"
	case RowSection:
		return "section"
	case RowElementHeader:
		return "element-header"
	case RowElement:
		return "element"
	case RowContinuation:
		return "continuation"
	default:
		return "unknown"
	}
}

var transitions = map[State]map[RowKind]State{
	AwaitingSection: {
		RowSkip:    AwaitingSection,
		RowHeader:  AwaitingSection,
		RowSection: InSection,
	},
	InSection: {
		RowSkip:          InSection,
		RowHeader:        InSection,
		RowSection:       InSection,
		RowElementHeader: InElement,
		RowElement:       InElement,
	},
	InElement: {
		RowSkip:          InElement,
		RowHeader:        InElement,
		RowSection:       InSection,
		RowElementHeader: InElement,
		RowElement:       InElement,
		RowContinuation:  InElement,
	},
}

// Transition returns the state after a row of the given kind, and false
// when the kind is not allowed in s.
func Transition(s State, k RowKind) (State, bool) {
	next, ok := transitions[s][k]
	return next, ok
}
