package workflow

import "github.com/spboyer/booker/internal/validation"

// MaxRepairAttempts bounds repair calls per turn.
const MaxRepairAttempts = 2

// Router picks the next node from a state snapshot. Routers are pure.
type Router func(s State) Node

func always(n Node) Router {
	return func(State) Node { return n }
}

func afterValidate(s State) Node {
	if s.Meeting != nil {
		return NodeReview
	}
	if validation.Classify(s.Errors) == validation.ClassStructural && s.Attempts < MaxRepairAttempts {
		return NodeRepair
	}
	return NodeClarify
}

func afterRepair(s State) Node {
	if s.Attempts < MaxRepairAttempts {
		return NodeValidate
	}
	return NodeClarify
}

// transitions is the workflow graph. Every node except NodeEnd has exactly
// one router.
var transitions = map[Node]Router{
	NodeExtract:  always(NodeValidate),
	NodeValidate: afterValidate,
	NodeRepair:   afterRepair,
	NodeReview:   always(NodeConflict),
	NodeConflict: always(NodeEnd),
	NodeClarify:  always(NodeEnd),
}

// Next returns the node that follows from in state s.
func Next(from Node, s State) Node {
	r, ok := transitions[from]
	if !ok {
		return NodeEnd
	}
	return r(s)
}
