package itinerary

import "strings"

// Step is a position in the wizard. The zero value is no step.
type Step int

const (
	StepEvent Step = iota + 1
	StepAccommodation
	StepTransportation
	StepSummary
)

// Steps lists the wizard in order.
var Steps = []Step{StepEvent, StepAccommodation, StepTransportation, StepSummary}

func (s Step) Valid() bool {
	return s >= StepEvent && s <= StepSummary
}

func (s Step) Path() string {
	switch s {
	case StepEvent:
		return "/"
	case StepAccommodation:
		return "/accommodation"
	case StepTransportation:
		return "/transportation"
	case StepSummary:
		return "/results"
	default:
		return ""
	}
}

func (s Step) Title() string {
	switch s {
	case StepEvent:
		return "Event"
	case StepAccommodation:
		return "Accommodation"
	case StepTransportation:
		return "Transportation"
	case StepSummary:
		return "Summary"
	default:
		return ""
	}
}

func (s Step) String() string {
	return s.Title()
}

// Next returns the following step, or the zero Step after Summary.
func (s Step) Next() Step {
	if !s.Valid() || s == StepSummary {
		return 0
	}
	return s + 1
}

// StepForPath maps a request path to its step. /events is an alias of the first step.
func StepForPath(path string) (Step, bool) {
	path = strings.TrimSpace(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	switch path {
	case "", "/", "/events":
		return StepEvent, true
	case "/accommodation":
		return StepAccommodation, true
	case "/transportation":
		return StepTransportation, true
	case "/results":
		return StepSummary, true
	default:
		return 0, false
	}
}

// StepState is one entry of the progress indicator.
type StepState struct {
	Step      Step
	Current   bool
	Completed bool
	Clickable bool
}

// ProgressState is re-derived from the path on every render.
type ProgressState struct {
	Current Step
	Steps   []StepState
}

// Progress marks steps before the current one completed and everything up
// to the current one clickable. An unknown path has no current step.
func Progress(path string) ProgressState {
	current, ok := StepForPath(path)
	if !ok {
		current = 0
	}
	states := make([]StepState, 0, len(Steps))
	for _, step := range Steps {
		states = append(states, StepState{
			Step:      step,
			Current:   step == current,
			Completed: ok && step < current,
			Clickable: ok && step <= current,
		})
	}
	return ProgressState{Current: current, Steps: states}
}

// Navigate handles a click on the progress indicator. Clicking the current or
// an earlier step re-encodes the subset of sel that step carries; clicking a
// later step is not a transition and reports false.
func Navigate(current, target Step, sel Selection) (Address, bool, error) {
	if !target.Valid() || !current.Valid() || target > current {
		return Address{}, false, nil
	}
	addr, err := Encode(target, sel)
	if err != nil {
		return Address{}, false, err
	}
	return addr, true, nil
}

// Advance moves forward one step carrying everything gathered so far.
func Advance(from Step, sel Selection) (Address, error) {
	next := from.Next()
	if !next.Valid() {
		return Encode(StepSummary, sel)
	}
	return Encode(next, sel)
}
