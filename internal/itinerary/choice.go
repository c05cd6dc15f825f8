package itinerary

import (
	"fmt"
	"strings"
)

// SkippedValue is the address literal for an explicitly declined step.
const SkippedValue = "skipped"

// ChoiceKind distinguishes a picked offer from a declined or unreached step.
type ChoiceKind int

const (
	ChoiceAbsent ChoiceKind = iota
	ChoiceChosen
	ChoiceSkipped
)

// Choice is the user's decision for an optional step.
type Choice struct {
	kind ChoiceKind
	id   string
}

// Chosen records a picked offer. An empty id is treated as no choice.
func Chosen(id string) Choice {
	id = strings.TrimSpace(id)
	if id == "" {
		return Choice{}
	}
	return Choice{kind: ChoiceChosen, id: id}
}

func Skipped() Choice {
	return Choice{kind: ChoiceSkipped}
}

func Absent() Choice {
	return Choice{}
}

func (c Choice) Kind() ChoiceKind {
	return c.kind
}

// ID is the picked offer id; empty unless Kind is ChoiceChosen.
func (c Choice) ID() string {
	return c.id
}

func (c Choice) IsChosen() bool  { return c.kind == ChoiceChosen }
func (c Choice) IsSkipped() bool { return c.kind == ChoiceSkipped }
func (c Choice) IsAbsent() bool  { return c.kind == ChoiceAbsent }

func (c Choice) String() string {
	switch c.kind {
	case ChoiceChosen:
		return c.id
	case ChoiceSkipped:
		return SkippedValue
	default:
		return ""
	}
}

// addressValue renders the choice for an address. A chosen id equal to the
// skip marker cannot be told apart on decode and is refused. The match is
// exact, as in parseChoice.
func (c Choice) addressValue() (string, error) {
	if c.kind == ChoiceChosen && c.id == SkippedValue {
		return "", fmt.Errorf("%w: %q", ErrReservedID, c.id)
	}
	return c.String(), nil
}

func parseChoice(value string) Choice {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return Absent()
	case value == SkippedValue:
		return Skipped()
	default:
		return Chosen(value)
	}
}

// Transport is the transportation decision plus the search inputs behind it.
type Transport struct {
	Choice   Choice
	Origin   string
	Provider string
}

func (t Transport) IsZero() bool {
	return t.Choice.IsAbsent() && t.Origin == "" && t.Provider == ""
}
