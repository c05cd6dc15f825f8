package offers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Price is either a numeric amount or a free-text label such as
// "Contact for price". Both forms travel as-is in JSON.
type Price struct {
	amount  float64
	label   string
	numeric bool
}

func Amount(v float64) Price {
	return Price{amount: v, numeric: true}
}

func Label(s string) Price {
	return Price{label: s}
}

// Value returns the numeric amount; ok is false for labels.
func (p Price) Value() (float64, bool) {
	return p.amount, p.numeric
}

func (p Price) IsZero() bool {
	return !p.numeric && p.label == ""
}

// Times multiplies a numeric price. Labels are returned unchanged.
func (p Price) Times(n int) Price {
	if !p.numeric {
		return p
	}
	return Amount(p.amount * float64(n))
}

func (p Price) String() string {
	if p.numeric {
		return strconv.FormatFloat(p.amount, 'f', -1, 64)
	}
	return p.label
}

// Format renders a numeric price with its currency, e.g. "150 EUR".
func (p Price) Format(currency string) string {
	if !p.numeric {
		return p.label
	}
	if currency == "" {
		return fmt.Sprintf("%.2f", p.amount)
	}
	return fmt.Sprintf("%.2f %s", p.amount, currency)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.numeric {
		return json.Marshal(p.amount)
	}
	if p.label == "" {
		return []byte("null"), nil
	}
	return json.Marshal(p.label)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = Price{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Label(s)
		return nil
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		*p = Amount(v)
		return nil
	}
}

func (p *Price) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("price: line %d: expected a scalar", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		v, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("price: line %d: %w", node.Line, err)
		}
		*p = Amount(v)
	default:
		*p = Label(node.Value)
	}
	return nil
}
