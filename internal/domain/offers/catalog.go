package offers

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type HotelTemplate struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Price  Price    `yaml:"price"`
	Rating *float64 `yaml:"rating"`
	Image  string   `yaml:"image"`
}

type FlightTemplate struct {
	ID      string        `yaml:"id"`
	Airline string        `yaml:"airline"`
	Depart  time.Duration `yaml:"depart"`
	Arrive  time.Duration `yaml:"arrive"`
	Stops   int           `yaml:"stops"`
	Price   Price         `yaml:"price"`
}

// Catalog is the provider inventory offers are generated from.
type Catalog struct {
	Hotels  []HotelTemplate  `yaml:"hotels"`
	Flights []FlightTemplate `yaml:"flights"`
}

// DefaultCatalog returns the inventory compiled into the binary.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file. An empty path yields the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read offer catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse offer catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, h := range c.Hotels {
		if h.ID == "" || h.Name == "" {
			errs = append(errs, fmt.Errorf("hotel %d: id and name are required", i))
		}
		if seen[h.ID] {
			errs = append(errs, fmt.Errorf("hotel %d: duplicate id %q", i, h.ID))
		}
		seen[h.ID] = true
		if h.Price.IsZero() {
			errs = append(errs, fmt.Errorf("hotel %q: price is required", h.ID))
		}
	}
	for i, f := range c.Flights {
		if f.ID == "" || f.Airline == "" {
			errs = append(errs, fmt.Errorf("flight %d: id and airline are required", i))
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Errorf("flight %d: duplicate id %q", i, f.ID))
		}
		seen[f.ID] = true
		if f.Arrive <= f.Depart {
			errs = append(errs, fmt.Errorf("flight %q: arrive must be after depart", f.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid offer catalog: %w", errors.Join(errs...))
	}
	return nil
}
