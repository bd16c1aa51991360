// Package region provides the read-only state and district reference data used to fill the
// selection lists of the form.
package region

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// State is a region code together with its display name.
type State struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// Provider looks up the states of a country and the districts of a state. Unknown keys yield
// empty lists.
type Provider interface {
	States(country string) []State
	Districts(country string, state string) []string
}

//go:embed regions.yaml
var defaultCatalog []byte

type stateEntry struct {
	State     `yaml:",inline"`
	Districts []string `yaml:"districts"`
}

type countryEntry struct {
	Name   string       `yaml:"name"`
	States []stateEntry `yaml:"states"`
}

type catalogFile struct {
	Countries map[string]countryEntry `yaml:"countries"`
}

// Catalog is a Provider backed by a static table.
type Catalog struct {
	countries map[string]countryEntry
}

// Load reads a catalog in YAML form. Unknown keys are rejected.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{countries: map[string]countryEntry{}}, nil
		}
		return nil, fmt.Errorf("region: parsing catalog: %w", err)
	}
	for code, country := range file.Countries {
		for _, s := range country.States {
			if s.Code == "" || s.Name == "" {
				return nil, fmt.Errorf("region: state without code or name in country %s", code)
			}
		}
	}
	if file.Countries == nil {
		file.Countries = map[string]countryEntry{}
	}
	return &Catalog{countries: file.Countries}, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return c
}

// States returns the states of a country in catalog order.
func (c *Catalog) States(country string) []State {
	entry, ok := c.countries[country]
	if !ok {
		return nil
	}
	states := make([]State, 0, len(entry.States))
	for _, s := range entry.States {
		states = append(states, s.State)
	}
	return states
}

// Districts returns the districts of a state in catalog order.
func (c *Catalog) Districts(country string, state string) []string {
	entry, ok := c.countries[country]
	if !ok {
		return nil
	}
	for _, s := range entry.States {
		if s.Code == state {
			return slices.Clone(s.Districts)
		}
	}
	return nil
}

// StateName returns the display name of a state code, or "" if the code is unknown.
func StateName(p Provider, country string, code string) string {
	for _, s := range p.States(country) {
		if s.Code == code {
			return s.Name
		}
	}
	return ""
}

// HasState reports whether the code is one of the states of the country.
func HasState(p Provider, country string, code string) bool {
	return StateName(p, country, code) != ""
}

// HasDistrict reports whether the district belongs to the state.
func HasDistrict(p Provider, country string, state string, district string) bool {
	return slices.Contains(p.Districts(country, state), district)
}
