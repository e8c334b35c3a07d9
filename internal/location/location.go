// Package location serves the static province/city catalogue used for
// hierarchical selection and postal code auto-fill.
package location

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed provinces.yaml
var provincesYAML []byte

type City struct {
	ID         int    `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	ProvinceID int    `yaml:"-" json:"province_id"`
	PostalCode string `yaml:"postal_code" json:"postal_code"`
}

type Province struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Cities []City `yaml:"cities" json:"-"`
}

// Directory answers province/city lookups.
type Directory interface {
	Provinces() []Province
	Province(name string) (Province, bool)
	Cities(provinceID int) []City
	City(province, city string) (City, bool)
}

// Catalog is an in-memory Directory.
type Catalog struct {
	provinces []Province
	byName    map[string]int
}

// Default loads the embedded catalogue. It panics on a malformed file since
// the data ships with the binary.
func Default() *Catalog {
	c, err := Parse(provincesYAML)
	if err != nil {
		panic(fmt.Sprintf("location: embedded catalogue: %v", err))
	}
	return c
}

// Parse builds a Catalog from YAML with a top-level "provinces" list.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Provinces []Province `yaml:"provinces"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse provinces: %w", err)
	}
	c := &Catalog{provinces: doc.Provinces, byName: make(map[string]int, len(doc.Provinces))}
	for i := range c.provinces {
		p := &c.provinces[i]
		if _, dup := c.byName[key(p.Name)]; dup {
			return nil, fmt.Errorf("duplicate province %q", p.Name)
		}
		c.byName[key(p.Name)] = i
		for j := range p.Cities {
			p.Cities[j].ProvinceID = p.ID
		}
	}
	return c, nil
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (c *Catalog) Provinces() []Province {
	out := make([]Province, len(c.provinces))
	copy(out, c.provinces)
	return out
}

func (c *Catalog) Province(name string) (Province, bool) {
	i, ok := c.byName[key(name)]
	if !ok {
		return Province{}, false
	}
	return c.provinces[i], true
}

func (c *Catalog) Cities(provinceID int) []City {
	for _, p := range c.provinces {
		if p.ID == provinceID {
			out := make([]City, len(p.Cities))
			copy(out, p.Cities)
			return out
		}
	}
	return nil
}

// City finds a city inside the named province.
func (c *Catalog) City(province, city string) (City, bool) {
	p, ok := c.Province(province)
	if !ok {
		return City{}, false
	}
	for _, ct := range p.Cities {
		if key(ct.Name) == key(city) {
			return ct, true
		}
	}
	return City{}, false
}

// PostalCodeFor returns the default postal code of a city, "" when the city
// has none (AMBA districts vary by street).
func PostalCodeFor(d Directory, province, city string) string {
	ct, ok := d.City(province, city)
	if !ok {
		return ""
	}
	return ct.PostalCode
}
