package composer

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MaterialCatalog is read access to the external material store.
type MaterialCatalog interface {
	// GetMaterial returns the material with id. A miss is not an error; the
	// caller treats it as "no material attached".
	GetMaterial(id MaterialID) (Material, bool)
	ListMaterials() []Material
}

// InMemoryCatalog is a fixed MaterialCatalog.
type InMemoryCatalog struct {
	materials map[MaterialID]Material
}

// NewInMemoryCatalog returns a catalog holding materials.
func NewInMemoryCatalog(materials ...Material) *InMemoryCatalog {
	c := &InMemoryCatalog{materials: make(map[MaterialID]Material, len(materials))}
	for _, m := range materials {
		c.materials[m.ID] = m
	}
	return c
}

// GetMaterial implements MaterialCatalog.GetMaterial.
func (c *InMemoryCatalog) GetMaterial(id MaterialID) (Material, bool) {
	m, ok := c.materials[id]
	return m, ok
}

// ListMaterials implements MaterialCatalog.ListMaterials, sorted by id.
func (c *InMemoryCatalog) ListMaterials() []Material {
	out := make([]Material, 0, len(c.materials))
	for _, m := range c.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type catalogFile struct {
	Materials []Material `yaml:"materials"`
}

// LoadCatalogFile reads a YAML material catalog of the form
//
//	materials:
//	  - id: m1
//	    name: Beach
//	    type: video
//	    duration: 8
func LoadCatalogFile(path string) (*InMemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read material catalog %s", path)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse material catalog %s", path)
	}
	return NewInMemoryCatalog(f.Materials...), nil
}
