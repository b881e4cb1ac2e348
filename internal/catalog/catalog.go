// Package catalog loads the reference data (centers and movement types) from a
// YAML seed file.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tesoreria/internal/core"
)

// ErrDuplicateID is returned when two entries of the same kind share an ID.
var ErrDuplicateID = errors.New("duplicate id")

type fileMovementType struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
}

type file struct {
	Centers       []core.Center      `yaml:"centers"`
	MovementTypes []fileMovementType `yaml:"movement_types"`
}

// Load reads a catalog from path.
func Load(path string) (core.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a YAML catalog. Categories are accepted in any case and every
// entry is validated; IDs must be unique per kind.
func Decode(r io.Reader) (core.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var raw file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return core.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	var cat core.Catalog
	seen := make(map[string]bool)
	for i, c := range raw.Centers {
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		if err := c.Validate(); err != nil {
			return core.Catalog{}, fmt.Errorf("center #%d: %w", i+1, err)
		}
		if seen[c.ID] {
			return core.Catalog{}, fmt.Errorf("center %q: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = true
		cat.Centers = append(cat.Centers, c)
	}

	seen = make(map[string]bool)
	for i, m := range raw.MovementTypes {
		category, err := core.ParseCategory(m.Category)
		if err != nil {
			return core.Catalog{}, fmt.Errorf("movement type #%d: %w", i+1, err)
		}
		mt := core.MovementType{
			ID:          strings.TrimSpace(m.ID),
			Name:        strings.TrimSpace(m.Name),
			Category:    category,
			Subcategory: strings.TrimSpace(m.Subcategory),
		}
		if err := mt.Validate(); err != nil {
			return core.Catalog{}, fmt.Errorf("movement type #%d: %w", i+1, err)
		}
		if mt.ID == core.UnknownMovementTypeID {
			return core.Catalog{}, fmt.Errorf("movement type #%d: id %q is reserved", i+1, mt.ID)
		}
		if seen[mt.ID] {
			return core.Catalog{}, fmt.Errorf("movement type %q: %w", mt.ID, ErrDuplicateID)
		}
		seen[mt.ID] = true
		cat.MovementTypes = append(cat.MovementTypes, mt)
	}
	return cat, nil
}

// LoadOptional behaves like Load but returns an empty catalog when path does
// not exist.
func LoadOptional(path string) (core.Catalog, error) {
	if path == "" {
		return core.Catalog{}, nil
	}
	cat, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return core.Catalog{}, nil
	}
	return cat, err
}
