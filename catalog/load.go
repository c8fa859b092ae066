package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

// File is the on-disk layout of the catalog data file
type File struct {
	Orders []Order `yaml:"orders"`
	Offers []Offer `yaml:"offers"`
}

// Load reads a catalog data file. An empty path loads the built-in data.
func Load(path string) (*Catalog, *Offers, error) {
	data := defaultData
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes catalog YAML
func Parse(data []byte) (*Catalog, *Offers, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("invalid catalog data: %w", err)
	}

	cat, err := NewCatalog(f.Orders)
	if err != nil {
		return nil, nil, err
	}

	offers, err := NewOffers(f.Offers)
	if err != nil {
		return nil, nil, err
	}

	return cat, offers, nil
}
