package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/storage"
)

// File is the on-disk catalog format read by the seed command.
type File struct {
	Products []models.Product `yaml:"products"`
}

// LoadFile parses a catalog YAML file.
func LoadFile(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML and checks every product has an id and a price.
func Parse(data []byte) ([]models.Product, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	for i, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: product #%d has no id", i+1)
		}
		if p.BasePrice <= 0 {
			return nil, fmt.Errorf("catalog: product %s has no base_price", p.ID)
		}
	}
	return f.Products, nil
}

// Seed upserts products into the store and returns how many were written.
func Seed(ctx context.Context, store storage.Store, products []models.Product) (int, error) {
	for i := range products {
		if err := store.UpsertProduct(ctx, &products[i]); err != nil {
			return i, err
		}
	}
	return len(products), nil
}
