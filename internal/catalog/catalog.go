// Package catalog resolves customer text to products.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/storage"
	"github.com/daaqui/joyas-bot/internal/utils"
)

// ErrNoMatch is returned when no keyword matches or the product is inactive.
var ErrNoMatch = errors.New("catalog: no matching product")

// Catalog maps keywords to products stored in the Store.
type Catalog struct {
	store   storage.Store
	entries []config.ProductKeywords
}

// New builds a catalog from the keyword table in the business rules.
func New(store storage.Store, keywords []config.ProductKeywords) *Catalog {
	entries := make([]config.ProductKeywords, 0, len(keywords))
	for _, pk := range keywords {
		folded := make([]string, 0, len(pk.Keywords))
		for _, kw := range pk.Keywords {
			if kw = utils.Fold(kw); kw != "" {
				folded = append(folded, kw)
			}
		}
		entries = append(entries, config.ProductKeywords{ProductID: pk.ProductID, Keywords: folded})
	}
	return &Catalog{store: store, entries: entries}
}

// Match returns the id of the first product whose keywords occur in text.
func (c *Catalog) Match(text string) (string, bool) {
	folded := utils.Fold(text)
	if folded == "" {
		return "", false
	}
	for _, entry := range c.entries {
		for _, kw := range entry.Keywords {
			if strings.Contains(folded, kw) {
				return entry.ProductID, true
			}
		}
	}
	return "", false
}

// Matches reports whether any product keyword is present in text.
func (c *Catalog) Matches(text string) bool {
	_, ok := c.Match(text)
	return ok
}

// Lookup resolves text to an active product.
func (c *Catalog) Lookup(ctx context.Context, text string) (*models.Product, error) {
	id, ok := c.Match(text)
	if !ok {
		return nil, ErrNoMatch
	}
	product, err := c.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, ErrNoMatch
	}
	return product, nil
}

// Get fetches a product by id; storage.ErrNotFound if it was removed.
func (c *Catalog) Get(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, storage.ErrNotFound
	}
	product, err := c.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("catalog: get %s: %w", id, err)
	}
	return product, nil
}
