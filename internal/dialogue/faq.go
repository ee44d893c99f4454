package dialogue

import (
	"fmt"
	"strings"

	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/utils"
)

// FAQ answers common questions by keyword.
type FAQ struct {
	entries []config.FAQEntry
}

// NewFAQ folds the configured keywords once.
func NewFAQ(entries []config.FAQEntry) *FAQ {
	folded := make([]config.FAQEntry, 0, len(entries))
	for _, e := range entries {
		kws := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			if kw = utils.Fold(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		folded = append(folded, config.FAQEntry{Key: e.Key, Keywords: kws, Response: e.Response})
	}
	return &FAQ{entries: folded}
}

// Answer returns the reply for the first entry whose keyword occurs in text.
// Price and stock answers name the product of an ongoing order.
func (f *FAQ) Answer(text string, session *models.Session) (string, bool) {
	folded := utils.Fold(text)
	if folded == "" {
		return "", false
	}
	for _, e := range f.entries {
		for _, kw := range e.Keywords {
			if !strings.Contains(folded, kw) {
				continue
			}
			if session != nil && session.ProductName != "" {
				switch e.Key {
				case "precio":
					return fmt.Sprintf("¡Claro! El precio de tu pedido (*%s*) es de *S/ %.2f*, con envío gratis. 🚚",
						session.ProductName, session.ProductPrice), true
				case "stock":
					return fmt.Sprintf("¡Sí, claro! Aún tenemos unidades del *%s*. ✨ ¿Iniciamos tu pedido?",
						session.ProductName), true
				}
			}
			if e.Response == "" {
				return "", false
			}
			return e.Response, true
		}
	}
	return "", false
}
