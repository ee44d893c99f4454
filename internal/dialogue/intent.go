package dialogue

import (
	"github.com/daaqui/joyas-bot/internal/utils"
)

// Intent is the closed set of meanings a reply can carry.
type Intent int

const (
	FreeText Intent = iota
	Affirm
	Deny
	Cancel
	Receipt
	Lima
	Province
	Offer
	Continue
)

func (i Intent) String() string {
	switch i {
	case Affirm:
		return "affirm"
	case Deny:
		return "deny"
	case Cancel:
		return "cancel"
	case Receipt:
		return "receipt"
	case Lima:
		return "lima"
	case Province:
		return "province"
	case Offer:
		return "offer"
	case Continue:
		return "continue"
	default:
		return "free_text"
	}
}

// Expectation is what the current question asks the customer for.
type Expectation int

const (
	ExpectFreeText Expectation = iota
	ExpectYesNo
	ExpectLocation
	ExpectUpsell
	ExpectReceipt
)

var affirmativeWords = []string{
	"si", "sip", "sii", "siii", "claro", "ok", "okay", "oki", "dale", "confirmo",
	"confirmado", "correcto", "de acuerdo", "acepto", "perfecto", "listo",
	"yes", "por supuesto", "afirmativo", "procedamos", "procede",
}

// Classifier turns raw text into an Intent.
type Classifier struct {
	cancelWords map[string]struct{}
}

// NewClassifier builds a classifier; cancelWords must match the whole message.
func NewClassifier(cancelWords []string) *Classifier {
	words := make(map[string]struct{}, len(cancelWords))
	for _, w := range cancelWords {
		if w = utils.Fold(w); w != "" {
			words[w] = struct{}{}
		}
	}
	return &Classifier{cancelWords: words}
}

// IsCancellation reports whether the whole message is a cancellation word.
func (c *Classifier) IsCancellation(text string) bool {
	_, ok := c.cancelWords[utils.Fold(text)]
	return ok
}

// Classify interprets text against what the current state expects.
func (c *Classifier) Classify(text string, exp Expectation) Intent {
	if c.IsCancellation(text) {
		return Cancel
	}
	switch exp {
	case ExpectYesNo:
		if isAffirmative(text) {
			return Affirm
		}
		return Deny
	case ExpectLocation:
		// "lima" wins when both words appear, as in "lima provincia".
		if utils.ContainsPhrase(text, "lima") {
			return Lima
		}
		if utils.ContainsPhrase(text, "provincia") || utils.ContainsPhrase(text, "provincias") {
			return Province
		}
		return FreeText
	case ExpectUpsell:
		if utils.ContainsPhrase(text, "oferta") {
			return Offer
		}
		return Continue
	default:
		return FreeText
	}
}

func isAffirmative(text string) bool {
	for _, word := range affirmativeWords {
		if utils.ContainsPhrase(text, word) {
			return true
		}
	}
	return false
}
