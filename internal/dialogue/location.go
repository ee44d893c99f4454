package dialogue

import (
	"regexp"
	"sort"
	"strings"

	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/utils"
)

// Coverage is the delivery status of a Lima district.
type Coverage int

const (
	DistrictNotFound Coverage = iota
	DistrictCovered
	DistrictUncovered
)

func (c Coverage) String() string {
	switch c {
	case DistrictCovered:
		return "CON_COBERTURA"
	case DistrictUncovered:
		return "SIN_COBERTURA"
	default:
		return "NO_ENCONTRADO"
	}
}

var (
	districtLead = regexp.MustCompile(`(?i)^\s*(soy de|vivo en|estoy en|es en)\s+`)
	provinceLead = regexp.MustCompile(`(?i)^\s*(soy de|vivo en|mi ciudad es|el distrito es)\s+`)
)

type abbreviation struct {
	short string
	full  string
}

// DistrictResolver matches free text against the Lima district lists.
type DistrictResolver struct {
	covered       []string
	all           []string
	abbreviations []abbreviation // sorted by short form
}

// NewDistrictResolver builds a resolver from the business rules.
func NewDistrictResolver(rules *config.BusinessRules) *DistrictResolver {
	abbrs := make([]abbreviation, 0, len(rules.DistrictAbbreviations))
	for short, full := range rules.DistrictAbbreviations {
		abbrs = append(abbrs, abbreviation{short: utils.Fold(short), full: utils.Fold(full)})
	}
	sort.Slice(abbrs, func(i, j int) bool { return abbrs[i].short < abbrs[j].short })
	return &DistrictResolver{
		covered:       rules.CoveredDistricts,
		all:           rules.LimaDistricts,
		abbreviations: abbrs,
	}
}

// Resolve returns the title-cased district and whether home delivery covers it.
func (r *DistrictResolver) Resolve(text string) (string, Coverage) {
	input := utils.Fold(districtLead.ReplaceAllString(text, ""))
	input = strings.Trim(input, " .,!¡?¿")
	if input == "" {
		return "", DistrictNotFound
	}

	if full, ok := r.expand(input); ok {
		input = full
	}

	if name, ok := findDistrict(r.covered, input); ok {
		return utils.TitleCase(name), DistrictCovered
	}
	if name, ok := findDistrict(r.all, input); ok {
		return utils.TitleCase(name), DistrictUncovered
	}
	return "", DistrictNotFound
}

// expand replaces a known abbreviation. Inside a sentence the one mentioned
// first wins, the longer one on a tie.
func (r *DistrictResolver) expand(input string) (string, bool) {
	for _, a := range r.abbreviations {
		if input == a.short {
			return a.full, true
		}
	}
	if len(r.abbreviations) == 0 || r.known(input) {
		return "", false
	}
	best, bestAt := -1, -1
	for i, a := range r.abbreviations {
		at := utils.PhraseIndex(input, a.short)
		if at < 0 {
			continue
		}
		if best < 0 || at < bestAt || (at == bestAt && len(a.short) > len(r.abbreviations[best].short)) {
			best, bestAt = i, at
		}
	}
	if best < 0 {
		return "", false
	}
	return r.abbreviations[best].full, true
}

func (r *DistrictResolver) known(input string) bool {
	_, ok := findDistrict(r.all, input)
	if ok {
		return true
	}
	_, ok = findDistrict(r.covered, input)
	return ok
}

// findDistrict tries an exact match, then a partial name ("isidro"), then a
// district named inside a longer sentence.
func findDistrict(districts []string, input string) (string, bool) {
	for _, d := range districts {
		if utils.Fold(d) == input {
			return d, true
		}
	}
	if len([]rune(input)) >= 3 {
		for _, d := range districts {
			if strings.Contains(utils.Fold(d), input) {
				return d, true
			}
		}
	}
	for _, d := range districts {
		if utils.ContainsPhrase(input, d) {
			return d, true
		}
	}
	return "", false
}

// ParseProvinceDistrict splits "Arequipa, Cayma" into province and district.
// Without a separator both are the whole text.
func ParseProvinceDistrict(text string) (province, district string) {
	clean := strings.TrimSpace(provinceLead.ReplaceAllString(text, ""))
	for _, sep := range []string{",", "-", "/"} {
		if strings.Contains(clean, sep) {
			parts := strings.SplitN(clean, sep, 2)
			province = utils.TitleCase(parts[0])
			district = utils.TitleCase(parts[1])
			if district == "" {
				district = province
			}
			if province == "" {
				province = district
			}
			return province, district
		}
	}
	clean = utils.TitleCase(clean)
	return clean, clean
}
