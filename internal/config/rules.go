package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules_default.yaml
var defaultRulesYAML []byte

// ProductKeywords maps the words customers use to a catalog product.
type ProductKeywords struct {
	ProductID string   `yaml:"product_id"`
	Keywords  []string `yaml:"keywords"`
}

// FAQEntry is a canned answer triggered by any of its keywords.
type FAQEntry struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
}

// BusinessRules is the shop configuration. It is loaded once at startup and
// never mutated afterwards.
type BusinessRules struct {
	BrandName  string `yaml:"brand_name"`
	RUC        string `yaml:"ruc"`
	YapeNumber string `yaml:"yape_number"`
	YapeHolder string `yaml:"yape_holder"`

	AdvanceShalom       float64 `yaml:"advance_shalom"`
	AdvanceLimaDelivery float64 `yaml:"advance_lima_delivery"`

	WeekdayDeliveryMessage string `yaml:"weekday_delivery_message"`
	WeekendDeliveryMessage string `yaml:"weekend_delivery_message"`
	LimaDeliveryHours      string `yaml:"lima_delivery_hours"`

	CancellationWords     []string          `yaml:"cancellation_words"`
	ProductKeywords       []ProductKeywords `yaml:"product_keywords"`
	CoveredDistricts      []string          `yaml:"covered_districts"`
	LimaDistricts         []string          `yaml:"lima_districts"`
	DistrictAbbreviations map[string]string `yaml:"district_abbreviations"`
	FAQ                   []FAQEntry        `yaml:"faq"`
}

// DefaultRules returns the rules bundled with the binary.
func DefaultRules() (*BusinessRules, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads rules from path, or the bundled defaults when path is empty.
func LoadRules(path string) (*BusinessRules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules and fills in defaults for missing values.
func ParseRules(data []byte) (*BusinessRules, error) {
	var r BusinessRules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("config: parse rules: %w", err)
	}
	r.applyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *BusinessRules) applyDefaults() {
	if r.BrandName == "" {
		r.BrandName = "Daaqui Joyas"
	}
	if r.AdvanceShalom == 0 {
		r.AdvanceShalom = 20
	}
	if r.AdvanceLimaDelivery == 0 {
		r.AdvanceLimaDelivery = 10
	}
	if r.WeekdayDeliveryMessage == "" {
		r.WeekdayDeliveryMessage = "mañana"
	}
	if r.WeekendDeliveryMessage == "" {
		r.WeekendDeliveryMessage = "el Lunes"
	}
	if r.LimaDeliveryHours == "" {
		r.LimaDeliveryHours = "durante el día"
	}
	if r.YapeNumber == "" {
		r.YapeNumber = "No configurado"
	}
	if r.DistrictAbbreviations == nil {
		r.DistrictAbbreviations = map[string]string{}
	}
}

// Validate rejects rule sets the bot cannot sell with.
func (r *BusinessRules) Validate() error {
	if r.AdvanceShalom < 0 || r.AdvanceLimaDelivery < 0 {
		return fmt.Errorf("config: advance amounts must not be negative")
	}
	if len(r.ProductKeywords) == 0 {
		return fmt.Errorf("config: at least one product_keywords entry is required")
	}
	for _, pk := range r.ProductKeywords {
		if pk.ProductID == "" || len(pk.Keywords) == 0 {
			return fmt.Errorf("config: product_keywords entries need product_id and keywords")
		}
	}
	return nil
}
