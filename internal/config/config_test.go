package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)

	assert.Equal(t, 20.0, r.AdvanceShalom)
	assert.Equal(t, 10.0, r.AdvanceLimaDelivery)
	assert.Contains(t, r.CoveredDistricts, "San Isidro")
	assert.Contains(t, r.CancellationWords, "cancelar")
	require.Len(t, r.ProductKeywords, 1)
	assert.Equal(t, "collar-girasol-radiant-01", r.ProductKeywords[0].ProductID)
	assert.NotEmpty(t, r.FAQ)
}

func TestParseRules_FillsDefaults(t *testing.T) {
	r, err := ParseRules([]byte(`
product_keywords:
  - product_id: p1
    keywords: [anillo]
`))
	require.NoError(t, err)
	assert.Equal(t, "Daaqui Joyas", r.BrandName)
	assert.Equal(t, 20.0, r.AdvanceShalom)
	assert.Equal(t, "mañana", r.WeekdayDeliveryMessage)
	assert.NotNil(t, r.DistrictAbbreviations)
}

func TestParseRules_Invalid(t *testing.T) {
	_, err := ParseRules([]byte(`advance_shalom: -5
product_keywords:
  - product_id: p1
    keywords: [x]`))
	assert.Error(t, err)

	_, err = ParseRules([]byte(`brand_name: x`))
	assert.Error(t, err)

	_, err = ParseRules([]byte(`product_keywords: [unclosed`))
	assert.Error(t, err)
}

func TestLoadRules_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
advance_shalom: 15
product_keywords:
  - product_id: p1
    keywords: [anillo]
`), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 15.0, r.AdvanceShalom)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("MESSAGING_PROVIDER", "")
	t.Setenv("MESSAGE_DELAY", "")
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "cloudapi", cfg.MessagingProvider)
	assert.Equal(t, "JoyasBot2025!", cfg.WhatsAppVerifyToken)
	assert.Equal(t, time.Second, cfg.MessageDelay)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("MESSAGE_DELAY", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MESSAGE_DELAY", "")
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("MESSAGING_PROVIDER", "telegram")
	_, err = Load()
	assert.Error(t, err)
}
