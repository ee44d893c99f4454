package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daaqui/joyas-bot/internal/config"
)

func TestClassify_YesNo(t *testing.T) {
	c := NewClassifier([]string{"cancelar", "ya no quiero"})

	tests := []struct {
		text string
		want Intent
	}{
		{"Sí", Affirm},
		{"si claro", Affirm},
		{"SII", Affirm},
		{"ok", Affirm},
		{"Dale!", Affirm},
		{"de acuerdo", Affirm},
		{"no sé, creo que sí", Affirm},
		{"no", Deny},
		{"así no", Deny},
		{"mmm", Deny},
		{"cancelar", Cancel},
		{"COMPROBANTE_RECIBIDO", Deny},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text, ExpectYesNo))
		})
	}
}

func TestClassify_Location(t *testing.T) {
	c := NewClassifier(nil)
	assert.Equal(t, Lima, c.Classify("Soy de LIMA", ExpectLocation))
	assert.Equal(t, Province, c.Classify("provincia", ExpectLocation))
	assert.Equal(t, Province, c.Classify("de provincias", ExpectLocation))
	assert.Equal(t, FreeText, c.Classify("Arequipa", ExpectLocation))
	assert.Equal(t, FreeText, c.Classify("limapolis", ExpectLocation))
}

func TestClassify_Upsell(t *testing.T) {
	c := NewClassifier(nil)
	assert.Equal(t, Offer, c.Classify("quiero la OFERTA", ExpectUpsell))
	assert.Equal(t, Continue, c.Classify("continuar", ExpectUpsell))
	assert.Equal(t, Continue, c.Classify("solo uno", ExpectUpsell))
}

func TestClassify_FreeTextAndReceipt(t *testing.T) {
	c := NewClassifier(nil)
	assert.Equal(t, FreeText, c.Classify("Ana, Jr. Lima 123", ExpectFreeText))
	assert.Equal(t, FreeText, c.Classify("ya pagué", ExpectReceipt))
	assert.Equal(t, FreeText, c.Classify("COMPROBANTE_RECIBIDO", ExpectReceipt))
}

func TestIsCancellation_WholeMessageOnly(t *testing.T) {
	c := NewClassifier([]string{"cancelar", "ya no quiero", "no gracias"})
	assert.True(t, c.IsCancellation("  Cancelar "))
	assert.True(t, c.IsCancellation("Ya no quiero"))
	assert.False(t, c.IsCancellation("quiero cancelar el envío a lima"))
	assert.False(t, c.IsCancellation(""))
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "affirm", Affirm.String())
	assert.Equal(t, "free_text", FreeText.String())
}

func TestDistrictResolver(t *testing.T) {
	rules, err := config.DefaultRules()
	require.NoError(t, err)
	r := NewDistrictResolver(rules)

	tests := []struct {
		text     string
		district string
		coverage Coverage
	}{
		{"San Isidro", "San Isidro", DistrictCovered},
		{"vivo en miraflores", "Miraflores", DistrictCovered},
		{"Estoy en BREÑA", "Breña", DistrictCovered},
		{"sjl", "San Juan De Lurigancho", DistrictCovered},
		{"soy de surco", "Santiago De Surco", DistrictCovered},
		{"isidro", "San Isidro", DistrictCovered},
		{"Ancón", "Ancon", DistrictUncovered},
		{"Villa El Salvador", "Villa El Salvador", DistrictUncovered},
		{"ves", "Villa El Salvador", DistrictUncovered},
		{"sjl cerca a surco", "San Juan De Lurigancho", DistrictCovered},
		{"surco cerca a sjl", "Santiago De Surco", DistrictCovered},
		{"Cusco", "", DistrictNotFound},
		{"", "", DistrictNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			district, coverage := r.Resolve(tt.text)
			assert.Equal(t, tt.coverage, coverage, coverage.String())
			assert.Equal(t, tt.district, district)
		})
	}
}

func TestParseProvinceDistrict(t *testing.T) {
	tests := []struct {
		text, province, district string
	}{
		{"Arequipa, Arequipa", "Arequipa", "Arequipa"},
		{"cusco - wanchaq", "Cusco", "Wanchaq"},
		{"Piura/Castilla", "Piura", "Castilla"},
		{"soy de trujillo", "Trujillo", "Trujillo"},
		{"mi ciudad es Ica, Parcona", "Ica", "Parcona"},
		{"Tacna,", "Tacna", "Tacna"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			province, district := ParseProvinceDistrict(tt.text)
			assert.Equal(t, tt.province, province)
			assert.Equal(t, tt.district, district)
		})
	}
}

func TestTransitions(t *testing.T) {
	ctx := context.Background()

	dst, err := next(ctx, StateFinalConfirmation, EventConfirmDelivery)
	require.NoError(t, err)
	assert.Equal(t, StateLimaPaymentAgreement, dst)

	dst, err = next(ctx, StateShalomExperience, EventDecline)
	require.NoError(t, err)
	assert.Equal(t, StateShalomAgencyKnowledge, dst)

	dst, err = next(ctx, StateShalomPayment, EventReceipt)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, dst)

	_, err = next(ctx, StateLocation, EventReceipt)
	assert.Error(t, err)
}

func TestTransitions_CancelFromEveryActiveState(t *testing.T) {
	for _, state := range activeStates {
		dst, err := next(context.Background(), state, EventCancel)
		require.NoError(t, err, state)
		assert.Equal(t, StateClosed, dst)
	}
}

func TestEveryActiveStateHasExpectationAndQuestion(t *testing.T) {
	for _, state := range activeStates {
		_, ok := expectations[state]
		assert.True(t, ok, "expectation for %s", state)
		_, ok = LastQuestion(state)
		assert.True(t, ok, "question for %s", state)
		assert.True(t, IsActiveState(state))
	}
	assert.False(t, IsActiveState(StateClosed))
}
