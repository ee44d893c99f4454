package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	logger, err = New("info", "json")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = New("loud", "json")
	assert.Error(t, err)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*******4321", MaskPhone("51987654321"))
	assert.Equal(t, "123", MaskPhone("123"))
}
