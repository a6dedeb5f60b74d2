package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuntimeInputs(t *testing.T) {
	inputs, err := parseRuntimeInputs([]string{
		"harvester.source=/data/sensors.json",
		"harvester.limit=10",
	})
	require.NoError(t, err)
	assert.Equal(t, "/data/sensors.json", inputs["harvester"]["source"])
	assert.Equal(t, float64(10), inputs["harvester"]["limit"])
}

func TestParseRuntimeInputs_Empty(t *testing.T) {
	inputs, err := parseRuntimeInputs(nil)
	require.NoError(t, err)
	assert.Nil(t, inputs)
}

func TestParseRuntimeInputs_InvalidFormat(t *testing.T) {
	_, err := parseRuntimeInputs([]string{"not-a-kv-pair"})
	assert.Error(t, err)

	_, err = parseRuntimeInputs([]string{"noDot=value"})
	assert.Error(t, err)
}
