package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroSentinel/internal/model"
)

func TestSampleRun_PlainReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRun(&buf, sampleRun(time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)), false))

	out := buf.String()
	assert.Contains(t, out, "Regime: CONTRACTION")
	assert.Contains(t, out, " 1. HC ")
	assert.NotContains(t, out, "<b>")
	assert.NotContains(t, out, "No market data")
}

func TestSampleRun_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRun(&buf, sampleRun(time.Unix(0, 0).UTC()), true))

	var got struct {
		Source  string             `json:"source"`
		Weights map[string]float64 `json:"weights"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "sample", got.Source)
	assert.Len(t, got.Weights, int(model.SectorCount))
	assert.InDelta(t, 0.2, got.Weights["Healthcare"], 1e-9)
}
