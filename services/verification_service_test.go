package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	res, err := parseVerdict(`{"valid": true, "score": 85, "feedback": "Bed is neatly made."}`)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, "Bed is neatly made.", res.Feedback)
}

func TestParseVerdictCodeFenced(t *testing.T) {
	raw := "```json\n{\"valid\": false, \"score\": 0, \"feedback\": \"Screenshot, not a photo.\"}\n```"
	res, err := parseVerdict(raw)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, 0, res.Score)
}

func TestParseVerdictClampsScore(t *testing.T) {
	res, err := parseVerdict(`{"valid": true, "score": 140, "feedback": "ok"}`)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
}

func TestParseVerdictInvalidZeroesScore(t *testing.T) {
	res, err := parseVerdict(`{"valid": false, "score": 60, "feedback": "unrelated image"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
}

func TestParseVerdictGarbage(t *testing.T) {
	_, err := parseVerdict("I cannot evaluate this image.")
	assert.Error(t, err)
}
