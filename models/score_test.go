package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGameType(t *testing.T) {
	assert.Equal(t, GameTypeRegular, NormalizeGameType("정기전"))
	assert.Equal(t, GameTypeInterleague, NormalizeGameType("교류전"))
	// Typos and stray values never create new categories
	assert.Equal(t, GameTypeOther, NormalizeGameType("정기젼"))
	assert.Equal(t, GameTypeOther, NormalizeGameType(""))
	assert.Equal(t, GameTypeOther, NormalizeGameType("기타"))
}

func TestValidScore(t *testing.T) {
	assert.True(t, ValidScore(0))
	assert.True(t, ValidScore(300))
	assert.False(t, ValidScore(-1))
	assert.False(t, ValidScore(301))
}
