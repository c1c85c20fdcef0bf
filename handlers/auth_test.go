package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "bo***@example.com", maskEmail("bowler@example.com"))
	assert.Equal(t, "a***@example.com", maskEmail("ab@example.com"))
	assert.Equal(t, "***", maskEmail("not-an-email"))
}
