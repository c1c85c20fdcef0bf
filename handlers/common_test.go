package handlers

import (
	"errors"
	"fmt"
	"testing"

	"bowlingmanager/services"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation message survives", services.InputError("already a member of this team"), 400, "already a member of this team"},
		{"owner leave guard", services.InputError("team owner must transfer ownership before leaving"), 400, "team owner must transfer ownership before leaving"},
		{"storage budget", services.InputError("team storage limit exceeded"), 400, "team storage limit exceeded"},
		{"invalid score", services.ErrInvalidScore, 400, services.ErrInvalidScore.Error()},
		{"unauthorized", services.ErrUnauthorized, 403, services.ErrUnauthorized.Error()},
		{"unknown target", services.ErrUnknownTarget, 404, services.ErrUnknownTarget.Error()},
		{"quota", services.ErrQuotaExceeded, 429, services.ErrQuotaExceeded.Error()},
		{"duplicate", services.ErrDuplicate, 409, services.ErrDuplicate.Error()},
		{"wrapped sentinel", fmt.Errorf("adding scores: %w", services.ErrInvalidScore), 400, "adding scores: " + services.ErrInvalidScore.Error()},
		{"unknown error masked", errors.New("pq: connection refused"), 500, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := errorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, msg)
		})
	}
}
