package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/service"
)

func TestValidateRequest(t *testing.T) {
	testCases := []struct {
		name        string
		payload     interface{}
		expectedMsg string
	}{
		{name: "valid chat", payload: &service.ChatRequest{Message: "hi"}},
		{name: "missing message", payload: &service.ChatRequest{}, expectedMsg: "message is required"},
		{name: "title too long", payload: &RenameChatRequest{Title: strings.Repeat("x", 101)}, expectedMsg: "title must be at most 100 characters"},
		{name: "task title too short", payload: &service.CreateTaskRequest{Title: "x"}, expectedMsg: "title must be at least 2 characters"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRequest(tc.payload)
			if tc.expectedMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, app_errors.ErrValidation)
			assert.Contains(t, err.Error(), tc.expectedMsg)
		})
	}
}
