package refresh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
)

func TestParseCommand(t *testing.T) {
	current := models.Controls{MinMagnitude: 2.5, Limit: 100}

	tests := []struct {
		name       string
		line       string
		want       models.Controls
		wantAction Action
		wantErr    bool
	}{
		{"blank", "   ", current, ActionNone, false},
		{"magnitude", "mag 4.5", models.Controls{MinMagnitude: 4.5, Limit: 100}, ActionRefresh, false},
		{"limit", "limit 250", models.Controls{MinMagnitude: 2.5, Limit: 250}, ActionRefresh, false},
		{"window", "window 24", models.Controls{MinMagnitude: 2.5, Limit: 100, WindowHours: 24}, ActionRefresh, false},
		{"case insensitive", "MAG 3", models.Controls{MinMagnitude: 3, Limit: 100}, ActionRefresh, false},
		{"refresh", "refresh", current, ActionRefresh, false},
		{"help", "help", current, ActionHelp, false},
		{"quit", "quit", current, ActionQuit, false},
		{"magnitude too high", "mag 11", current, ActionNone, true},
		{"magnitude not a number", "mag big", current, ActionNone, true},
		{"magnitude NaN", "mag nan", current, ActionNone, true},
		{"magnitude infinite", "mag inf", current, ActionNone, true},
		{"limit zero", "limit 0", current, ActionNone, true},
		{"negative window", "window -1", current, ActionNone, true},
		{"missing value", "mag", current, ActionNone, true},
		{"unknown", "zoom 3", current, ActionNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, action, err := ParseCommand(tt.line, current)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantAction, action)
		})
	}
}

func TestParseCommand_UnknownIsTyped(t *testing.T) {
	_, _, err := ParseCommand("zoom 3", models.Controls{})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
