package slots

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   ChangeEvent
		wantErr string
	}{
		{
			name:  "valid write",
			event: ChangeEvent{Key: "partners", Value: json.RawMessage(`[]`), Source: "a", TimestampMs: 1},
		},
		{
			name:  "valid delete",
			event: ChangeEvent{Key: "partners", Deleted: true, TimestampMs: 1},
		},
		{
			name:    "missing key",
			event:   ChangeEvent{Value: json.RawMessage(`[]`), TimestampMs: 1},
			wantErr: "slot name cannot be empty",
		},
		{
			name:    "bad timestamp",
			event:   ChangeEvent{Key: "partners", Value: json.RawMessage(`[]`)},
			wantErr: "timestamp_ms must be positive",
		},
		{
			name:    "write without value",
			event:   ChangeEvent{Key: "partners", TimestampMs: 1},
			wantErr: "value is required",
		},
		{
			name:    "invalid json value",
			event:   ChangeEvent{Key: "partners", Value: json.RawMessage(`{x`), TimestampMs: 1},
			wantErr: "valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateSlotName(t *testing.T) {
	assert.NoError(t, ValidateSlotName("realtime_sync_data"))
	assert.Error(t, ValidateSlotName("Admin"))
	assert.Error(t, ValidateSlotName("1slot"))
	assert.Error(t, ValidateSlotName("with-dash"))
}
