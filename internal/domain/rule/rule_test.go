package rule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

func TestEscalationRule_Matches(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		payload   string
		matched   bool
		wantErr   bool
	}{
		{
			name:      "empty condition always matches",
			condition: "",
			payload:   `{"code":"AST-001"}`,
			matched:   true,
		},
		{
			name:      "numeric comparison matches",
			condition: "totalAmount > 1000000",
			payload:   `{"totalAmount": 2500000}`,
			matched:   true,
		},
		{
			name:      "numeric comparison does not match",
			condition: "totalAmount > 1000000",
			payload:   `{"totalAmount": 500}`,
			matched:   false,
		},
		{
			name:      "string equality",
			condition: `stage == "minister"`,
			payload:   `{"stage": "minister"}`,
			matched:   true,
		},
		{
			name:      "compound condition",
			condition: `returnCount >= 3 && stage == "asset_owner"`,
			payload:   `{"returnCount": 4, "stage": "asset_owner"}`,
			matched:   true,
		},
		{
			name:      "broken expression errors",
			condition: "totalAmount >",
			payload:   `{"totalAmount": 10}`,
			wantErr:   true,
		},
		{
			name:      "non-boolean result errors",
			condition: "totalAmount + 1",
			payload:   `{"totalAmount": 10}`,
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &EscalationRule{
				Name:      tt.name,
				EventKind: event.KindContractActivated,
				Condition: tt.condition,
				Enabled:   true,
			}
			matched, err := r.Matches(json.RawMessage(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestEscalationRule_Matches_NonBooleanSentinel(t *testing.T) {
	r := &EscalationRule{Condition: "1 + 1"}
	_, err := r.Matches(json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrNotBoolean)
}
