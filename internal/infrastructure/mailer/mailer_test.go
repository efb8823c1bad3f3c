package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Models mirror what the contract service passes to EmailInvestor; every
// placeholder must resolve so investors never see "<no value>".
func TestTemplates_RenderCallerModels(t *testing.T) {
	tests := []struct {
		key   string
		model map[string]interface{}
		want  []string
	}{
		{
			key: "contract_activated",
			model: map[string]interface{}{
				"contractCode": "CNT-2025-042",
				"totalAmount":  "345000",
				"startDate":    "2025-04-01",
				"endDate":      "2028-04-01",
			},
			want: []string{"CNT-2025-042", "345000", "2025-04-01", "2028-04-01"},
		},
		{
			key: "contract_cancelled",
			model: map[string]interface{}{
				"contractCode": "CNT-2025-042",
				"reason":       "breach of terms",
			},
			want: []string{"CNT-2025-042", "breach of terms"},
		},
		{
			key: "contract_expiring",
			model: map[string]interface{}{
				"contractCode": "CNT-2025-042",
				"endDate":      "2028-04-01",
			},
			want: []string{"CNT-2025-042", "2028-04-01"},
		},
		{
			key: "installment_overdue",
			model: map[string]interface{}{
				"contractCode": "CNT-2025-042",
				"sequence":     3,
				"amountDue":    "86250",
				"dueDate":      "2025-10-01",
			},
			want: []string{"CNT-2025-042", "3", "86250", "2025-10-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			tmpl, ok := templates[tt.key]
			require.True(t, ok)

			var body bytes.Buffer
			require.NoError(t, tmpl.body.Execute(&body, tt.model))

			rendered := body.String()
			assert.NotContains(t, rendered, "<no value>")
			for _, want := range tt.want {
				assert.Contains(t, rendered, want)
			}
		})
	}
}

func TestSendTemplated_UnknownTemplate(t *testing.T) {
	m := NewSMTPMailer("localhost", "25", "", "", "noreply@example.com", zerolog.Nop())

	err := m.SendTemplated(context.Background(), "investor@example.com", "nonexistent", nil)

	assert.ErrorContains(t, err, "unknown mail template")
}
