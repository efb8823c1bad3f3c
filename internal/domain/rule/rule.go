package rule

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/google/uuid"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

var ErrNotBoolean = errors.New("escalation condition did not evaluate to boolean")

// EscalationRule raises notification priority for domain events whose payload
// matches a boolean condition expression, for example
// `totalAmount > 1000000`. Rules are admin-configured and evaluated at
// dispatch time; a non-matching or broken rule leaves default routing intact.
type EscalationRule struct {
	ID        int64      `json:"id"`
	RuleID    uuid.UUID  `json:"ruleId"`
	Name      string     `json:"name"`
	EventKind event.Kind `json:"eventKind"`
	Condition string     `json:"condition"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Matches evaluates the rule condition against the event payload. An empty
// condition always matches.
func (r *EscalationRule) Matches(payload json.RawMessage) (bool, error) {
	cond := strings.TrimSpace(r.Condition)
	if cond == "" {
		return true, nil
	}

	params := map[string]interface{}{}
	if len(payload) > 0 {
		var raw map[string]interface{}
		if err := json.Unmarshal(payload, &raw); err == nil {
			params = raw
		}
	}

	expr, err := govaluate.NewEvaluableExpression(cond)
	if err != nil {
		return false, err
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, ErrNotBoolean
	}
	return b, nil
}
