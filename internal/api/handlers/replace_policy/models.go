package replace_policy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReplacePolicyRequest HTTP request model: ключ политики -> значение
// Значения принимаются строкой или числом, {"rolling_days": 14} и {"rolling_days": "14"} равнозначны.
type ReplacePolicyRequest map[string]json.RawMessage

// ToServiceValues конвертирует значения в строки для сервиса
func (r ReplacePolicyRequest) ToServiceValues() (map[string]string, error) {
	values := make(map[string]string, len(r))
	for key, raw := range r {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			values[key] = s
			continue
		}

		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%s: value must be a string or a number, got %s", key, strings.TrimSpace(string(raw)))
		}
		values[key] = n.String()
	}
	return values, nil
}
