package replace_policy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToServiceValues(t *testing.T) {
	var req ReplacePolicyRequest
	require.NoError(t, json.Unmarshal([]byte(`{"rolling_days": 14, "opening_time": "10:00", "daily_max_guests": "80"}`), &req))

	values, err := req.ToServiceValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"rolling_days":     "14",
		"opening_time":     "10:00",
		"daily_max_guests": "80",
	}, values)
}

func TestToServiceValues_RejectsObjects(t *testing.T) {
	var req ReplacePolicyRequest
	require.NoError(t, json.Unmarshal([]byte(`{"rolling_days": {"value": 14}}`), &req))

	_, err := req.ToServiceValues()
	require.Error(t, err)
}
