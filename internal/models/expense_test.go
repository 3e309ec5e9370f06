package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var e Expense
	err := json.Unmarshal([]byte(`{"date_of_expense":"2024-01-01","amount":12.5}`), &e)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 1), e.DateOfExpense)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"date_of_expense":"2024-01-01"`)
	assert.Contains(t, string(out), `"note":null`)
}

func TestDateJSONAcceptsTimestamp(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T10:30:00Z"`), &d))
	assert.Equal(t, "2024-03-05", d.String())
}

func TestDateJSONRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"05/03/2024"`), &d))
}

func TestDateJSONEmpty(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{"time", time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC), "2024-02-29"},
		{"string", "2024-02-29", "2024-02-29"},
		{"timestamp string", "2024-02-29 00:00:00+00:00", "2024-02-29"},
		{"bytes", []byte("2024-02-29"), "2024-02-29"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2024, time.December, 31).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", v)
}

func TestUserHidesPasswordHash(t *testing.T) {
	out, err := json.Marshal(User{ID: 1, Email: "a@b.com", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
}
