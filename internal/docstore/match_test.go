package docstore

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	doc := json.RawMessage(`{"folderId":"d1","members":["u1","u2"],"count":3,"createdBy":null}`)

	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"equal string", Equal("folderId", "d1"), true},
		{"equal other string", Equal("folderId", "d2"), false},
		{"equal number", Equal("count", 3), true},
		{"equal null", Equal("createdBy", nil), true},
		{"missing field", Equal("title", "x"), false},
		{"array contains", ArrayContains("members", "u2"), true},
		{"array does not contain", ArrayContains("members", "u3"), false},
		{"array contains on scalar", ArrayContains("folderId", "d1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(doc, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeOverlaysTopLevelFields(t *testing.T) {
	merged, err := Merge(
		json.RawMessage(`{"name":"Bio","members":["u1"],"folders":["d1"]}`),
		json.RawMessage(`{"members":[]}`),
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Bio","members":[],"folders":["d1"]}`, string(merged))
}

func TestResolveServerTimestamp(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	in := Fields{"createdAt": ServerTimestamp, "name": "x"}

	out := Resolve(in, now)

	assert.Equal(t, now.UTC(), out["createdAt"])
	assert.Equal(t, ServerTimestamp, in["createdAt"], "input left untouched")
}

func TestOpErrorMatchesUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Unavailable("get", "classes", "c1", cause)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "docstore get classes/c1: dial tcp: refused", err.Error())
}

func TestNewIDLength(t *testing.T) {
	id, err := NewID()
	require.NoError(t, err)
	assert.Len(t, id, IDLength)
}
