// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	reg := Default()

	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 3)

	a, ok := reg.Find("persist-appetite-matches")
	require.True(t, ok)
	assert.Equal(t, "15s", a.Timeout)
	assert.Contains(t, a.ErrorCodes, "MATCH_PERSIST_FAILED")
	assert.Equal(t, 3, a.Retries)
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")

	require.NoError(t, SaveRegistry(Default(), path))
	loaded, err := LoadRegistry(path)
	require.NoError(t, err)

	require.Len(t, loaded.Activities, 3)
	assert.Equal(t, "score-appetite-matches", loaded.Activities[0].TaskType)
	assert.Equal(t, "object", loaded.Activities[0].InputSchema["type"])
	require.NoError(t, loaded.Validate())
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}

func TestAddAndUpsert(t *testing.T) {
	reg := &ActivityRegistry{Version: "1.0.0"}

	require.NoError(t, reg.Add(Activity{ID: "rank-carriers", TaskType: "rank-carriers"}))
	assert.Error(t, reg.Add(Activity{ID: "rank-carriers"}))
	assert.NotEmpty(t, reg.LastUpdated)

	replaced := reg.Upsert(Activity{ID: "rank-carriers", TaskType: "rank-carriers", Version: "2.0.0"})
	assert.True(t, replaced)
	assert.Len(t, reg.Activities, 1)
	assert.Equal(t, "2.0.0", reg.Activities[0].Version)

	assert.False(t, reg.Upsert(Activity{ID: "other-task"}))
	assert.Len(t, reg.Activities, 2)
}

func TestSetField(t *testing.T) {
	reg := Default()

	require.NoError(t, reg.SetField("score-appetite-matches", "status", StatusVerified))
	require.NoError(t, reg.SetField("score-appetite-matches", "retries", "5"))
	require.NoError(t, reg.SetField("score-appetite-matches", "timeout", "45s"))

	a, _ := reg.Find("score-appetite-matches")
	assert.Equal(t, StatusVerified, a.ImplementationStatus)
	assert.Equal(t, 5, a.Retries)
	assert.Equal(t, "45s", a.Timeout)

	assert.ErrorIs(t, reg.SetField("nope", "status", StatusPlanned), ErrActivityNotFound)
	assert.Error(t, reg.SetField("score-appetite-matches", "status", "shipped"))
	assert.Error(t, reg.SetField("score-appetite-matches", "retries", "many"))
	assert.Error(t, reg.SetField("score-appetite-matches", "timeout", "soon"))
	assert.Error(t, reg.SetField("score-appetite-matches", "owner", "x"))
}

func TestValidate_Problems(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "a", DisplayName: "A", Category: "appetite", TaskType: "ScoreMatches"},
		{ID: "a", DisplayName: "A", Category: "appetite", TaskType: "score-matches"},
		{ID: "b", TaskType: "persist-matches", Timeout: "ten"},
		{ID: "c", DisplayName: "C", Category: "appetite", TaskType: "notify-matches",
			InputSchema: map[string]interface{}{"type": 42}},
	}}

	err := reg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "kebab-case")
	assert.Contains(t, msg, "duplicate activity ID: a")
	assert.Contains(t, msg, "b missing required field: DisplayName")
	assert.Contains(t, msg, "invalid timeout")
	assert.Contains(t, msg, "c: input schema")

	assert.Error(t, (&ActivityRegistry{}).Validate())
}
