// cmd/tools/registry-updater/scaffold_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"appetite-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScaffold(t *testing.T) {
	a, ok := registry.Default().Find("persist-appetite-matches")
	require.True(t, ok)

	files, err := renderScaffold(a)
	require.NoError(t, err)
	require.Len(t, files, 4)

	models := string(files["models.go"])
	assert.Contains(t, models, "package persistappetitematches")
	assert.Contains(t, models, "RunID")
	assert.Contains(t, models, "`json:\"runId\"`")
	assert.Contains(t, models, "PersistedCount int")

	handler := string(files["handler.go"])
	assert.Contains(t, handler, `TaskType = "persist-appetite-matches"`)
	assert.Contains(t, handler, "errors.NewErrorHandler(scoped)")

	assert.Contains(t, string(files["config.go"]), `time.ParseDuration("15s")`)
	assert.Contains(t, string(files["schema.go"]), `"topMatches"`)
}

func TestScaffoldCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity-registry.json")
	out := filepath.Join(dir, "workers")

	_, err := execute(t, "sync", "--path", path)
	require.NoError(t, err)

	stdout, err := execute(t, "scaffold", "--path", path, "--id", "notify-appetite-matches", "--output", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "generated")

	_, err = os.Stat(filepath.Join(out, "appetite", "notify-appetite-matches", "handler.go"))
	require.NoError(t, err)

	stdout, err = execute(t, "scaffold", "--path", path, "--id", "notify-appetite-matches", "--output", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "skipped")

	_, err = execute(t, "scaffold", "--path", path, "--id", "missing-task", "--output", out)
	assert.ErrorIs(t, err, registry.ErrActivityNotFound)
}

func TestGoFieldNameAndType(t *testing.T) {
	assert.Equal(t, "QuoteID", goFieldName("quoteId"))
	assert.Equal(t, "UnderwriterID", goFieldName("underwriter_id"))
	assert.Equal(t, "TopMatches", goFieldName("topMatches"))

	assert.Equal(t, "float64", goType([]interface{}{"null", "number"}))
	assert.Equal(t, "int", goType("integer"))
	assert.Equal(t, "interface{}", goType(nil))
}
