package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceRendersString(t *testing.T) {
	e := New()

	out, err := e.Replace("{{ .home }}/bin", map[string]any{"home": "/home/dev"})
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/bin", out)
}

func TestReplaceLeavesPlainStringsUntouched(t *testing.T) {
	e := New()

	out, err := e.Replace("no templates here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no templates here", out)
}

func TestReplaceMissingVariableFails(t *testing.T) {
	e := New()

	_, err := e.Replace("{{ .branch }}", map[string]any{"home": "/home/dev"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch")
}

func TestReplaceInvalidTemplateFails(t *testing.T) {
	e := New()

	_, err := e.Replace("{{ .unclosed", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template")
}

func TestReplaceSprigFunctions(t *testing.T) {
	e := New()

	out, err := e.Replace("{{ .name | upper }}", map[string]any{"name": "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", out)
}

func TestReplaceEnvFunction(t *testing.T) {
	t.Setenv("COMPANION_TEST_VALUE", "from-env")
	e := New()

	out, err := e.Replace(`{{ env "COMPANION_TEST_VALUE" }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", out)
}

func TestReplaceWalksMapsAndSlices(t *testing.T) {
	e := New()
	value := map[string]any{
		"args":  []any{"--ref", "{{ .branch }}"},
		"count": 3,
	}

	out, err := e.Replace(value, map[string]any{"branch": "main"})
	require.NoError(t, err)

	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"--ref", "main"}, m["args"])
	assert.Equal(t, 3, m["count"])
}

func TestReplaceStringSlice(t *testing.T) {
	e := New()

	out, err := e.Replace([]string{"status", "--user", "{{ .user }}"}, map[string]any{"user": "dev"})
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "--user", "dev"}, out)
}

func TestReplaceWrapsNestedErrors(t *testing.T) {
	e := New()

	_, err := e.Replace(map[string]any{"args": []any{"{{ .missing }}"}}, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `error in key "args"`)
}

func TestExtractVariables(t *testing.T) {
	e := New()
	value := map[string]any{
		"cmd":  "{{ .home }}/bin/tool",
		"args": []any{"{{ .branch | upper }}", "plain"},
	}

	assert.Equal(t, []string{"branch", "home"}, e.ExtractVariables(value))
}

func TestExtractVariablesNestedFields(t *testing.T) {
	e := New()

	assert.Equal(t, []string{"repo"}, e.ExtractVariables("{{ .repo.name }}"))
}

func TestValidateContext(t *testing.T) {
	e := New()
	value := []any{"{{ .home }}", "{{ .branch }}"}

	assert.NoError(t, e.ValidateContext(value, map[string]any{"home": "/h", "branch": "main"}))

	err := e.ValidateContext(value, map[string]any{"home": "/h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch")
}

func TestBaseContextKeys(t *testing.T) {
	ctx := BaseContext()

	assert.Contains(t, ctx, "home")
	assert.Contains(t, ctx, "hostname")
	assert.Contains(t, ctx, "user")
	assert.NotEmpty(t, ctx["home"])
}

func TestMergeContextsLaterWins(t *testing.T) {
	merged := MergeContexts(
		map[string]any{"a": 1, "b": 1},
		map[string]any{"b": 2},
	)

	assert.Equal(t, map[string]any{"a": 1, "b": 2}, merged)
}
