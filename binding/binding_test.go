package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolateKeepsUnknownPlaceholders(t *testing.T) {
	vars := Vars{"name": "Alex_Morgan"}
	assert.Equal(t, "Alex_Morgan_resume", Interpolate("${name}_resume", vars))
	assert.Equal(t, "${missing}_resume", Interpolate("${missing}_resume", vars))
	assert.Equal(t, "${name}", Interpolate("${name}", nil))
}

func TestExpandNestedPaths(t *testing.T) {
	data := map[string]any{
		"resume": map[string]any{
			"skills": []any{"Go", map[string]string{"name": "SQL"}},
		},
		"tags": []string{"a", "b"},
	}
	assert.Equal(t, "Go SQL b", Expand("${resume.skills[0]} ${ resume.skills[1].name } ${tags[1]}", data, nil))
	assert.Equal(t, "x-", Expand("x-${tags[9]}", data, nil))
	assert.Equal(t, "?", Expand("${nope}", data, func(string) string { return "?" }))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"name", "template"}, Placeholders("${name}-${ template }-${}"))
	assert.Empty(t, Placeholders("resume"))
}
