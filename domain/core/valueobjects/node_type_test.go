package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTypesIsClosedAndOrdered(t *testing.T) {
	types := ListTypes()

	require.Equal(t, []NodeType{
		TypeJob,
		TypeEducation,
		TypeProject,
		TypeEvent,
		TypeAction,
		TypeCareerTransition,
	}, types)

	// Mutating the returned slice must not affect the registry
	types[0] = NodeType("hacked")
	assert.Equal(t, TypeJob, ListTypes()[0])
}

func TestParseNodeType(t *testing.T) {
	for _, registered := range ListTypes() {
		parsed, ok := ParseNodeType(string(registered))
		require.True(t, ok, "expected %q to parse", registered)
		assert.Equal(t, registered, parsed)
	}

	for _, raw := range []string{"", "Job", "JOB", "sabbatical", "career_transition", "job "} {
		_, ok := ParseNodeType(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestLabelKey(t *testing.T) {
	assert.Equal(t, "role", TypeJob.LabelKey())

	for _, typ := range []NodeType{TypeEducation, TypeProject, TypeEvent, TypeAction, TypeCareerTransition} {
		assert.Equal(t, "title", typ.LabelKey())
	}
}

func TestConventionalMetaKeysAreCopies(t *testing.T) {
	keys := TypeJob.ConventionalMetaKeys()
	require.Equal(t, []string{"role", "company"}, keys)

	keys[0] = "mutated"
	assert.Equal(t, []string{"role", "company"}, TypeJob.ConventionalMetaKeys())
}
