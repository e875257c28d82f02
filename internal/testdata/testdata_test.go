package testdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDynamicValueRecognizesNLPhrasing(t *testing.T) {
	cases := []string{
		"my email", "a valid username", "the password", "any phone",
		"test email", "a new email", "a random username",
		"auto-generated password", "sample data", "email",
	}
	for _, c := range cases {
		assert.True(t, IsDynamicValue(c), "expected %q to be recognized as dynamic", c)
	}
	assert.False(t, IsDynamicValue("john@example.com"))
	assert.False(t, IsDynamicValue("Submit"))
}

func TestExtractFieldHintStripsWrappingPhrase(t *testing.T) {
	assert.Equal(t, "email", ExtractFieldHint("my email"))
	assert.Equal(t, "first name", ExtractFieldHint("a valid first name"))
	assert.Equal(t, "username", ExtractFieldHint("the username"))
}

func TestClassifyFieldPrefersUsernameOverName(t *testing.T) {
	kind, ok := ClassifyField("username")
	assert.True(t, ok)
	assert.Equal(t, FieldUsername, kind)
}

func TestClassifyFieldFallsBackToFullName(t *testing.T) {
	kind, ok := ClassifyField("full name")
	assert.True(t, ok)
	assert.Equal(t, FieldFullName, kind)
}

func TestClassifyFieldUnknownReturnsFalse(t *testing.T) {
	_, ok := ClassifyField("favorite color")
	assert.False(t, ok)
}

func TestSessionResolveIsConsistentWithinSession(t *testing.T) {
	s := NewSession()
	v1, ok := s.Resolve("my email")
	assert.True(t, ok)
	assert.NotEmpty(t, v1)

	v2, ok := s.Resolve("the email")
	assert.True(t, ok)
	assert.Equal(t, v1, v2, "repeated reference to the same field kind should resolve to the same value")
}

func TestSessionResolveReturnsFalseForLiteralValue(t *testing.T) {
	s := NewSession()
	_, ok := s.Resolve("john@example.com")
	assert.False(t, ok)
}

func TestSessionGenerateProducesPlausibleEmail(t *testing.T) {
	s := NewSession()
	v := s.Generate(FieldEmail)
	assert.Contains(t, v, "@")
}
