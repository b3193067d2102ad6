package skills

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReturnType(t *testing.T) {
	tests := []struct {
		input    string
		expected ReturnType
		wantErr  bool
	}{
		{"content", ReturnContent, false},
		{"file_path", ReturnFilePath, false},
		{"both", ReturnBoth, false},
		{"", ReturnBoth, false},
		{"Content", "", true},
		{"path", "", true},
		{"invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rt, err := ParseReturnType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReturnType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rt)
		})
	}
}

func TestDocumentJSON(t *testing.T) {
	tests := []struct {
		name     string
		doc      *Document
		expected string
	}{
		{
			name:     "content",
			doc:      newDocument(ReturnContent, "hello", "/skills/a/SKILL.md"),
			expected: `"hello"`,
		},
		{
			name:     "file path",
			doc:      newDocument(ReturnFilePath, "hello", "/skills/a/SKILL.md"),
			expected: `"/skills/a/SKILL.md"`,
		},
		{
			name:     "both",
			doc:      newDocument(ReturnBoth, "hello", "/skills/a/SKILL.md"),
			expected: `{"content":"hello","file_path":"/skills/a/SKILL.md"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.doc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(b))
		})
	}
}

func TestDocumentString(t *testing.T) {
	assert.Equal(t, "body", newDocument(ReturnContent, "body", "/p").String())
	assert.Equal(t, "/p", newDocument(ReturnFilePath, "body", "/p").String())
	assert.Equal(t, "body", newDocument(ReturnBoth, "body", "/p").String())
}

func TestSkillBodyWithoutContent(t *testing.T) {
	skill := &Skill{Name: "bare", Description: "constructed by hand"}
	assert.Empty(t, skill.Body())
}
