// Package skills discovers skills packaged as directories containing a
// SKILL.md file with YAML frontmatter, and provides read access to the files
// inside a skill directory without letting a caller escape it.
package skills

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// DefaultManifestName is the file name that marks a directory as a skill
const DefaultManifestName = "SKILL.md"

// Skill represents a discovered skill with its metadata
type Skill struct {
	Name        string // Name from frontmatter, not guaranteed unique
	Description string // Description from frontmatter
	Directory   string // Directory containing the manifest; all file access is confined to it

	manifestPath string
	content      string
}

// ManifestPath returns the path of the SKILL.md file the skill was parsed from
func (s *Skill) ManifestPath() string {
	return s.manifestPath
}

// Body returns the markdown that follows the frontmatter, as read at discovery time
func (s *Skill) Body() string {
	_, body, err := splitFrontmatter(s.content)
	if err != nil {
		return ""
	}
	return strings.TrimLeft(body, "\r\n")
}

// skillJSON is the wire form of a skill returned by list operations
type skillJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

// MarshalJSON renders the skill as {name, description, path}
func (s *Skill) MarshalJSON() ([]byte, error) {
	return json.Marshal(skillJSON{
		Name:        s.Name,
		Description: s.Description,
		Path:        s.Directory,
	})
}

// ReturnType selects what a read operation returns
type ReturnType string

const (
	// ReturnContent returns the file content only
	ReturnContent ReturnType = "content"
	// ReturnFilePath returns the absolute file path only
	ReturnFilePath ReturnType = "file_path"
	// ReturnBoth returns the content together with the file path
	ReturnBoth ReturnType = "both"
)

// ReturnTypes lists every accepted return type in display order
var ReturnTypes = []ReturnType{ReturnContent, ReturnFilePath, ReturnBoth}

// Valid reports whether r is one of the known return types
func (r ReturnType) Valid() bool {
	switch r {
	case ReturnContent, ReturnFilePath, ReturnBoth:
		return true
	}
	return false
}

// String implements fmt.Stringer
func (r ReturnType) String() string {
	return string(r)
}

// ParseReturnType converts a user supplied string into a ReturnType.
// An empty string selects ReturnBoth.
func ParseReturnType(s string) (ReturnType, error) {
	if s == "" {
		return ReturnBoth, nil
	}
	r := ReturnType(s)
	if err := r.validate(); err != nil {
		return "", err
	}
	return r, nil
}

func (r ReturnType) validate() error {
	if r.Valid() {
		return nil
	}
	return errors.Wrapf(ErrInvalidReturnType, "invalid return_type: %q, must be 'content', 'file_path', or 'both'", string(r))
}

// Document is the result of reading a manifest or a skill file.
// Content is only populated for ReturnContent and ReturnBoth, FilePath only
// for ReturnFilePath and ReturnBoth.
type Document struct {
	ReturnType ReturnType
	Content    string
	FilePath   string
}

type documentJSON struct {
	Content  string `json:"content"`
	FilePath string `json:"file_path"`
}

// String returns the single value carried by the document. For ReturnBoth it
// returns the content.
func (d *Document) String() string {
	if d.ReturnType == ReturnFilePath {
		return d.FilePath
	}
	return d.Content
}

// MarshalJSON encodes the document as a JSON string for the single-value
// return types and as {content, file_path} for ReturnBoth.
func (d *Document) MarshalJSON() ([]byte, error) {
	switch d.ReturnType {
	case ReturnContent:
		return json.Marshal(d.Content)
	case ReturnFilePath:
		return json.Marshal(d.FilePath)
	default:
		return json.Marshal(documentJSON{Content: d.Content, FilePath: d.FilePath})
	}
}

func newDocument(rt ReturnType, content, filePath string) *Document {
	d := &Document{ReturnType: rt}
	if rt != ReturnFilePath {
		d.Content = content
	}
	if rt != ReturnContent {
		d.FilePath = filePath
	}
	return d
}
