package skills

import "github.com/pkg/errors"

// Errors returned by the registry. They are wrapped with the offending name or
// path, so match them with errors.Is.
var (
	ErrInvalidRoot       = errors.New("invalid skills directory")
	ErrMalformedManifest = errors.New("malformed skill manifest")
	ErrMissingField      = errors.New("missing required frontmatter field")
	ErrSkillNotFound     = errors.New("skill not found")
	ErrInvalidReturnType = errors.New("invalid return type")
	ErrPathTraversal     = errors.New("path escapes skill directory")
	ErrFileNotFound      = errors.New("file not found")
	ErrNotAFile          = errors.New("path is not a file")
)
