package skills

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ExtractFrontmatter parses the YAML block delimited by "---" lines at the very
// start of content. Keys beyond the ones a caller looks for are kept as-is.
func ExtractFrontmatter(content string) (map[string]any, error) {
	header, _, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	frontmatter := make(map[string]any)
	if err := yaml.Unmarshal([]byte(header), &frontmatter); err != nil {
		return nil, errors.Wrapf(ErrMalformedManifest, "invalid YAML in frontmatter: %v", err)
	}

	return frontmatter, nil
}

// splitFrontmatter returns the raw frontmatter and the body following the
// closing delimiter. A trailing carriage return on a delimiter line is ignored.
func splitFrontmatter(content string) (string, string, error) {
	first, rest, _ := strings.Cut(content, "\n")
	if strings.TrimSuffix(first, "\r") != frontmatterDelimiter {
		return "", "", errors.Wrap(ErrMalformedManifest, "no frontmatter found")
	}

	offset := 0
	for offset < len(rest) {
		line, next, found := strings.Cut(rest[offset:], "\n")
		if strings.TrimSuffix(line, "\r") == frontmatterDelimiter {
			return rest[:offset], next, nil
		}
		if !found {
			break
		}
		offset += len(line) + 1
	}

	return "", "", errors.Wrap(ErrMalformedManifest, "frontmatter is not closed")
}

// ParseManifest reads a SKILL.md file and builds a Skill rooted at the
// directory that contains it. Both name and description must be present as
// strings in the frontmatter.
func ParseManifest(path string) (*Skill, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}
	if !utf8.Valid(raw) {
		return nil, errors.Wrapf(ErrMalformedManifest, "%s is not valid UTF-8", path)
	}
	content := string(raw)

	frontmatter, err := ExtractFrontmatter(content)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}

	name, err := requiredString(frontmatter, "name", path)
	if err != nil {
		return nil, err
	}
	description, err := requiredString(frontmatter, "description", path)
	if err != nil {
		return nil, err
	}

	return &Skill{
		Name:         name,
		Description:  description,
		Directory:    filepath.Dir(path),
		manifestPath: path,
		content:      content,
	}, nil
}

func requiredString(frontmatter map[string]any, key, path string) (string, error) {
	value, ok := frontmatter[key]
	if !ok || value == nil {
		return "", errors.Wrapf(ErrMissingField, "missing '%s' field in %s", key, path)
	}
	s, ok := value.(string)
	if !ok {
		return "", errors.Wrapf(ErrMissingField, "'%s' field in %s must be a string", key, path)
	}
	return s, nil
}
