package skills

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillmcp/pkg/logger"
	"github.com/pkg/errors"
)

// Registry resolves skills below a root directory. It keeps no index: every
// call walks the filesystem again, so skills added or removed between calls
// are picked up immediately. A Registry is safe for concurrent use.
type Registry struct {
	root         string
	manifestName string
}

// Option is a function that configures a Registry
type Option func(*Registry) error

// WithManifestName overrides the file name that marks a skill directory
func WithManifestName(name string) Option {
	return func(r *Registry) error {
		if name == "" || name != filepath.Base(name) {
			return errors.Errorf("invalid manifest name %q", name)
		}
		r.manifestName = name
		return nil
	}
}

// NewRegistry creates a registry rooted at root. The root must exist and be a
// directory; it is stored with symlinks resolved and not re-validated on later
// calls.
func NewRegistry(root string, opts ...Option) (*Registry, error) {
	if root == "" {
		return nil, errors.Wrap(ErrInvalidRoot, "skills directory cannot be empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoot, "failed to resolve skills directory %s: %v", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoot, "skills directory does not exist: %s", absRoot)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrInvalidRoot, "skills directory is not a directory: %s", absRoot)
	}

	// WalkDir does not descend into a symlinked root
	canonicalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoot, "failed to resolve skills directory %s: %v", absRoot, err)
	}

	r := &Registry{
		root:         canonicalRoot,
		manifestName: DefaultManifestName,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Root returns the canonical skills directory
func (r *Registry) Root() string {
	return r.root
}

// Discover walks the skills directory and returns every skill with a valid
// manifest, in walk order. Manifests that fail to parse are logged and skipped.
func (r *Registry) Discover(ctx context.Context) []*Skill {
	skills, _ := r.DiscoverWithErrors(ctx)
	return skills
}

// DiscoverWithErrors behaves like Discover and additionally returns every
// skipped manifest and unreadable directory as a multierror. The skills slice
// is valid even when the error is not nil.
func (r *Registry) DiscoverWithErrors(ctx context.Context) ([]*Skill, error) {
	log := logger.G(ctx).WithField("skills_dir", r.root)

	var (
		skills []*Skill
		result *multierror.Error
	)
	_ = filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("failed to walk skills directory")
			result = multierror.Append(result, errors.Wrapf(err, "failed to walk %s", path))
			return nil
		}
		if d.IsDir() || d.Name() != r.manifestName {
			return nil
		}

		skill, err := ParseManifest(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping invalid skill manifest")
			result = multierror.Append(result, err)
			return nil
		}
		skills = append(skills, skill)
		return nil
	})

	log.WithField("count", len(skills)).Debug("discovered skills")
	return skills, result.ErrorOrNil()
}

// FindByName returns the first discovered skill whose name matches exactly.
// When several manifests declare the same name the winner depends on walk
// order.
func (r *Registry) FindByName(ctx context.Context, name string) (*Skill, error) {
	for _, skill := range r.Discover(ctx) {
		if skill.Name == name {
			return skill, nil
		}
	}
	return nil, errors.Wrapf(ErrSkillNotFound, "skill '%s' not found", name)
}

// GetSkillContent reads the manifest of the named skill from disk
func (r *Registry) GetSkillContent(ctx context.Context, name string, rt ReturnType) (*Document, error) {
	if err := rt.validate(); err != nil {
		return nil, err
	}

	skill, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(skill.Directory, r.manifestName)
	var content string
	if rt != ReturnFilePath {
		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(ErrFileNotFound, "file not found: %s", manifestPath)
			}
			return nil, errors.Wrapf(err, "failed to read %s", manifestPath)
		}
		content = string(raw)
	}

	return newDocument(rt, content, manifestPath), nil
}

// ListFiles returns every regular file below the named skill's directory,
// sorted. Relative paths use forward slashes. Symlinks are listed when they
// point at a regular file.
func (r *Registry) ListFiles(ctx context.Context, name string, relative bool) ([]string, error) {
	skill, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	var files []string
	log := logger.G(ctx).WithField("skill", name)
	err = filepath.WalkDir(skill.Directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping unreadable path in skill directory")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		}

		if !relative {
			files = append(files, path)
			return nil
		}
		rel, err := filepath.Rel(skill.Directory, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list files of skill '%s'", name)
	}

	sort.Strings(files)
	log.WithField("count", len(files)).Debug("listed skill files")
	return files, nil
}

// GetFile reads a file inside the named skill's directory. relativePath may
// not resolve outside the directory, whether through "..", an absolute path or
// a symlink.
func (r *Registry) GetFile(ctx context.Context, name, relativePath string, rt ReturnType) (*Document, error) {
	if err := rt.validate(); err != nil {
		return nil, err
	}

	skill, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	path, err := resolveWithin(skill.Directory, relativePath)
	if err != nil {
		if errors.Is(err, ErrPathTraversal) {
			logger.G(ctx).WithField("skill", name).WithField("path", relativePath).Warn("rejected path outside skill directory")
		}
		return nil, err
	}

	var content string
	if rt != ReturnFilePath {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", relativePath)
		}
		content = string(raw)
	}

	return newDocument(rt, content, path), nil
}

// FilterFiles keeps the files matching a doublestar pattern such as
// "scripts/**/*.py". An empty pattern keeps everything.
func FilterFiles(files []string, pattern string) ([]string, error) {
	if pattern == "" {
		return files, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid file pattern %q", pattern)
	}

	filtered := make([]string, 0, len(files))
	for _, file := range files {
		if ok, _ := doublestar.Match(pattern, file); ok {
			filtered = append(filtered, file)
		}
	}
	return filtered, nil
}
