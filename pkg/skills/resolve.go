package skills

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// maxSymlinks bounds symlink expansion while canonicalizing a path
const maxSymlinks = 255

// canonicalPath makes path absolute and resolves it one component at a time:
// a symlink is expanded before any ".." that follows it is applied, so
// "link/.." names the parent of the link target, not the directory holding
// the link. Once a component does not exist the remainder is joined
// lexically, so missing paths still get a comparable form.
func canonicalPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve %s", path)
		}
		path = wd + string(filepath.Separator) + path
	}

	volume := filepath.VolumeName(path)
	resolved := volume + string(filepath.Separator)
	pending := splitPath(path[len(volume):])
	links := 0

	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := os.Lstat(next)
		if err != nil {
			if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
				return filepath.Join(append([]string{next}, pending...)...), nil
			}
			return "", errors.Wrapf(err, "failed to resolve %s", path)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			resolved = next
			continue
		}

		links++
		if links > maxSymlinks {
			return "", errors.Errorf("failed to resolve %s: too many levels of symbolic links", path)
		}
		target, err := os.Readlink(next)
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve %s", path)
		}
		if filepath.IsAbs(target) {
			targetVolume := filepath.VolumeName(target)
			resolved = targetVolume + string(filepath.Separator)
			target = target[len(targetVolume):]
		}
		pending = append(splitPath(target), pending...)
	}

	return resolved, nil
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
}

// isWithin reports whether path equals root or is nested below it. Both
// arguments must already be canonical.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// resolveWithin resolves relativePath against dir and returns the canonical
// path of an existing regular file inside dir. Absolute input is taken as-is
// and therefore only passes when it already points inside dir.
func resolveWithin(dir, relativePath string) (string, error) {
	root, err := canonicalPath(dir)
	if err != nil {
		return "", err
	}

	// joined without filepath.Join, which would drop ".." before symlinks
	// are resolved
	candidate := relativePath
	if !filepath.IsAbs(candidate) {
		candidate = dir + string(filepath.Separator) + relativePath
	}
	resolved, err := canonicalPath(candidate)
	if err != nil {
		return "", err
	}
	if !isWithin(root, resolved) {
		return "", errors.Wrapf(ErrPathTraversal, "invalid path %q: attempting to access files outside skill directory", relativePath)
	}

	// Missing components were joined lexically; insist on a full resolution
	// before touching the file.
	final, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return "", errors.Wrapf(ErrFileNotFound, "file not found: %s", relativePath)
		}
		return "", errors.Wrapf(err, "failed to resolve %s", relativePath)
	}
	if !isWithin(root, final) {
		return "", errors.Wrapf(ErrPathTraversal, "invalid path %q: attempting to access files outside skill directory", relativePath)
	}

	info, err := os.Stat(final)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrFileNotFound, "file not found: %s", relativePath)
		}
		return "", errors.Wrapf(err, "failed to stat %s", relativePath)
	}
	if !info.Mode().IsRegular() {
		return "", errors.Wrapf(ErrNotAFile, "path is not a file: %s", relativePath)
	}

	return final, nil
}
