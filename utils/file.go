package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ResolveFile returns the path of the given file relative to the root
// of the codebase. For example, if this file currently
// lives in utils/file.go and ./foo/bar/baz is given, then the result
// is foo/bar/baz. This is helpful when you don't want to relatively
// refer to files when you're not sure where the caller actually
// lives in relation to the target file.
func ResolveFile(fn string) string {
	//nolint:dogsled
	_, thisFilePath, _, _ := runtime.Caller(0)
	thisDirPath, err := filepath.Abs(filepath.Dir(thisFilePath))
	if err != nil {
		panic(err)
	}
	return filepath.Join(thisDirPath, "..", fn)
}

// RemoveFileNoError will remove the file at the given path if it exists. Any
// errors will be suppressed.
func RemoveFileNoError(path string) {
	utils.UncheckedErrorFunc(func() error {
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	})
}

// ResolveSibling returns name resolved against the directory holding source. Absolute names are
// returned cleaned. The second return is false when source is empty and nothing could be resolved.
func ResolveSibling(source, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	name = filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(name) {
		return filepath.Clean(name), true
	}
	if source == "" {
		return name, false
	}
	return filepath.Join(filepath.Dir(source), name), true
}

// TrimExtensions strips every extension in exts, in order, from the end of fn. Matching is
// case-insensitive. E.g. "bunny.ply.gz" with (".gz", ".ply") becomes "bunny".
func TrimExtensions(fn string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(fn), strings.ToLower(ext)) {
			fn = fn[:len(fn)-len(ext)]
		}
	}
	return fn
}

// ErrNotRegularFile is returned when a path expected to be a file is a directory or device.
var ErrNotRegularFile = errors.New("not a regular file")
