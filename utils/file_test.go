package utils

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestResolveFile(t *testing.T) {
	sentinel := "utils/file.go"
	_, err := os.Stat(ResolveFile(sentinel))
	test.That(t, err, test.ShouldBeNil)
}

func TestResolveSibling(t *testing.T) {
	dir := filepath.Join("models", "chairs")
	source := filepath.Join(dir, "chair.ply")

	resolved, ok := ResolveSibling(source, "wood.png")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, resolved, test.ShouldEqual, filepath.Join(dir, "wood.png"))

	resolved, ok = ResolveSibling(source, `textures\wood.png`)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, resolved, test.ShouldEqual, filepath.Join(dir, "textures", "wood.png"))

	resolved, ok = ResolveSibling("", "wood.png")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, resolved, test.ShouldEqual, "wood.png")

	abs, err := filepath.Abs("wood.png")
	test.That(t, err, test.ShouldBeNil)
	resolved, ok = ResolveSibling("", abs)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, resolved, test.ShouldEqual, abs)

	_, ok = ResolveSibling(source, "")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestTrimExtensions(t *testing.T) {
	test.That(t, TrimExtensions("bunny.ply.gz", ".gz", ".ply"), test.ShouldEqual, "bunny")
	test.That(t, TrimExtensions("BUNNY.PLY", ".gz", ".ply"), test.ShouldEqual, "BUNNY")
	test.That(t, TrimExtensions("bunny", ".gz", ".ply"), test.ShouldEqual, "bunny")
}

func TestRemoveFileNoError(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "scratch.ply")
	test.That(t, os.WriteFile(fn, []byte("ply\n"), 0o600), test.ShouldBeNil)
	RemoveFileNoError(fn)
	_, err := os.Stat(fn)
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
	RemoveFileNoError(fn)
}
