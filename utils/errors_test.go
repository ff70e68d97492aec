package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestInterfaceErrors(t *testing.T) {
	err := NewUnimplementedInterfaceError("ply.TextureHolder", 5)
	test.That(t, err.Error(), test.ShouldEqual, "expected implementation of ply.TextureHolder but got int")
}
