package ply

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Options configures a Decoder. It is copied into the decoder and never changes while a decode
// is running.
type Options struct {
	// Charset of the header text, any name known to the WHATWG encoding index.
	Charset string `json:"charset"`
	// DefaultMeshName labels decoded meshes that can be named.
	DefaultMeshName string `json:"default_mesh_name"`
	// DefaultFaceName prefixes the ordinal of decoded triangles that can be named.
	DefaultFaceName string `json:"default_face_name"`
	// FlipTextureV maps every decoded texture coordinate v to 1-v.
	FlipTextureV bool `json:"flip_texture_v"`
	// IncludeColors applies vertex color channels to points that accept a color.
	IncludeColors bool `json:"include_colors"`
	// IncludeNormals applies vertex normals to points that accept a normal.
	IncludeNormals bool `json:"include_normals"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Charset:         "utf-8",
		DefaultMeshName: "mesh",
		DefaultFaceName: "face",
		IncludeColors:   true,
		IncludeNormals:  true,
	}
}

// Validate ensures all parts of the options are valid.
func (o Options) Validate(path string) error {
	if _, err := o.encoding(); err != nil {
		return errors.Wrapf(err, "%s: invalid charset", path)
	}
	return nil
}

func (o Options) encoding() (encoding.Encoding, error) {
	if strings.TrimSpace(o.Charset) == "" {
		return unicode.UTF8, nil
	}
	return htmlindex.Get(o.Charset)
}

// OptionsFromAttributes decodes options from a loosely typed attribute map, such as one read
// from a JSON config. Keys use the json names of the Options fields and missing keys keep their
// DefaultOptions value. Unknown keys are an error.
func OptionsFromAttributes(attributes map[string]interface{}) (Options, error) {
	opts := DefaultOptions()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &opts,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Options{}, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return Options{}, err
	}
	if err := opts.Validate("options"); err != nil {
		return Options{}, err
	}
	return opts, nil
}
