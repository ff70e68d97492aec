// Package ply decodes Stanford Polygon File Format files into point clouds and indexed meshes.
//
// A file is a text header declaring elements and their properties followed by ascii or binary
// (little or big endian) records. The header is parsed once and both data decoders resume from
// where it ended. Geometry is built through a Factory so that callers choose the concrete point,
// face and mesh types; optional capabilities such as color or normals are applied only when
// those types implement them.
package ply

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/text/encoding"

	"go.viam.com/ply/logging"
	"go.viam.com/ply/utils"
)

// headerLookahead is the read buffer size, large enough to hold a typical header.
const headerLookahead = 64 * 1024

// A Decoder decodes PLY data with fixed options and a fixed factory. Listeners may be added or
// removed at any time; a decode delivers to the listeners registered when it started.
// A Decoder is safe for concurrent use.
type Decoder struct {
	opts    Options
	enc     encoding.Encoding
	factory Factory
	logger  logging.Logger

	mu        sync.RWMutex
	listeners dispatcher
}

// NewDecoder returns a decoder building geometry with factory. A nil factory uses
// DefaultFactory and a nil logger uses the global logger.
func NewDecoder(factory Factory, opts Options, logger logging.Logger) (*Decoder, error) {
	if err := opts.Validate("options"); err != nil {
		return nil, err
	}
	enc, err := opts.encoding()
	if err != nil {
		return nil, err
	}
	if factory == nil {
		factory = DefaultFactory()
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Decoder{
		opts:    opts,
		enc:     enc,
		factory: factory,
		logger:  logger.Sublogger("ply"),
	}, nil
}

// Options returns the options the decoder was built with.
func (d *Decoder) Options() Options {
	return d.opts
}

// AddListener registers l. Registering a listener that is already registered does nothing.
func (d *Decoder) AddListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners.add(l)
}

// RemoveListener unregisters l and reports whether it was registered.
func (d *Decoder) RemoveListener(l Listener) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listeners.remove(l)
}

// Decode decodes a whole PLY stream. r is read to the end of the last element and never closed.
func (d *Decoder) Decode(r io.Reader) (*Result, error) {
	return d.DecodeSource(r, "")
}

// DecodeSource is Decode for a stream read from the file at source, which is used to resolve
// texture paths and is reported to listeners.
func (d *Decoder) DecodeSource(r io.Reader, source string) (*Result, error) {
	d.mu.RLock()
	events := d.listeners.snapshot()
	d.mu.RUnlock()

	notify := func(n Notification) error {
		n.Source = source
		return events.notify(n)
	}

	if err := notify(Notification{Event: EventReadStarted}); err != nil {
		return nil, err
	}
	if err := notify(Notification{Event: EventHeaderStarted}); err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(r, headerLookahead)
	hdr, err := parseHeader(br, d.enc.NewDecoder(), source, d.logger, func(e *ElementDescriptor) error {
		return notify(Notification{Event: EventElementDiscovered, Element: e})
	})
	if err != nil {
		return nil, err
	}
	d.logger.Debugw("parsed header",
		"source", source,
		"format", hdr.Format.String(),
		"elements", len(hdr.Elements),
		"classification", hdr.Classification.String(),
		"lines", hdr.HeaderLineCount,
	)
	if err := notify(Notification{Event: EventHeaderFinished, Header: hdr.FileDescriptor}); err != nil {
		return nil, err
	}

	asm := newAssembler(d.opts, d.factory, d.logger, events, source, hdr)
	if err := asm.begin(); err != nil {
		return nil, err
	}
	if err := notify(Notification{Event: EventDataStarted, Header: hdr.FileDescriptor}); err != nil {
		return nil, err
	}

	if hdr.Format.IsBinary() {
		err = newBinaryDecoder(br, hdr, asm).decode()
	} else {
		lr := &lineReader{r: br, decoder: d.enc.NewDecoder(), logger: d.logger, line: hdr.HeaderLineCount}
		err = (&asciiDecoder{lr: lr, hdr: hdr, asm: asm}).decode()
	}
	if err != nil {
		return nil, err
	}
	if err := notify(Notification{Event: EventDataFinished, Header: hdr.FileDescriptor}); err != nil {
		return nil, err
	}

	res, err := asm.finish()
	if err != nil {
		return nil, err
	}
	if err := notify(Notification{Event: EventReadFinished, Header: hdr.FileDescriptor, Result: res}); err != nil {
		return nil, err
	}
	return res, nil
}

// ReadHeader parses only the header of r. No listener is notified.
func (d *Decoder) ReadHeader(r io.Reader) (*FileDescriptor, error) {
	hdr, err := parseHeader(bufio.NewReaderSize(r, headerLookahead), d.enc.NewDecoder(), "", d.logger, nil)
	if err != nil {
		return nil, err
	}
	return hdr.FileDescriptor, nil
}

// ReadFile decodes the file at path. Files ending in .gz are gunzipped and .zip archives are
// searched for their first .ply entry. Textures resolve relative to the file's directory.
func (d *Decoder) ReadFile(path string) (*Result, error) {
	res, err := d.readFile(path)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Decoder) readFile(path string) (res *Result, err error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(src))
	return d.DecodeSource(src.r, src.name)
}

// ReadFileHeader parses only the header of the file at path, unwrapping .gz and .zip inputs
// the way ReadFile does. No listener is notified.
func (d *Decoder) ReadFileHeader(path string) (*FileDescriptor, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}
	// the rest of the stream is never read, so close failures say nothing about the header.
	defer goutils.UncheckedErrorFunc(src.Close)
	hdr, err := parseHeader(bufio.NewReaderSize(src.r, headerLookahead), d.enc.NewDecoder(), src.name, d.logger, nil)
	if err != nil {
		return nil, err
	}
	return hdr.FileDescriptor, nil
}

// inputFile is an opened file with any gzip or zip layer unwrapped. name is the path textures
// resolve against.
type inputFile struct {
	r       io.Reader
	name    string
	closers []io.Closer
}

func openSource(path string) (*inputFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Wrap(utils.ErrNotRegularFile, path)
	}
	src := &inputFile{name: path}
	if err := src.open(path); err != nil {
		return nil, multierr.Combine(err, src.Close())
	}
	return src, nil
}

func (f *inputFile) open(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return f.openZip(path)
	}
	//nolint:gosec
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	f.closers = append(f.closers, file)
	f.r = file
	if !strings.EqualFold(filepath.Ext(path), ".gz") {
		return nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		return errors.Wrapf(err, "cannot read gzip stream %s", path)
	}
	f.closers = append(f.closers, gz)
	f.r = gz
	f.name = utils.TrimExtensions(path, ".gz")
	return nil
}

// openZip opens the first .ply entry of an archive. Textures resolve against the archive's
// directory joined with the entry's path.
func (f *inputFile) openZip(path string) error {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open archive %s", path)
	}
	f.closers = append(f.closers, archive)

	entry, ok := lo.Find(archive.File, func(zf *zip.File) bool {
		return !zf.FileInfo().IsDir() && strings.EqualFold(filepath.Ext(zf.Name), ".ply")
	})
	if !ok {
		return errors.Errorf("archive %s holds no .ply file", path)
	}
	rc, err := entry.Open()
	if err != nil {
		return errors.Wrapf(err, "cannot open %s in %s", entry.Name, path)
	}
	f.closers = append(f.closers, rc)
	f.r = rc
	f.name = filepath.Join(filepath.Dir(path), filepath.FromSlash(entry.Name))
	return nil
}

// Close closes every opened layer, innermost first.
func (f *inputFile) Close() error {
	var err error
	for i := len(f.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, f.closers[i].Close())
	}
	return err
}

// ReadFile decodes the file at path with DefaultOptions and DefaultFactory.
func ReadFile(path string, logger logging.Logger) (*Result, error) {
	d, err := NewDecoder(nil, DefaultOptions(), logger)
	if err != nil {
		return nil, err
	}
	return d.ReadFile(path)
}

// ReadHeader parses only the header of r with DefaultOptions.
func ReadHeader(r io.Reader) (*FileDescriptor, error) {
	d, err := NewDecoder(nil, DefaultOptions(), logging.NewBlankLogger("ply"))
	if err != nil {
		return nil, err
	}
	return d.ReadHeader(r)
}
