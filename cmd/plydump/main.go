// Package main is plydump, which prints the header and a geometry summary of PLY files.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/ply/logging"
	"go.viam.com/ply/ply"
	"go.viam.com/ply/pointcloud"
	"go.viam.com/ply/utils"
)

const (
	flagHeaderOnly    = "header-only"
	flagCharset       = "charset"
	flagFlipV         = "flip-v"
	flagNoColors      = "no-colors"
	flagNoNormals     = "no-normals"
	flagMeshName      = "mesh-name"
	flagProgress      = "progress"
	flagProgressEvery = "progress-every"
	flagLogLevel      = "log-level"
	flagPCD           = "pcd"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	defaults := ply.DefaultOptions()
	return &cli.App{
		Name:      "plydump",
		Usage:     "print the header and decoded geometry of PLY files",
		UsageText: "plydump [options] <file.ply|file.ply.gz|archive.zip>...",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagHeaderOnly,
				Usage: "only parse and print the header",
			},
			&cli.StringFlag{
				Name:  flagCharset,
				Value: defaults.Charset,
				Usage: "charset of header text",
			},
			&cli.BoolFlag{
				Name:  flagFlipV,
				Usage: "map texture coordinate v to 1-v",
			},
			&cli.BoolFlag{
				Name:  flagNoColors,
				Usage: "ignore vertex colors",
			},
			&cli.BoolFlag{
				Name:  flagNoNormals,
				Usage: "ignore vertex normals",
			},
			&cli.StringFlag{
				Name:  flagMeshName,
				Value: defaults.DefaultMeshName,
				Usage: "name given to decoded meshes",
			},
			&cli.BoolFlag{
				Name:  flagProgress,
				Usage: "show a progress spinner while decoding",
			},
			&cli.IntFlag{
				Name:  flagProgressEvery,
				Value: 10000,
				Usage: "records between progress updates",
			},
			&cli.StringFlag{
				Name:  flagPCD,
				Usage: "also write decoded points beside each input as a PCD file with `ENCODING` ascii or binary",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "log `LEVEL`: debug, info, warn or error",
			},
		},
		Action: dumpAction,
	}
}

func optionsFromFlags(c *cli.Context) (ply.Options, error) {
	return ply.OptionsFromAttributes(map[string]interface{}{
		"charset":           c.String(flagCharset),
		"default_mesh_name": c.String(flagMeshName),
		"flip_texture_v":    c.Bool(flagFlipV),
		"include_colors":    !c.Bool(flagNoColors),
		"include_normals":   !c.Bool(flagNoNormals),
	})
}

func dumpAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no files given")
	}
	level, err := logging.LevelFromString(c.String(flagLogLevel))
	if err != nil {
		return err
	}
	logger := logging.NewLogger("plydump")
	logger.SetLevel(level)

	opts, err := optionsFromFlags(c)
	if err != nil {
		return err
	}
	if enc := c.String(flagPCD); enc != "" {
		if _, err := pointcloud.PCDTypeFromString(enc); err != nil {
			return err
		}
	}
	decoder, err := ply.NewDecoder(nil, opts, logger)
	if err != nil {
		return err
	}

	var errs error
	for _, path := range c.Args().Slice() {
		if err := dumpFile(c, decoder, path); err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, path))
		}
	}
	return multierr.Combine(errs, logger.Sync())
}

func dumpFile(c *cli.Context, decoder *ply.Decoder, path string) error {
	w := c.App.Writer
	if c.Bool(flagHeaderOnly) {
		fd, err := decoder.ReadFileHeader(path)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, headerTable(fd))
		return err
	}

	var progress *progressListener
	if c.Bool(flagProgress) {
		progress = newProgressListener(path, c.Int(flagProgressEvery), defaultSpinnerFactory)
		decoder.AddListener(progress)
		defer decoder.RemoveListener(progress)
	}
	res, err := decoder.ReadFile(path)
	if err != nil {
		if progress != nil {
			progress.fail(err)
		}
		return err
	}
	if _, err := fmt.Fprintln(w, headerTable(res.Header)); err != nil {
		return err
	}
	if err := writeSummary(w, res); err != nil {
		return err
	}
	if enc := c.String(flagPCD); enc != "" {
		out, err := exportPCD(res, path, enc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "wrote %s\n", out)
		return err
	}
	return nil
}

// exportPCD writes the decoded points of path to a sibling .pcd file and returns its name. A
// partially written file is removed.
func exportPCD(res *ply.Result, path, encoding string) (out string, err error) {
	if res.Points == nil {
		return "", errors.New("no points to export")
	}
	pcdType, err := pointcloud.PCDTypeFromString(encoding)
	if err != nil {
		return "", err
	}
	name := utils.TrimExtensions(path, ".gz", ".zip", ".ply") + ".pcd"
	//nolint:gosec
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer func() {
		if err = multierr.Combine(err, f.Close()); err != nil {
			utils.RemoveFileNoError(name)
			out = ""
		}
	}()
	w := bufio.NewWriter(f)
	if err := pointcloud.ToPCD(res.Points, w, pcdType); err != nil {
		return "", errors.Wrapf(err, "cannot write %s", name)
	}
	if err := w.Flush(); err != nil {
		return "", errors.Wrapf(err, "cannot write %s", name)
	}
	return name, nil
}
