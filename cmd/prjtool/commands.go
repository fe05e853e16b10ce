package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/bcn"
	"github.com/woozymasta/prj"
)

// marshalProject renders p in the configured JSON layout.
func (a *app) marshalProject(p *prj.Project) ([]byte, error) {
	if a.cfg.Format == formatCompact {
		return json.Marshal(p)
	}

	return json.MarshalIndent(p, "", "  ")
}

func (a *app) dump(args []string) error {
	fs := a.newFlagSet("dump", "<file.PRJ>")
	out := fs.String("o", "", "output file (default stdout)")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}

	p, err := prj.Read(fs.Arg(0))
	if err != nil {
		return err
	}
	data, err := a.marshalProject(p)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if *out == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}

	log.Info().Str("project", fs.Arg(0)).Str("json", *out).Int("instances", len(p.Instances)).Msg("dumped")
	return nil
}

func (a *app) build(args []string) error {
	fs := a.newFlagSet("build", "<in.json>")
	out := fs.String("o", "", "output .PRJ file (required)")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	if *out == "" {
		fs.Usage()
		return fmt.Errorf("%w: build requires -o", errUsage)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	var p prj.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse %s: %w", fs.Arg(0), err)
	}
	if err := prj.Write(*out, &p); err != nil {
		return err
	}

	log.Info().Str("json", fs.Arg(0)).Str("project", *out).Msg("built")
	return nil
}

func (a *app) restore(args []string) error {
	fs := a.newFlagSet("restore", "<backup>")
	out := fs.String("o", "", "output .PRJ file (required)")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	if *out == "" {
		fs.Usage()
		return fmt.Errorf("%w: restore requires -o", errUsage)
	}

	data, err := readBackup(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}

	log.Info().Str("backup", fs.Arg(0)).Str("project", *out).Int("bytes", len(data)).Msg("restored")
	return nil
}

func (a *app) heightmap(args []string) error {
	fs := a.newFlagSet("heightmap", "<file.PRJ>")
	which := fs.Int("map", prj.Heightmap1, "heightmap: 1 or 2")
	out := fs.String("o", "", "output image, .png or .dds (required)")
	format := fs.String("format", "bc4", "DDS pixel format: bc4 or rgba8")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}

	var write func(w io.Writer, t *prj.Terrain) error
	switch strings.ToLower(filepath.Ext(*out)) {
	case ".png":
		write = func(w io.Writer, t *prj.Terrain) error {
			return prj.WriteHeightmapPNG(w, t, *which)
		}
	case ".dds":
		var f bcn.Format
		switch *format {
		case "bc4":
			f = bcn.FormatBC4
		case "rgba8":
			f = bcn.FormatRGBA8
		default:
			return fmt.Errorf("%w: unknown DDS format %q", errUsage, *format)
		}
		write = func(w io.Writer, t *prj.Terrain) error {
			return prj.WriteHeightmapDDS(w, t, *which, f)
		}
	default:
		fs.Usage()
		return fmt.Errorf("%w: -o must end in .png or .dds", errUsage)
	}

	p, err := prj.Read(fs.Arg(0))
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := write(f, &p.Terrain); err != nil {
		_ = f.Close()
		_ = os.Remove(*out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Info().Str("project", fs.Arg(0)).Int("map", *which).Str("image", *out).
		Uint32("width", p.Terrain.Width).Uint32("height", p.Terrain.Height).Msg("exported heightmap")
	return nil
}

func (a *app) height(args []string) error {
	fs := a.newFlagSet("height", "<file.PRJ>")
	which := fs.Int("map", prj.Heightmap1, "heightmap: 1 or 2")
	x := fs.Int("x", 0, "world x")
	y := fs.Int("y", 0, "world y")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}

	p, err := prj.Read(fs.Arg(0))
	if err != nil {
		return err
	}
	h, err := p.Terrain.Height(*which, int32(*x), int32(*y)) //nolint:gosec // world coordinates fit in int32
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.stdout, "%g\n", h)
	return err
}
