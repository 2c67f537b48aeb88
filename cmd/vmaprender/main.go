// Command vmaprender renders a projection layout to a PNG file.
//
// Usage:
//
//	vmaprender -layout show.xml -out frame.png -mode render
//
// With -canvas record the frame is recorded instead and a summary of the
// draw commands is printed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/vmap"
	_ "github.com/gogpu/vmap/canvas"
	"github.com/gogpu/vmap/recording"
)

type options struct {
	layout     string
	output     string
	width      int
	height     int
	mode       string
	images     string
	background string
	canvas     string
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("vmaprender: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := flag.NewFlagSet("vmaprender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.layout, "layout", "layout.xml", "layout file (.xml, .json, optionally .zst)")
	fs.StringVar(&o.output, "out", "frame.png", "output PNG file")
	fs.IntVar(&o.width, "width", 1280, "frame width")
	fs.IntVar(&o.height, "height", 800, "frame height")
	fs.StringVar(&o.mode, "mode", "render", "calibrate or render")
	fs.StringVar(&o.images, "images", "", "texture directory (default: layout directory)")
	fs.StringVar(&o.background, "background", "", "calibration background image")
	fs.StringVar(&o.canvas, "canvas", "raster", fmt.Sprintf("canvas backend %v", recording.Canvases()))
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	vmap.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	mode, ok := vmap.ParseMode(o.mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", o.mode)
	}
	dir := filepath.Dir(o.layout)
	if o.images == "" {
		o.images = dir
	}

	opts := []vmap.MapperOption{
		vmap.WithLayoutDir(dir),
		vmap.WithImageLoader(vmap.NewFileImageLoader(o.images)),
	}
	if o.background != "" {
		opts = append(opts, vmap.WithBackground(o.background))
	}
	m := vmap.NewMapper(o.width, o.height, opts...)
	res, err := m.Load(filepath.Base(o.layout))
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		fmt.Fprintf(stderr, "skipped %d malformed surfaces\n", res.Skipped)
	}
	m.SetMode(mode)

	c, err := recording.NewCanvas(o.canvas, o.width, o.height)
	if err != nil {
		return err
	}
	if closer, ok := c.(io.Closer); ok {
		defer closer.Close()
	}
	if err := m.Render(c); err != nil {
		return err
	}

	switch c := c.(type) {
	case interface{ SavePNG(string) error }:
		if err := c.SavePNG(o.output); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rendered %d surfaces to %s (%dx%d)\n", res.Loaded, o.output, o.width, o.height)
	case *recording.Recorder:
		rec := c.Last()
		if rec == nil {
			return errors.New("no frame recorded")
		}
		fmt.Fprintf(stdout, "recorded %d commands for %d surfaces\n", len(rec.Commands()), res.Loaded)
		for t := recording.CmdBeginFrame; t <= recording.CmdDrawText; t++ {
			if n := rec.Count(t); n > 0 {
				fmt.Fprintf(stdout, "  %-16s %d\n", t, n)
			}
		}
	default:
		return fmt.Errorf("canvas %q cannot write images", o.canvas)
	}
	return nil
}
