package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// converter is the librsvg command line tool used for raster and PDF output.
const converter = "rsvg-convert"

// ErrConverterMissing is returned by ToPNG and ToPDF when rsvg-convert is
// not installed.
var ErrConverterMissing = errors.New(converter + " not found on PATH (install librsvg: brew install librsvg, apt install librsvg2-bin)")

// Available reports whether PNG and PDF output can be produced.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// ToPDF converts a roadmap SVG into a single-page PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG rasterizes a roadmap SVG. scale multiplies the SVG's own size;
// values <= 0 mean 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(converter)
	if err != nil {
		return nil, fmt.Errorf("%s output: %w", format, ErrConverterMissing)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", converter, format, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}
