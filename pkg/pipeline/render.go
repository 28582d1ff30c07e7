package pipeline

import (
	"context"
	"fmt"
	"time"

	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/observability"
	"github.com/matzehuels/roadmap/pkg/render"
	"github.com/matzehuels/roadmap/pkg/render/nodelink"
)

// RenderFromLayout generates output artifacts in the requested formats.
// SVG is rendered at most once and reused for PNG and PDF conversion.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, l, opts)

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	g, err := l.DAG()
	if err != nil {
		return nil, fmt.Errorf("convert layout: %w", err)
	}
	nlOpts := nodelink.Options{
		Detailed:   opts.Detailed,
		NodeWidth:  l.NodeWidth,
		NodeHeight: l.NodeHeight,
	}

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, g, nlOpts)
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = svgOnce()
		case FormatDOT:
			data = []byte(nodelink.ToDOT(g, nlOpts))
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, DefaultPNGScale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
