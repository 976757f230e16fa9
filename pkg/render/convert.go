package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// RSVGConvert is the librsvg command used for raster and PDF output.
var RSVGConvert = "rsvg-convert"

// ErrNoConverter is returned when RSVGConvert is not on PATH.
var ErrNoConverter = errors.New("pdf and png output need rsvg-convert (librsvg2-bin on Debian, librsvg on Homebrew)")

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG document to PNG. scale <= 0 means 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(RSVGConvert)
	if err != nil {
		return nil, ErrNoConverter
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s to %s: %w: %s", RSVGConvert, format, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
