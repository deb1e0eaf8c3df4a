package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// Figure is a set of axes stacked vertically on one canvas.
type Figure struct {
	axes   []*plot.Plot
	Width  vg.Length
	Height vg.Length
}

func newFigure(width, height vg.Length, axes ...*plot.Plot) *Figure {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Figure{axes: axes, Width: width, Height: height}
}

// Axes returns every axis of the figure, top to bottom.
func (f *Figure) Axes() []*plot.Plot {
	return append([]*plot.Plot(nil), f.axes...)
}

// Last returns the bottom axis.
func (f *Figure) Last() *plot.Plot {
	if len(f.axes) == 0 {
		return nil
	}
	return f.axes[len(f.axes)-1]
}

// AspectRatio is height over width.
func (f *Figure) AspectRatio() float64 {
	return float64(f.Height) / float64(f.Width)
}

// WriteTo renders the figure in the given format (png, jpg, pdf, svg, tif, eps).
func (f *Figure) WriteTo(w io.Writer, format string) (int64, error) {
	if len(f.axes) == 0 {
		return 0, fmt.Errorf("figure has no axes")
	}
	c, err := draw.NewFormattedCanvas(f.Width, f.Height, format)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s canvas: %w", format, err)
	}
	dc := draw.New(c)

	if len(f.axes) == 1 {
		f.axes[0].Draw(dc)
	} else {
		grid := make([][]*plot.Plot, len(f.axes))
		for i, p := range f.axes {
			grid[i] = []*plot.Plot{p}
		}
		tiles := draw.Tiles{
			Rows:      len(f.axes),
			Cols:      1,
			PadTop:    vg.Points(4),
			PadBottom: vg.Points(4),
			PadLeft:   vg.Points(4),
			PadRight:  vg.Points(4),
			PadY:      vg.Points(10),
		}
		canvases := plot.Align(grid, tiles, dc)
		for i, p := range f.axes {
			p.Draw(canvases[i][0])
		}
	}
	return c.WriteTo(w)
}

// PNG renders the figure to PNG bytes.
func (f *Figure) PNG() ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := f.WriteTo(buf, "png"); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// Save renders the figure to path; the extension picks the format and a
// missing extension means png.
func (f *Figure) Save(path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
		path += ".png"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.WriteTo(file, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
