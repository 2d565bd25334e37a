// Package chart renders the distribution pie charts of an analysis run.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/huangsam/repometrics/schema"
	"golang.org/x/image/font/basicfont"
)

// Chart file names written under the output directory.
const (
	PopularityFileName = "distribuicao_popularidade.png"
	CBOQualityFileName = "niveis_qualidade_cbo.png"
)

// Canvas layout in pixels.
const (
	canvasWidth  = 900
	canvasHeight = 640
	pieRadius    = 220.0
	legendBox    = 14.0
)

// Pie is a renderable pie chart.
type Pie struct {
	Title    string
	Subtitle string
	Slices   []schema.BucketCount
	Colors   []string  // hex colors, one per slice
	Explode  []float64 // radial offset of each slice as a fraction of the radius
}

// PopularityPie builds the star distribution chart.
func PopularityPie(stars []float64) Pie {
	return Pie{
		Title:    "Repository Distribution by Popularity",
		Subtitle: "(Number of Stars)",
		Slices:   Bucketize(stars, schema.PopularityBuckets),
		Colors:   []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4"},
		Explode:  []float64{0.05, 0.03, 0.02, 0.1},
	}
}

// CBOQualityPie builds the coupling level chart.
func CBOQualityPie(cbo []float64) Pie {
	return Pie{
		Title:    "Quality Distribution by CBO",
		Subtitle: "(Coupling Between Objects)",
		Slices:   Bucketize(cbo, schema.CBOBuckets),
		Colors:   []string{"#2ECC71", "#F39C12", "#E74C3C", "#8E44AD"},
		Explode:  []float64{0.1, 0.05, 0.02, 0.02},
	}
}

// Bucketize counts the values falling in each right-closed bucket. Values
// outside every bucket, and NaN, are not counted.
func Bucketize(values []float64, buckets []schema.Bucket) []schema.BucketCount {
	counts := make([]schema.BucketCount, len(buckets))
	for i, b := range buckets {
		counts[i].Bucket = b
	}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if i := schema.FindBucket(buckets, v); i >= 0 {
			counts[i].Count++
		}
	}
	return counts
}

// Total returns the number of counted values.
func (p Pie) Total() int {
	total := 0
	for _, s := range p.Slices {
		total += s.Count
	}
	return total
}

func (p Pie) color(i int) string {
	if len(p.Colors) == 0 {
		return "#888888"
	}
	return p.Colors[i%len(p.Colors)]
}

func (p Pie) explode(i int) float64 {
	if i < len(p.Explode) {
		return p.Explode[i]
	}
	return 0
}

// Render draws the chart and encodes it as PNG to w. Slices are laid out
// clockwise from twelve o'clock in bucket order.
func (p Pie) Render(w io.Writer) error {
	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetHexColor("#222222")
	dc.DrawStringAnchored(p.Title, canvasWidth/2, 30, 0.5, 0.5)
	dc.DrawStringAnchored(p.Subtitle, canvasWidth/2, 48, 0.5, 0.5)

	cx, cy := 330.0, 350.0
	total := p.Total()
	if total == 0 {
		dc.DrawStringAnchored("No data", cx, cy, 0.5, 0.5)
	} else {
		start := -math.Pi / 2
		for i, s := range p.Slices {
			if s.Count == 0 {
				continue
			}
			frac := float64(s.Count) / float64(total)
			end := start + frac*2*math.Pi
			mid := (start + end) / 2
			offset := p.explode(i) * pieRadius
			ox, oy := cx+offset*math.Cos(mid), cy+offset*math.Sin(mid)

			dc.MoveTo(ox, oy)
			dc.DrawArc(ox, oy, pieRadius, start, end)
			dc.ClosePath()
			dc.SetHexColor(p.color(i))
			dc.Fill()

			dc.SetHexColor("#FFFFFF")
			label := fmt.Sprintf("%.1f%%", frac*100)
			dc.DrawStringAnchored(label, ox+0.6*pieRadius*math.Cos(mid), oy+0.6*pieRadius*math.Sin(mid), 0.5, 0.5)
			start = end
		}
	}

	// Legend lists every bucket, including empty ones
	lx, ly := 620.0, 250.0
	for i, s := range p.Slices {
		y := ly + float64(i)*28
		dc.SetHexColor(p.color(i))
		dc.DrawRectangle(lx, y, legendBox, legendBox)
		dc.Fill()
		dc.SetHexColor("#222222")
		dc.DrawStringAnchored(fmt.Sprintf("%s: %d", s.Label, s.Count), lx+legendBox+8, y+legendBox/2, 0, 0.5)
	}

	return dc.EncodePNG(w)
}

// WritePieCharts renders both distribution charts for table under dir and
// returns the written paths.
func WritePieCharts(dir string, table *schema.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	stars, err := table.Column(schema.ColStars)
	if err != nil {
		return nil, err
	}
	cbo, err := table.Column(schema.ColCBO)
	if err != nil {
		return nil, err
	}

	charts := []struct {
		name string
		pie  Pie
	}{
		{PopularityFileName, PopularityPie(stars)},
		{CBOQualityFileName, CBOQualityPie(cbo)},
	}
	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, c.name)
		if err := writePNG(path, c.pie); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, pie Pie) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pie.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}
