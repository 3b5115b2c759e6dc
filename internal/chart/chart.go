// Package chart renders stumpage price series as standalone SVG documents.
package chart

import (
	"fmt"
	"math"
	"strings"

	"timberprices.msstate.edu/internal/stumpage"
)

const (
	DefaultTitle  = "Mississippi Timber Prices Over Time"
	DefaultYLabel = "Price ($/ton)"
	DefaultXLabel = "Time"
	EmptyMessage  = "No data available for the selected filters."
)

// Config holds rendering parameters for SVG charts.
type Config struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int // room for rotated x labels and the legend
	MarginLeft   int
	BgColor      string
	GridColor    string
	TextColor    string
	FontSize     int
	Title        string
	XLabel       string
	YLabel       string
}

func DefaultConfig() Config {
	return Config{
		Width:        900,
		Height:       480,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 130,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
		Title:        DefaultTitle,
		XLabel:       DefaultXLabel,
		YLabel:       DefaultYLabel,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c Config) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// Palette is the series color cycle, in Type order.
var Palette = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3", "#ff6692", "#b6e880"}

// Series is one line of the chart. Values are indexed by category; NaN marks
// a category with no price. Present[i] reports whether the type has a record
// for category i at all: a line is broken at a record with a missing price
// but runs straight past categories the type has no record for.
type Series struct {
	Name    string
	Values  []float64
	Present []bool
	Color   string
}

// BuildSeries groups result into one series per Type, in order of first
// appearance, over the distinct Time labels of the result. When a Type has
// more than one record for a Time, the last one wins.
func BuildSeries(result stumpage.Result, metric stumpage.Metric) (categories []string, series []Series) {
	categoryIndex := make(map[string]int)
	seriesIndex := make(map[string]int)

	for _, r := range result.Records {
		label := r.Time()
		if _, ok := categoryIndex[label]; !ok {
			categoryIndex[label] = len(categories)
			categories = append(categories, label)
		}
		if _, ok := seriesIndex[r.Type]; !ok {
			seriesIndex[r.Type] = len(series)
			series = append(series, Series{
				Name:  r.Type,
				Color: Palette[len(series)%len(Palette)],
			})
		}
	}

	for i := range series {
		series[i].Values = make([]float64, len(categories))
		series[i].Present = make([]bool, len(categories))
		for j := range series[i].Values {
			series[i].Values[j] = math.NaN()
		}
	}

	for _, r := range result.Records {
		s, i := seriesIndex[r.Type], categoryIndex[r.Time()]
		series[s].Present[i] = true
		if p := r.Price(metric); p.Valid {
			series[s].Values[i] = p.Decimal.InexactFloat64()
		} else {
			series[s].Values[i] = math.NaN()
		}
	}

	return categories, series
}

// LineChart draws the chosen price metric of result over time, one line per
// timber type. A result with no plottable price renders a placeholder.
func LineChart(result stumpage.Result, metric stumpage.Metric, cfg Config) string {
	if cfg.Width == 0 {
		cfg = DefaultConfig()
	}
	if result.Empty() {
		return emptySVG(cfg, EmptyMessage)
	}

	categories, series := BuildSeries(result, metric)

	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if minVal > maxVal {
		return emptySVG(cfg, EmptyMessage)
	}

	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	px, py, pw, ph := cfg.plotArea()
	n := len(categories)
	xFor := func(i int) float64 {
		if n == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(n-1)
	}
	yFor := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="24" font-size="16" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Y-axis grid
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := yFor(val)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%.2f</text>`,
			px-6, y+4, cfg.FontSize, cfg.TextColor, val))
	}

	// Axis titles
	sb.WriteString(fmt.Sprintf(`<text x="18" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90,18,%d)">%s</text>`,
		py+ph/2, cfg.FontSize+1, cfg.TextColor, py+ph/2, escapeXML(cfg.YLabel)))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
		px+pw/2, py+ph+62, cfg.FontSize+1, cfg.TextColor, escapeXML(cfg.XLabel)))

	// X-axis labels
	interval := n / 12
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < n; i += interval {
		x := xFor(i)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="end" transform="rotate(-45,%.1f,%d)">%s</text>`,
			x, py+ph+16, cfg.FontSize-1, cfg.TextColor, x, py+ph+16, escapeXML(categories[i])))
	}

	// Series; a missing price breaks the line, an absent record does not
	for _, s := range series {
		var pathParts []string
		cmd := "M"
		for i, v := range s.Values {
			if !s.Present[i] {
				continue
			}
			if math.IsNaN(v) {
				cmd = "M"
				continue
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, xFor(i), yFor(v)))
			cmd = "L"
		}
		sb.WriteString(fmt.Sprintf(`<g class="series" data-name="%s">`, escapeXML(s.Name)))
		if len(pathParts) > 0 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(pathParts, " "), s.Color))
		}
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s, %s: %.2f</title></circle>`,
				xFor(i), yFor(v), s.Color, escapeXML(s.Name), escapeXML(categories[i]), v))
		}
		sb.WriteString("</g>")
	}

	// Legend below the plot
	lx, ly := px, py+ph+90
	for _, s := range series {
		width := 40 + 7*len(s.Name)
		if lx+width > cfg.Width-cfg.MarginRight && lx > px {
			lx = px
			ly += 18
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			lx, ly, lx+20, ly, s.Color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s">%s</text>`,
			lx+25, ly+4, cfg.FontSize, cfg.TextColor, escapeXML(s.Name)))
		lx += width
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func svgHeader(cfg Config) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg Config, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
