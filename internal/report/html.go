package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/macdiag/logcompare/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// chartData is serialized into the report's inline script; plotly renders
// one grouped bar trace per numeric metric.
type chartData struct {
	Labels    []string  `json:"labels"`
	TTLDays   []float64 `json:"ttl_days"`
	SizeGB    []float64 `json:"size_gb"`
	Events    []int     `json:"events"`
	Processes []int     `json:"processes"`
}

type htmlPage struct {
	GeneratedAt time.Time
	Rows        []metrics.ArchiveMetrics
	ChartJSON   template.JS
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatBytes": func(b int64) string { return humanize.IBytes(uint64(b)) },
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02 15:04:05")
		},
		"fixed2": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	}
}

// WriteHTML renders the comparison dashboard to path as a single
// self-contained page (the charting library is linked from its CDN).
func WriteHTML(path string, generatedAt time.Time, results []metrics.ArchiveMetrics) error {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	chart := chartData{
		Labels:    make([]string, 0, len(results)),
		TTLDays:   make([]float64, 0, len(results)),
		SizeGB:    make([]float64, 0, len(results)),
		Events:    make([]int, 0, len(results)),
		Processes: make([]int, 0, len(results)),
	}
	for _, m := range results {
		chart.Labels = append(chart.Labels, m.Label())
		chart.TTLDays = append(chart.TTLDays, m.TTLDays())
		chart.SizeGB = append(chart.SizeGB, m.SizeGB())
		chart.Events = append(chart.Events, m.Events)
		chart.Processes = append(chart.Processes, m.UniqueProcesses())
	}

	chartJSON, err := json.Marshal(chart)
	if err != nil {
		return fmt.Errorf("marshaling chart data: %w", err)
	}

	var buf bytes.Buffer
	page := htmlPage{
		GeneratedAt: generatedAt,
		Rows:        results,
		ChartJSON:   template.JS(chartJSON),
	}
	if err := tmpl.ExecuteTemplate(&buf, "report.html", page); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing html report: %w", err)
	}
	return nil
}
