package prometheus

import (
	"bufio"
	"io"
	"net/http"
	"strconv"
	"strings"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
)

// MetricsSource is satisfied by [goAuthClient.Client].
type MetricsSource interface {
	MetricsSnapshot() goAuthClient.MetricsSnapshot
	ActionsDropped() uint64
}

// PrometheusExporter renders client metrics in Prometheus text exposition
// format.
type PrometheusExporter struct {
	source MetricsSource
}

// NewPrometheusExporter returns an exporter reading from client.
func NewPrometheusExporter(client *goAuthClient.Client) *PrometheusExporter {
	return &PrometheusExporter{source: client}
}

// NewPrometheusExporterFromSource returns an exporter reading from source.
func NewPrometheusExporterFromSource(source MetricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves the current metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = p.WriteTo(w)
	})
}

// Render returns the current metrics as a string. It is empty when metrics
// are disabled and no action was dropped.
func (p *PrometheusExporter) Render() string {
	var b strings.Builder
	b.Grow(4096)
	_, _ = p.WriteTo(&b)
	return b.String()
}

// WriteTo writes the current metrics to w.
func (p *PrometheusExporter) WriteTo(w io.Writer) (int64, error) {
	if p == nil || p.source == nil {
		return 0, nil
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.ActionsDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return 0, nil
	}

	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, def := range internaldefs.CounterDefs {
		writeCounter(cw, def.Name, def.Help, snapshot.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		writeHistogram(cw, def.Name, def.Help, internaldefs.CumulativeBuckets(buckets))
	}
	writeCounter(cw, internaldefs.ActionsDroppedName, internaldefs.ActionsDroppedHelp, dropped)

	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) str(parts ...string) {
	for _, s := range parts {
		if c.err != nil {
			return
		}
		n, err := c.w.WriteString(s)
		c.n += int64(n)
		c.err = err
	}
}

func writeHeader(w *countingWriter, name, help, typ string) {
	w.str("# HELP ", name, " ", escapeHelp(help), "\n")
	w.str("# TYPE ", name, " ", typ, "\n")
}

func writeCounter(w *countingWriter, name, help string, value uint64) {
	writeHeader(w, name, help, "counter")
	w.str(name, " ", strconv.FormatUint(value, 10), "\n")
}

func writeHistogram(w *countingWriter, name, help string, cumulative [internaldefs.BucketCount]uint64) {
	writeHeader(w, name, help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		w.str(name, `_bucket{le="`, le, `"} `, strconv.FormatUint(cumulative[i], 10), "\n")
	}
	w.str(name, "_count ", strconv.FormatUint(cumulative[internaldefs.BucketCount-1], 10), "\n")
	// Snapshots keep bucket counts only.
	w.str(name, "_sum 0\n")
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
