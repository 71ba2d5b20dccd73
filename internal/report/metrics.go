package report

import (
	"bytes"
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/flarebyte/coachgrade/internal/reconcile"
)

// EncodeMetrics writes the run summary in the Prometheus text exposition
// format, suitable for a node_exporter textfile collector.
func EncodeMetrics(w io.Writer, s reconcile.Summary, fullCredit int) error {
	families := []*dto.MetricFamily{
		{
			Name: proto.String("coachgrade_students"),
			Help: proto.String("Students per outcome bucket in the last grading run."),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{
				bucketGauge(reconcile.Accessed, len(s.Accessed)),
				bucketGauge(reconcile.NotAccessed, len(s.NotAccessed)),
				bucketGauge(reconcile.Skipped, len(s.Skipped)),
			},
		},
		gaugeFamily("coachgrade_probe_failures", "Probes that failed in transport and were scored as not accessed.", float64(s.NetworkErrors)),
		gaugeFamily("coachgrade_full_credit_points", "Points awarded to a student whose log file exists.", float64(fullCredit)),
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetrics writes EncodeMetrics output to path, creating parent directories.
func WriteMetrics(path string, s reconcile.Summary, fullCredit int) error {
	var buf bytes.Buffer
	if err := EncodeMetrics(&buf, s, fullCredit); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

func bucketGauge(bucket reconcile.Status, n int) *dto.Metric {
	return &dto.Metric{
		Label: []*dto.LabelPair{{Name: proto.String("bucket"), Value: proto.String(string(bucket))}},
		Gauge: &dto.Gauge{Value: proto.Float64(float64(n))},
	}
}

func gaugeFamily(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}
