package api

import (
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

var metricsFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

// routeLabel maps a request path to a bounded set of metric labels.
func routeLabel(path string) string {
	switch path {
	case "/health", "/quality-from-csv", "/quality-flags-from-csv", "/metrics":
		return path
	}
	return "other"
}

type requestKey struct {
	route string
	code  int
}

type durationStat struct {
	count uint64
	sum   float64
}

// metrics holds in-process request counters exposed on /metrics.
type metrics struct {
	mu        sync.Mutex
	requests  map[requestKey]uint64
	durations map[string]*durationStat
	rows      uint64
}

func newMetrics() *metrics {
	return &metrics{
		requests:  map[requestKey]uint64{},
		durations: map[string]*durationStat{},
	}
}

func (m *metrics) observe(route string, code int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[requestKey{route: route, code: code}]++
	ds, ok := m.durations[route]
	if !ok {
		ds = &durationStat{}
		m.durations[route] = ds
	}
	ds.count++
	ds.sum += d.Seconds()
}

func (m *metrics) addRows(n int) {
	m.mu.Lock()
	m.rows += uint64(n)
	m.mu.Unlock()
}

// families snapshots the counters in a stable order.
func (m *metrics) families() []*dto.MetricFamily {
	m.mu.Lock()
	defer m.mu.Unlock()

	reqs := &dto.MetricFamily{
		Name: proto.String("eda_http_requests_total"),
		Help: proto.String("HTTP requests by route and status code."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	keys := make([]requestKey, 0, len(m.requests))
	for k := range m.requests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].route == keys[j].route {
			return keys[i].code < keys[j].code
		}
		return keys[i].route < keys[j].route
	})
	for _, k := range keys {
		reqs.Metric = append(reqs.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: proto.String("code"), Value: proto.String(strconv.Itoa(k.code))},
				{Name: proto.String("route"), Value: proto.String(k.route)},
			},
			Counter: &dto.Counter{Value: proto.Float64(float64(m.requests[k]))},
		})
	}

	durs := &dto.MetricFamily{
		Name: proto.String("eda_http_request_duration_seconds"),
		Help: proto.String("Time spent serving HTTP requests."),
		Type: dto.MetricType_SUMMARY.Enum(),
	}
	routes := make([]string, 0, len(m.durations))
	for r := range m.durations {
		routes = append(routes, r)
	}
	sort.Strings(routes)
	for _, r := range routes {
		ds := m.durations[r]
		durs.Metric = append(durs.Metric, &dto.Metric{
			Label: []*dto.LabelPair{{Name: proto.String("route"), Value: proto.String(r)}},
			Summary: &dto.Summary{
				SampleCount: proto.Uint64(ds.count),
				SampleSum:   proto.Float64(ds.sum),
			},
		})
	}

	rows := &dto.MetricFamily{
		Name: proto.String("eda_rows_analyzed_total"),
		Help: proto.String("Rows parsed from uploaded CSV files."),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{
			Counter: &dto.Counter{Value: proto.Float64(float64(m.rows))},
		}},
	}

	out := []*dto.MetricFamily{rows}
	if len(reqs.Metric) > 0 {
		out = append(out, reqs, durs)
	}
	return out
}

func (m *metrics) write(w io.Writer) error {
	enc := expfmt.NewEncoder(w, metricsFormat)
	for _, mf := range m.families() {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
