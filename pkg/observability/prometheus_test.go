package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func assertValue(t *testing.T, name string, c prometheus.Collector, want float64) {
	t.Helper()
	if got := testutil.ToFloat64(c); got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestPrometheusBuildHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)
	ctx := context.Background()

	h.OnParseComplete(ctx, "app1", 10*time.Millisecond, nil)
	h.OnIndexComplete(ctx, "app1", 4, 3, 2, time.Millisecond, nil)
	h.OnScaleComplete(ctx, "app1", 3, time.Millisecond, nil)
	h.OnParseComplete(ctx, "", time.Millisecond, errors.New("bad document"))

	assertValue(t, "tree nodes", h.TreeNodes.WithLabelValues("app1"), 4)
	assertValue(t, "tree depth", h.TreeDepth.WithLabelValues("app1"), 3)
	assertValue(t, "skipped refs", h.SkippedRefs.WithLabelValues("app1"), 2)
	assertValue(t, "parse errors", h.StageErrors.WithLabelValues("parse"), 1)
	assertValue(t, "index errors", h.StageErrors.WithLabelValues("index"), 0)

	mf := gather(t, reg, "godswood_build_stage_seconds")
	if mf.GetType() != dto.MetricType_HISTOGRAM {
		t.Errorf("type = %v, want histogram", mf.GetType())
	}
	var parses uint64
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "stage" && lp.GetValue() == "parse" {
				parses = m.GetHistogram().GetSampleCount()
			}
		}
	}
	if parses != 2 {
		t.Errorf("parse samples = %d, want 2", parses)
	}
}

func TestPrometheusCacheHooks(t *testing.T) {
	h := NewPrometheusHooks(prometheus.NewRegistry())
	ctx := context.Background()

	h.OnCacheMiss(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 512)
	h.OnCacheHit(ctx, "layout")
	h.OnCacheHit(ctx, "layout")

	assertValue(t, "hits", h.CacheRequests.WithLabelValues("layout", "hit"), 2)
	assertValue(t, "misses", h.CacheRequests.WithLabelValues("layout", "miss"), 1)
	assertValue(t, "bytes", h.CacheBytes.WithLabelValues("layout"), 512)
}

func TestPrometheusHTTPHooks(t *testing.T) {
	h := NewPrometheusHooks(prometheus.NewRegistry())
	ctx := context.Background()

	h.OnRequest(ctx, "GET")
	assertValue(t, "in flight", h.HTTPRequestsInFlight, 1)

	h.OnResponse(ctx, "GET", "/trees", 200, 5*time.Millisecond)
	assertValue(t, "in flight", h.HTTPRequestsInFlight, 0)
	assertValue(t, "requests", h.HTTPRequestsTotal.WithLabelValues("GET", "/trees", "200"), 1)
}

func TestPrometheusHooksDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)

	defer func() {
		if recover() == nil {
			t.Error("second registration did not panic")
		}
	}()
	NewPrometheusHooks(reg)
}
