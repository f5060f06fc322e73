package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes a Plane's atomics as a prometheus.Collector. The
// Plane's fields are the single source of truth and Describe/Collect
// just read them on every scrape, so the Plane itself never has to know
// about Prometheus.
type Collector struct {
	plane     *Plane
	namespace string

	descs map[string]*prometheus.Desc
}

// NewCollector wraps plane for Prometheus registration under namespace.
func NewCollector(plane *Plane, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(namespace+"_"+name, help, nil, nil)
	}
	return &Collector{
		plane:     plane,
		namespace: namespace,
		descs: map[string]*prometheus.Desc{
			"producer_fps":           desc("producer_fps", "producer frames published per second"),
			"publish_avg_ms":         desc("publish_avg_ms", "average publish latency in milliseconds"),
			"publish_p95_ms":         desc("publish_p95_ms", "p95 publish latency in milliseconds"),
			"last_write_idx":         desc("last_write_idx", "most recent ring write_idx observed"),
			"consumer_fps":           desc("consumer_fps", "consumer frames consumed per second"),
			"plot_tick_avg_ms":       desc("plot_tick_avg_ms", "average consumer render tick in milliseconds"),
			"gpu_upload_avg_ms":      desc("gpu_upload_avg_ms", "average consumer GPU upload time in milliseconds"),
			"frames_lag":             desc("frames_lag", "frames the consumer is behind write_idx"),
			"drops_est":              desc("drops_est", "estimated frames dropped due to producer lapping a consumer"),
			"writer_active_bin":      desc("writer_active_bin", "which of the two journal files is active (0 or 1)"),
			"writer_total_frames":    desc("writer_total_frames", "total frames written to the journal"),
			"writer_rotations":       desc("writer_rotations", "total journal rotations performed"),
			"writer_fps_estimate":    desc("writer_fps_estimate", "estimated journal writer frames per second"),
			"writer_alive":           desc("writer_alive", "1 if the journal writer is alive and its heartbeat is fresh"),
			"ingest_frames_ingested": desc("ingest_frames_ingested", "total frames ingested into the durable sink"),
			"ingest_bytes_read":      desc("ingest_bytes_read", "total payload bytes read from sealed journal files"),
			"ingest_batches_flushed": desc("ingest_batches_flushed", "total batches flushed to the durable sink"),
			"ingest_fps_estimate":    desc("ingest_fps_estimate", "estimated ingester frames per second"),
			"ingest_alive":           desc("ingest_alive", "1 if the ingester is alive and its heartbeat is fresh"),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector, reading every field straight
// off the Plane's atomics at scrape time.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	p := c.plane
	gauge := func(key string, v float64) {
		ch <- prometheus.MustNewConstMetric(c.descs[key], prometheus.GaugeValue, v)
	}
	counter := func(key string, v float64) {
		ch <- prometheus.MustNewConstMetric(c.descs[key], prometheus.CounterValue, v)
	}

	gauge("producer_fps", p.ProducerFPSValue())
	gauge("publish_avg_ms", p.PublishAvgMsValue())
	gauge("publish_p95_ms", p.PublishP95MsValue())
	gauge("last_write_idx", float64(p.LastWriteIdx.Load()))

	gauge("consumer_fps", p.ConsumerFPSValue())
	gauge("plot_tick_avg_ms", p.PlotTickAvgMsValue())
	gauge("gpu_upload_avg_ms", p.GPUUploadAvgMsValue())
	gauge("frames_lag", float64(p.FramesLag.Load()))
	counter("drops_est", float64(p.DropsEst.Load()))

	gauge("writer_active_bin", float64(p.WriterActiveBin.Load()))
	counter("writer_total_frames", float64(p.WriterTotalFrames.Load()))
	counter("writer_rotations", float64(p.WriterRotations.Load()))
	gauge("writer_fps_estimate", p.WriterFPSEstimateValue())
	gauge("writer_alive", boolFloat(p.WriterAliveNow()))

	counter("ingest_frames_ingested", float64(p.IngestFramesIngested.Load()))
	counter("ingest_bytes_read", float64(p.IngestBytesRead.Load()))
	counter("ingest_batches_flushed", float64(p.IngestBatchesFlushed.Load()))
	gauge("ingest_fps_estimate", p.IngestFPSEstimateValue())
	gauge("ingest_alive", boolFloat(p.IngestAliveNow()))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
