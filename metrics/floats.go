package metrics

import (
	"math"
	"sync/atomic"
)

// storeFloat and loadFloat let a float64 ride an atomic.Uint64 (Go has no
// atomic.Float64) without losing the lock-free, no-tearing per-key
// guarantee.
func storeFloat(field *atomic.Uint64, v float64) {
	field.Store(math.Float64bits(v))
}

func loadFloat(field *atomic.Uint64) float64 {
	return math.Float64frombits(field.Load())
}

// SetProducerFPS records producer_fps.
func (p *Plane) SetProducerFPS(v float64) { storeFloat(&p.ProducerFPS, v) }

// ProducerFPSValue reads producer_fps.
func (p *Plane) ProducerFPSValue() float64 { return loadFloat(&p.ProducerFPS) }

// SetPublishAvgMs records publish_avg_ms.
func (p *Plane) SetPublishAvgMs(v float64) { storeFloat(&p.PublishAvgMs, v) }

// PublishAvgMsValue reads publish_avg_ms.
func (p *Plane) PublishAvgMsValue() float64 { return loadFloat(&p.PublishAvgMs) }

// SetPublishP95Ms records publish_p95_ms.
func (p *Plane) SetPublishP95Ms(v float64) { storeFloat(&p.PublishP95Ms, v) }

// PublishP95MsValue reads publish_p95_ms.
func (p *Plane) PublishP95MsValue() float64 { return loadFloat(&p.PublishP95Ms) }

// SetConsumerFPS records consumer_fps.
func (p *Plane) SetConsumerFPS(v float64) { storeFloat(&p.ConsumerFPS, v) }

// ConsumerFPSValue reads consumer_fps.
func (p *Plane) ConsumerFPSValue() float64 { return loadFloat(&p.ConsumerFPS) }

// SetPlotTickAvgMs records plot_tick_avg_ms.
func (p *Plane) SetPlotTickAvgMs(v float64) { storeFloat(&p.PlotTickAvgMs, v) }

// PlotTickAvgMsValue reads plot_tick_avg_ms.
func (p *Plane) PlotTickAvgMsValue() float64 { return loadFloat(&p.PlotTickAvgMs) }

// SetGPUUploadAvgMs records gpu_upload_avg_ms.
func (p *Plane) SetGPUUploadAvgMs(v float64) { storeFloat(&p.GPUUploadAvgMs, v) }

// GPUUploadAvgMsValue reads gpu_upload_avg_ms.
func (p *Plane) GPUUploadAvgMsValue() float64 { return loadFloat(&p.GPUUploadAvgMs) }

// SetWriterFPSEstimate records writer_fps_estimate.
func (p *Plane) SetWriterFPSEstimate(v float64) { storeFloat(&p.WriterFPSEstimate, v) }

// WriterFPSEstimateValue reads writer_fps_estimate.
func (p *Plane) WriterFPSEstimateValue() float64 { return loadFloat(&p.WriterFPSEstimate) }

// SetIngestFPSEstimate records ingest_fps_estimate.
func (p *Plane) SetIngestFPSEstimate(v float64) { storeFloat(&p.IngestFPSEstimate, v) }

// IngestFPSEstimateValue reads ingest_fps_estimate.
func (p *Plane) IngestFPSEstimateValue() float64 { return loadFloat(&p.IngestFPSEstimate) }
