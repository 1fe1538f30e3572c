// Package metrics counts decoded boxes and walked files on a private
// registry that can be dumped for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tyrese/isobox/format/mp4/mp4io"
)

const namespace = "isobox"

const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	boxes    *prometheus.CounterVec
	files    *prometheus.CounterVec
	duration prometheus.Histogram
}

func New() *Metrics {
	self := &Metrics{
		registry: prometheus.NewRegistry(),
		boxes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxes_decoded_total",
			Help:      "Boxes added to a forest, by record kind.",
		}, []string{"kind"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files walked, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "walk_duration_seconds",
			Help:      "Time spent walking one file.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	self.registry.MustRegister(self.boxes, self.files, self.duration)
	return self
}

func (self *Metrics) Registry() *prometheus.Registry {
	return self.registry
}

// ObserveWalk records one walk. forest is ignored when err is set.
func (self *Metrics) ObserveWalk(forest *mp4io.Forest, took time.Duration, err error) {
	self.duration.Observe(took.Seconds())
	if err != nil {
		self.files.WithLabelValues(ResultError).Inc()
		return
	}
	self.files.WithLabelValues(ResultOK).Inc()
	for _, n := range forest.Nodes {
		self.boxes.WithLabelValues(n.Box.Kind().String()).Inc()
	}
}

// WriteTextfile atomically writes every metric to path in the text
// exposition format.
func (self *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, self.registry)
}
