package kafka

import (
	"sync"

	"github.com/asquebay/food-order-service/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// kafka-go обнуляет счётчики в Stats() при каждом вызове,
// поэтому коллекторы накапливают их сами

type readerCollector struct {
	stats func() kafka.ReaderStats

	mu       sync.Mutex
	messages float64
	errors   float64

	messagesDesc *prometheus.Desc
	errorsDesc   *prometheus.Desc
	lagDesc      *prometheus.Desc
}

func newReaderCollector(stats func() kafka.ReaderStats) *readerCollector {
	return &readerCollector{
		stats: stats,
		messagesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "kafka_consumer", "messages_total"),
			"Messages fetched by the kafka consumer.", nil, nil,
		),
		errorsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "kafka_consumer", "errors_total"),
			"Errors reported by the kafka reader.", nil, nil,
		),
		lagDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "kafka_consumer", "lag"),
			"Consumer lag reported by the kafka reader.", nil, nil,
		),
	}
}

func (c *readerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messagesDesc
	ch <- c.errorsDesc
	ch <- c.lagDesc
}

func (c *readerCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats()
	c.messages += float64(s.Messages)
	c.errors += float64(s.Errors)

	ch <- prometheus.MustNewConstMetric(c.messagesDesc, prometheus.CounterValue, c.messages)
	ch <- prometheus.MustNewConstMetric(c.errorsDesc, prometheus.CounterValue, c.errors)
	ch <- prometheus.MustNewConstMetric(c.lagDesc, prometheus.GaugeValue, float64(s.Lag))
}

type writerCollector struct {
	stats func() kafka.WriterStats

	mu       sync.Mutex
	messages float64
	errors   float64

	messagesDesc *prometheus.Desc
	errorsDesc   *prometheus.Desc
}

func newWriterCollector(stats func() kafka.WriterStats) *writerCollector {
	return &writerCollector{
		stats: stats,
		messagesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "kafka_producer", "messages_total"),
			"Messages written by the kafka producer.", nil, nil,
		),
		errorsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "kafka_producer", "errors_total"),
			"Errors reported by the kafka writer.", nil, nil,
		),
	}
}

func (c *writerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messagesDesc
	ch <- c.errorsDesc
}

func (c *writerCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats()
	c.messages += float64(s.Messages)
	c.errors += float64(s.Errors)

	ch <- prometheus.MustNewConstMetric(c.messagesDesc, prometheus.CounterValue, c.messages)
	ch <- prometheus.MustNewConstMetric(c.errorsDesc, prometheus.CounterValue, c.errors)
}
