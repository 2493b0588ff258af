package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
)

const namespace = "inventario"

var _ inventory.MutationMetrics = (*PipelineMetrics)(nil)

// PipelineMetrics colectores Prometheus del pipeline de actualización de artículos.
type PipelineMetrics struct {
	updates  *prometheus.CounterVec
	duration prometheus.Histogram
	entries  *prometheus.CounterVec
	units    *prometheus.CounterVec
}

// NewPipelineMetrics crea y registra los colectores en reg.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_updates_total",
			Help:      "Actualizaciones de artículos por resultado.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_update_duration_seconds",
			Help:      "Duración de la actualización incluyendo espera del bloqueo y reintentos.",
			Buckets:   prometheus.DefBuckets,
		}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_log_entries_total",
			Help:      "Entradas agregadas al historial de cambios por dirección.",
		}, []string{"direction"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_units_changed_total",
			Help:      "Unidades sumadas o restadas registradas en el historial.",
		}, []string{"direction"}),
	}
	reg.MustRegister(m.updates, m.duration, m.entries, m.units)
	return m
}

// ObserveUpdate cuenta el resultado y la duración de una actualización.
func (m *PipelineMetrics) ObserveUpdate(result string, elapsed time.Duration) {
	m.updates.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// ObserveChange cuenta una entrada del historial.
func (m *PipelineMetrics) ObserveChange(delta int64) {
	direction := "in"
	units := delta
	if delta < 0 {
		direction = "out"
		units = -delta
	}
	m.entries.WithLabelValues(direction).Inc()
	m.units.WithLabelValues(direction).Add(float64(units))
}
