package game

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/Garsondee/tank-gates/internal/game"

// Metrics holds the simulation counters. Counts are also mirrored into
// plain fields so headless reports can read them without an exporter.
type Metrics struct {
	bulletsFired      metric.Int64Counter
	bulletsMultiplied metric.Int64Counter
	gateOverflows     metric.Int64Counter
	bulletsEvicted    metric.Int64Counter
	tanksDestroyed    metric.Int64Counter
	pillsConsumed     metric.Int64Counter

	Fired      int64
	Multiplied int64
	Overflows  int64
	Evicted    int64
	Destroyed  int64
	Pills      int64
}

// NewMetrics registers counters on meter. A nil meter uses the global
// provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	m := &Metrics{}
	var err error
	if m.bulletsFired, err = meter.Int64Counter("tankgates.bullets.fired",
		metric.WithDescription("Bullets admitted by fire, including gate duplicates")); err != nil {
		return nil, err
	}
	if m.bulletsMultiplied, err = meter.Int64Counter("tankgates.bullets.multiplied",
		metric.WithDescription("Bullets replaced by gate duplicates")); err != nil {
		return nil, err
	}
	if m.gateOverflows, err = meter.Int64Counter("tankgates.gate.overflows",
		metric.WithDescription("Gate crossings dropped at the bullet cap")); err != nil {
		return nil, err
	}
	if m.bulletsEvicted, err = meter.Int64Counter("tankgates.bullets.evicted",
		metric.WithDescription("Oldest bullets evicted to admit a new one")); err != nil {
		return nil, err
	}
	if m.tanksDestroyed, err = meter.Int64Counter("tankgates.tanks.destroyed",
		metric.WithDescription("Tanks moved from alive to dead")); err != nil {
		return nil, err
	}
	if m.pillsConsumed, err = meter.Int64Counter("tankgates.pills.consumed",
		metric.WithDescription("Pills picked up by the player")); err != nil {
		return nil, err
	}
	return m, nil
}

// nopMetrics returns counters bound to the no-op meter.
func nopMetrics() *Metrics {
	m, _ := NewMetrics(noop.Meter{})
	return m
}

func ownerAttr(t *Tank) metric.AddOption {
	return metric.WithAttributes(attribute.String("owner", sideOf(t)))
}

func (m *Metrics) fired(t *Tank) {
	m.Fired++
	m.bulletsFired.Add(context.Background(), 1, ownerAttr(t))
}

func (m *Metrics) multiplied(t *Tank) {
	m.Multiplied++
	m.bulletsMultiplied.Add(context.Background(), 1, ownerAttr(t))
}

func (m *Metrics) overflow(t *Tank) {
	m.Overflows++
	m.gateOverflows.Add(context.Background(), 1, ownerAttr(t))
}

func (m *Metrics) evicted(t *Tank) {
	m.Evicted++
	m.bulletsEvicted.Add(context.Background(), 1, ownerAttr(t))
}

func (m *Metrics) destroyed(t *Tank) {
	m.Destroyed++
	m.tanksDestroyed.Add(context.Background(), 1, ownerAttr(t))
}

func (m *Metrics) pill(pt PillType) {
	m.Pills++
	m.pillsConsumed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", pt.String())))
}
