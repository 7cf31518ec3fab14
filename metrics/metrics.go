package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/models"
)

// Collector exposes the state of one trading session. It has its own registry
// so several collectors can live in one process.
type Collector struct {
	registry *prometheus.Registry

	SignalsTotal     *prometheus.CounterVec // labels: direction
	TradesTotal      *prometheus.CounterVec // labels: reason
	RealizedPnl      prometheus.Gauge
	SignalConfidence prometheus.Gauge
	LastPrice        prometheus.Gauge
	PositionSize     prometheus.Gauge
	PositionSide     prometheus.Gauge // -1 short, 0 flat, 1 long
	PyramidLevel     prometheus.Gauge
}

func NewCollector(symbol string) *Collector {
	labels := prometheus.Labels{"symbol": symbol}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "takietam_signals_total",
			Help:        "Signals emitted per closed bar",
			ConstLabels: labels,
		}, []string{"direction"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "takietam_trades_total",
			Help:        "Closed trades by close reason",
			ConstLabels: labels,
		}, []string{"reason"}),
		RealizedPnl: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "takietam_realized_pnl_percent",
			Help:        "Sum of closed trade profit percentages",
			ConstLabels: labels,
		}),
		SignalConfidence: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "takietam_signal_confidence",
			Help:        "Confidence of the latest signal",
			ConstLabels: labels,
		}),
		LastPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "takietam_last_price",
			Help:        "Close of the latest processed bar",
			ConstLabels: labels,
		}),
		PositionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "takietam_position_size",
			Help:        "Open position size in base units",
			ConstLabels: labels,
		}),
		PositionSide: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "takietam_position_side",
			Help:        "-1 short, 0 flat, 1 long",
			ConstLabels: labels,
		}),
		PyramidLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "takietam_pyramid_level",
			Help:        "Pyramid entries added on top of the base entry",
			ConstLabels: labels,
		}),
	}

	c.registry.MustRegister(
		c.SignalsTotal,
		c.TradesTotal,
		c.RealizedPnl,
		c.SignalConfidence,
		c.LastPrice,
		c.PositionSize,
		c.PositionSide,
		c.PyramidLevel,
	)
	return c
}

func (c *Collector) ObserveSignal(signal models.Signal) {
	c.SignalsTotal.WithLabelValues(string(signal.Direction)).Inc()
	c.SignalConfidence.Set(float64(signal.Confidence))
	c.LastPrice.Set(signal.Price)
}

func (c *Collector) ObserveTrade(trade models.Trade) {
	c.TradesTotal.WithLabelValues(string(trade.CloseReason)).Inc()
	c.RealizedPnl.Add(trade.PnlPercent)
}

func (c *Collector) ObservePosition(position models.Position) {
	c.PositionSize.Set(position.TotalSize)
	c.PyramidLevel.Set(float64(position.PyramidLevel))
	switch position.Direction {
	case models.PositionLong:
		c.PositionSide.Set(1)
	case models.PositionShort:
		c.PositionSide.Set(-1)
	default:
		c.PositionSide.Set(0)
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	helpers.Logger.WithField("addr", addr).Info("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
