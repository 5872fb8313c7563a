package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledseq",
		Name:      "step_transitions_total",
		Help:      "Sequence steps advanced per channel",
	}, []string{"channel"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledseq",
		Name:      "commands_total",
		Help:      "Commands executed by the control loop",
	}, []string{"source", "action"})

	outputState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ledseq",
		Name:      "output_on",
		Help:      "Logical output state per channel (1 = on)",
	}, []string{"channel"})

	outputPlaying = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ledseq",
		Name:      "output_playing",
		Help:      "1 while a sequence is running on the channel",
	}, []string{"channel"})
)

func updateMetrics(ch *channel) {
	outputState.WithLabelValues(ch.name).Set(boolToFloat(ch.driver.State()))
	outputPlaying.WithLabelValues(ch.name).Set(boolToFloat(ch.driver.Playing()))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// HandleMetrics serves the prometheus metrics.
func (app *App) HandleMetrics() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(ctx *fiber.Ctx) error {
		h(ctx.Context())
		return nil
	}
}
