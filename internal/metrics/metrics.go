package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var MessagesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "luna_automod_messages_evaluated",
	Help: "Number of guild messages run through the detector bank",
})

var EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "luna_automod_evaluation_duration_sec",
	Help:    "Duration of detector bank evaluation",
	Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
})

var Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "luna_automod_verdicts",
	Help: "Number of violations detected",
}, []string{"type"})

var Actions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "luna_automod_actions",
	Help: "Number of punishments selected by the escalation engine",
}, []string{"action"})

var ActionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "luna_automod_action_failures",
	Help: "Number of platform side effects that failed",
}, []string{"step"})

var OwnerExemptions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "luna_automod_owner_exemptions",
	Help: "Number of verdicts skipped because the author owns the guild",
})

var NoticesDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "luna_automod_notices_dropped",
	Help: "Number of moderation notices suppressed by the channel rate limit",
})

func Handler() http.Handler {
	return promhttp.Handler()
}
