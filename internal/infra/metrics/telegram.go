package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramSendFailuresTotal,
		webhookUpdatesTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts routed commands from users.",
		},
		[]string{"command"},
	)

	telegramSendFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_send_failures_total",
			Help: "Replies that could not be delivered to Telegram.",
		},
	)

	webhookUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_updates_total",
			Help: "Webhook updates by HTTP outcome.",
		},
		[]string{"status"}, // ok | bad_payload | failed
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncSendFailure() {
	telegramSendFailuresTotal.Inc()
}

func IncWebhookUpdate(status string) {
	webhookUpdatesTotal.WithLabelValues(norm(status)).Inc()
}
