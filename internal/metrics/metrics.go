package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики пайплайна модерации. Регистрируются в default registry,
// отдаются на /metrics.
var (
	// ModerationActions считает выполненные действия по типу контента и действию.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_actions_total",
		Help: "Количество выполненных модераторских действий.",
	}, []string{"content_type", "action"})

	// NotificationsSent считает отправленные уведомления по каналу и исходу.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_notifications_sent_total",
		Help: "Количество уведомлений по каналу доставки и исходу.",
	}, []string{"channel", "outcome"})

	// RateLimited считает запросы, отклонённые лимитером, по неймспейсу.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_rate_limited_total",
		Help: "Количество запросов, отклонённых rate limiter-ом.",
	}, []string{"namespace"})

	// SanctionsApplied считает применённые санкции по виду.
	SanctionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_sanctions_total",
		Help: "Количество применённых санкций (warning/suspend/ban).",
	}, []string{"kind"})
)
