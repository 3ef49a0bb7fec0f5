package worker

import (
	"github.com/fluxdesk/helpdesk/internal/events"
	"github.com/fluxdesk/helpdesk/internal/notify"
)

// StartNotificationWorker subscribes the notifier to ticket events.
func StartNotificationWorker(notifier *notify.Notifier, dispatcher events.Dispatcher) {
	if notifier == nil {
		return
	}
	notifier.RegisterHandlers(dispatcher)
}
