package metrics

import "time"

// IncrementMutation counts one settled board mutation.
func (m *Metrics) IncrementMutation(operation, origin string) {
	m.safeExecute("IncrementMutation", func() {
		m.MutationsTotal.WithLabelValues(operation, origin).Inc()
	})
}

// IncrementAutomationExecution counts one applied automation action.
func (m *Metrics) IncrementAutomationExecution(action string) {
	m.safeExecute("IncrementAutomationExecution", func() {
		m.AutomationExecutionsTotal.WithLabelValues(action).Inc()
	})
}

// IncrementAutomationSkip counts one rule invocation skipped over a dangling
// reference.
func (m *Metrics) IncrementAutomationSkip() {
	m.safeExecute("IncrementAutomationSkip", func() {
		m.AutomationSkipsTotal.Inc()
	})
}

// IncrementNotification counts one emitted notification.
func (m *Metrics) IncrementNotification(notificationType string) {
	m.safeExecute("IncrementNotification", func() {
		m.NotificationsTotal.WithLabelValues(notificationType).Inc()
	})
}

// RecordPersist records one snapshot write attempt.
func (m *Metrics) RecordPersist(duration time.Duration, err error) {
	m.safeExecute("RecordPersist", func() {
		m.PersistDuration.Observe(duration.Seconds())
		if err != nil {
			m.PersistFailures.Inc()
		}
	})
}

// SetBoardTotals sets the list/card gauges after a settled mutation.
func (m *Metrics) SetBoardTotals(lists, cards int) {
	m.safeExecute("SetBoardTotals", func() {
		m.ListsTotal.Set(float64(lists))
		m.CardsTotal.Set(float64(cards))
	})
}

// SetSnapshotClients sets the connected websocket client gauge.
func (m *Metrics) SetSnapshotClients(count int) {
	m.safeExecute("SetSnapshotClients", func() {
		m.SnapshotClients.Set(float64(count))
	})
}
