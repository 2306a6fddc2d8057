package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestMetrics() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	return NewWithRegistry(registry, nil), registry
}

func TestMetricsInitialization(t *testing.T) {
	m, _ := getTestMetrics()

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.MutationsTotal)
	assert.NotNil(t, m.AutomationExecutionsTotal)
	assert.NotNil(t, m.AutomationSkipsTotal)
	assert.NotNil(t, m.NotificationsTotal)
	assert.NotNil(t, m.PersistDuration)
	assert.NotNil(t, m.PersistFailures)
	assert.NotNil(t, m.ListsTotal)
	assert.NotNil(t, m.CardsTotal)
	assert.NotNil(t, m.SnapshotClients)
}

func TestMetricNamesUseNamespace(t *testing.T) {
	m, registry := getTestMetrics()

	// Touch a few metrics so vectors materialize children.
	m.IncrementMutation("create_card", "user")
	m.IncrementNotification("CARD_UPDATED")
	m.RecordHTTPRequest("POST", "/api/board/lists", 201, 5*time.Millisecond)
	m.RecordPersist(2*time.Millisecond, nil)
	m.SetBoardTotals(3, 12)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	for _, family := range families {
		assert.True(t, strings.HasPrefix(family.GetName(), "task_board_"),
			"metric %s must carry the task_board namespace", family.GetName())
	}
}

func TestMutationCounterIncrements(t *testing.T) {
	m, registry := getTestMetrics()

	m.IncrementMutation("move_card", "user")
	m.IncrementMutation("move_card", "user")
	m.IncrementMutation("move_card", "automation")

	assert.Equal(t, 2.0, counterValue(t, registry, "task_board_mutations_total",
		map[string]string{"operation": "move_card", "origin": "user"}))
	assert.Equal(t, 1.0, counterValue(t, registry, "task_board_mutations_total",
		map[string]string{"operation": "move_card", "origin": "automation"}))
}

func TestPersistFailureCounted(t *testing.T) {
	m, registry := getTestMetrics()

	m.RecordPersist(time.Millisecond, nil)
	m.RecordPersist(time.Millisecond, errors.New("disk full"))

	assert.Equal(t, 1.0, counterValue(t, registry, "task_board_persist_failures_total", nil))
}

// counterValue finds a counter sample by family name and label set.
func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	if len(labels) == 0 {
		return true
	}
	found := map[string]string{}
	for _, pair := range metric.GetLabel() {
		found[pair.GetName()] = pair.GetValue()
	}
	for k, v := range labels {
		if found[k] != v {
			return false
		}
	}
	return true
}
