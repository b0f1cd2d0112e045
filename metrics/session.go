package metrics

type SessionMetric struct {
	id string
}

// NewSession counts a newly opened session. Call Drop once it is closed.
func NewSession(id string) *SessionMetric {
	GetEditorMetrics().sessions.Inc()
	return &SessionMetric{id: id}
}

func (s *SessionMetric) UpdateNodes(count int) {
	GetEditorMetrics().treeNodes.WithLabelValues(s.id).Set(float64(count))
}

func (s *SessionMetric) Drop() {
	GetEditorMetrics().treeNodes.DeleteLabelValues(s.id)
	GetEditorMetrics().sessions.Dec()
}
