package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_SessionMetric_lifecycle(t *testing.T) {
	assertion := assert.New(t)
	sessionsBefore := testutil.ToFloat64(GetEditorMetrics().Sessions())

	sut := NewSession("metrics-lifecycle")
	sut.UpdateNodes(7)

	assertion.Equal(sessionsBefore+1, testutil.ToFloat64(GetEditorMetrics().Sessions()))
	assertion.Equal(float64(7), testutil.ToFloat64(GetEditorMetrics().TreeNodes().WithLabelValues("metrics-lifecycle")))

	sut.Drop()

	assertion.Equal(sessionsBefore, testutil.ToFloat64(GetEditorMetrics().Sessions()))
	assertion.False(GetEditorMetrics().TreeNodes().DeleteLabelValues("metrics-lifecycle"), "label must already be gone")
}

func Test_EditorMetrics_counters(t *testing.T) {
	assertion := assert.New(t)
	sut := GetEditorMetrics()

	accepted := testutil.ToFloat64(sut.Moves().WithLabelValues(OutcomeAccepted, ""))
	rejected := testutil.ToFloat64(sut.Moves().WithLabelValues(OutcomeRejected, "cycle"))
	failures := testutil.ToFloat64(sut.Snapshots().WithLabelValues(ResultFailure))

	sut.MoveAccepted()
	sut.MoveRejected("cycle")
	sut.MoveRejected("cycle")
	sut.SnapshotTaken(errors.New("disk full"))

	assertion.Equal(accepted+1, testutil.ToFloat64(sut.Moves().WithLabelValues(OutcomeAccepted, "")))
	assertion.Equal(rejected+2, testutil.ToFloat64(sut.Moves().WithLabelValues(OutcomeRejected, "cycle")))
	assertion.Equal(failures+1, testutil.ToFloat64(sut.Snapshots().WithLabelValues(ResultFailure)))
}

func Test_Handler_exposesEditorMetrics(t *testing.T) {
	assertion := assert.New(t)
	GetEditorMetrics().ParseFailed()

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assertion.Equal(http.StatusOK, recorder.Code)
	assertion.Contains(recorder.Body.String(), "treefactor_editor_parse_failures_total")
}
