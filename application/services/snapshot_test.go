package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archintel/application/ports"
	"archintel/domain/core/valueobjects"
	"archintel/domain/services/advisor"
	"archintel/domain/services/analysis"
	pkgerrors "archintel/pkg/errors"
)

func populatedController(t *testing.T) *Controller {
	t.Helper()
	ctx := context.Background()

	c := newTestController(t, true, ControllerDependencies{})
	hub(t, c, "core", 6)
	addElement(t, c, "sales", valueobjects.ElementBusinessProcess, valueobjects.LayerBusiness)

	_, err := c.StartPhase(ctx, valueobjects.PhaseArchitectureVision)
	require.NoError(t, err)
	require.NoError(t, c.UpdatePhaseContext(ctx, valueobjects.PhaseArchitectureVision, advisor.PhaseContext{
		CompletedDeliverables: []string{"Architecture vision"},
	}))
	_, _, err = c.AnalyzeArchitecture(ctx)
	require.NoError(t, err)
	_, _, err = c.AssessImpact(ctx, "core", analysis.ChangeReplace)
	require.NoError(t, err)
	_, err = c.MakeAutonomousDecision(ctx, DecisionRequest{
		Type:    valueobjects.DecisionStrategic,
		Scope:   "Architecture scope",
		Urgency: valueobjects.UrgencyHigh,
		Options: governanceOptions(),
	})
	require.NoError(t, err)
	return c
}

func TestController_SnapshotRestoreRoundTrip(t *testing.T) {
	original := populatedController(t)

	snapshot := original.Snapshot()
	assert.Equal(t, 1, snapshot.Version)

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	var decoded ports.SessionSnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := RestoreController(&decoded, ControllerDependencies{})
	require.NoError(t, err)

	assert.Equal(t, original.SessionID(), restored.SessionID())
	assert.Equal(t, original.Name(), restored.Name())
	assert.Equal(t, original.CurrentPhase(), restored.CurrentPhase())
	assert.True(t, restored.AutonomousMode())
	assert.Equal(t, 1, restored.Version())
	assert.Equal(t, original.ModelSnapshot(), restored.ModelSnapshot())
	assert.Len(t, restored.Insights(), len(original.Insights()))
	assert.Len(t, restored.ActionPlans(), len(original.ActionPlans()))
	assert.Len(t, restored.EventLog(), len(original.EventLog()))
	assert.Equal(t, original.GetArchitectureHealth(context.Background()).Score,
		restored.GetArchitectureHealth(context.Background()).Score)

	history := restored.DecisionHistory("", "")
	require.Len(t, history, 1)
	assert.Equal(t, "central-board", history[0].Recommended.ID)

	originalStatus, err := original.GetPhaseStatus()
	require.NoError(t, err)
	restoredStatus, err := restored.GetPhaseStatus()
	require.NoError(t, err)
	assert.Equal(t, originalStatus, restoredStatus)

	// The restored session keeps appending to the same log
	addApp(t, restored, "late")
	restored.GetArchitectureHealth(context.Background())
	log := restored.EventLog()
	assert.Equal(t, len(log), log[len(log)-1].Sequence())
}

func TestController_MarkSaved(t *testing.T) {
	c := newTestController(t, false, ControllerDependencies{})

	c.MarkSaved(1)
	assert.Equal(t, 1, c.Version())
	assert.Equal(t, 2, c.Snapshot().Version)

	c.MarkSaved(1)
	assert.Equal(t, 1, c.Version())
}

func TestRestoreController_Invalid(t *testing.T) {
	_, err := RestoreController(nil, ControllerDependencies{})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = RestoreController(&ports.SessionSnapshot{}, ControllerDependencies{})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestController_GenerateReport(t *testing.T) {
	c := populatedController(t)

	report := c.GenerateReport()

	assert.True(t, strings.HasPrefix(report, "Architecture Report: test-session\n"))
	assert.Contains(t, report, "Current phase: architecture_vision")
	assert.Contains(t, report, "Autonomous mode: true")
	assert.Contains(t, report, "  Elements: 8\n")
	assert.Contains(t, report, "  Relationships: 6\n")
	assert.Contains(t, report, "Architecture scope -> Central architecture board")
	assert.Contains(t, report, "cost $50,000")
	assert.Contains(t, report, "Action plans\n")
	assert.Contains(t, report, "Mitigate replace of core")
	assert.Contains(t, report, "controller.decision_made")
}

func TestController_GenerateReportEmptySession(t *testing.T) {
	c := newTestController(t, false, ControllerDependencies{})

	report := c.GenerateReport()

	assert.Contains(t, report, "Score: 100/100 (healthy)")
	assert.Contains(t, report, "Decisions\n  none\n")
	assert.NotContains(t, report, "Action plans")
}
