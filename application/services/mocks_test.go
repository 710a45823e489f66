package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	"archintel/domain/events"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordDecision(decisionType, confidence, reasoningSource string) {
	m.Called(decisionType, confidence, reasoningSource)
}

func (m *mockMetrics) RecordInsights(insights []entities.Insight) {
	m.Called(insights)
}

func (m *mockMetrics) RecordHealth(sessionID string, score int) {
	m.Called(sessionID, score)
}

func (m *mockMetrics) RecordActivity(action string) {
	m.Called(action)
}

func (m *mockMetrics) RecordAnalysisDuration(seconds float64) {
	m.Called(seconds)
}

// permissiveMetrics accepts every call
func permissiveMetrics() *mockMetrics {
	m := new(mockMetrics)
	m.On("RecordDecision", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("RecordInsights", mock.Anything).Maybe()
	m.On("RecordHealth", mock.Anything, mock.Anything).Maybe()
	m.On("RecordActivity", mock.Anything).Maybe()
	m.On("RecordAnalysisDuration", mock.Anything).Maybe()
	return m
}

func newTestController(t *testing.T, autonomous bool, deps ControllerDependencies) *Controller {
	t.Helper()
	c, err := NewController("test-session", autonomous, deps)
	require.NoError(t, err)
	return c
}

func addElement(t *testing.T, c *Controller, id string, elementType valueobjects.ElementType, layer valueobjects.Layer) {
	t.Helper()
	element, err := entities.NewElement(valueobjects.ElementID(id), id, elementType, layer)
	require.NoError(t, err)
	require.NoError(t, c.AddElement(context.Background(), element))
}

func addApp(t *testing.T, c *Controller, id string) {
	addElement(t, c, id, valueobjects.ElementApplicationComponent, valueobjects.LayerApplication)
}

func relate(t *testing.T, c *Controller, id, source, target string) {
	t.Helper()
	rel, err := entities.NewRelationship(
		valueobjects.RelationshipID(id),
		valueobjects.ElementID(source),
		valueobjects.ElementID(target),
		valueobjects.RelationshipServing,
	)
	require.NoError(t, err)
	require.NoError(t, c.AddRelationship(context.Background(), rel))
}

// hub adds a hub element related to n spokes
func hub(t *testing.T, c *Controller, id string, n int) {
	addApp(t, c, id)
	for i := 0; i < n; i++ {
		spoke := fmt.Sprintf("%s-spoke-%d", id, i)
		addApp(t, c, spoke)
		relate(t, c, fmt.Sprintf("%s-rel-%d", id, i), spoke, id)
	}
}
