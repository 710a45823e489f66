package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

type modelBuilder struct {
	t     *testing.T
	model *aggregates.Model
	rels  int
}

func newModelBuilder(t *testing.T) *modelBuilder {
	return &modelBuilder{t: t, model: aggregates.NewModel("test")}
}

func (b *modelBuilder) element(id, name string, elementType valueobjects.ElementType, layer valueobjects.Layer) *modelBuilder {
	b.t.Helper()
	element, err := entities.NewElement(valueobjects.ElementID(id), name, elementType, layer)
	require.NoError(b.t, err)
	require.NoError(b.t, b.model.AddElement(element))
	return b
}

func (b *modelBuilder) app(id string) *modelBuilder {
	return b.element(id, id, valueobjects.ElementApplicationComponent, valueobjects.LayerApplication)
}

func (b *modelBuilder) relate(source, target string, relType valueobjects.RelationshipType) *modelBuilder {
	b.t.Helper()
	b.rels++
	rel, err := entities.NewRelationship(
		valueobjects.RelationshipID(fmt.Sprintf("rel-%d", b.rels)),
		valueobjects.ElementID(source),
		valueobjects.ElementID(target),
		relType,
	)
	require.NoError(b.t, err)
	require.NoError(b.t, b.model.AddRelationship(rel))
	return b
}

func (b *modelBuilder) build() *aggregates.Model {
	return b.model
}

func byRule(insights []entities.Insight, rule string) []entities.Insight {
	var matched []entities.Insight
	for _, insight := range insights {
		if insight.Rule == rule {
			matched = append(matched, insight)
		}
	}
	return matched
}

func TestAnalyze_TwoOrphansScenario(t *testing.T) {
	model := newModelBuilder(t).
		app("S1").
		element("S2", "S2", valueobjects.ElementBusinessService, valueobjects.LayerBusiness).
		build()

	insights, err := NewAnalyzer().Analyze(model)
	require.NoError(t, err)

	require.Len(t, insights, 6)
	missing := byRule(insights, RuleMissingLayer)
	require.Len(t, missing, 4)
	for _, insight := range missing {
		assert.Equal(t, valueobjects.SeverityMedium, insight.Severity)
		assert.Equal(t, valueobjects.InsightGap, insight.Type)
	}
	assert.Equal(t, []valueobjects.Layer{valueobjects.LayerStrategy}, missing[0].AffectedLayers)

	orphans := byRule(insights, RuleOrphanElement)
	require.Len(t, orphans, 2)
	assert.Equal(t, []valueobjects.ElementID{"S1"}, orphans[0].AffectedElements)
	assert.Equal(t, []valueobjects.ElementID{"S2"}, orphans[1].AffectedElements)
	assert.Equal(t, valueobjects.SeverityLow, orphans[0].Severity)
	assert.Empty(t, byRule(insights, RuleWeakAlignment))
}

func TestAnalyze_MissingLayersCount(t *testing.T) {
	tests := []struct {
		name   string
		build  func(b *modelBuilder)
		expect int
	}{
		{"empty model", func(b *modelBuilder) {}, 6},
		{"one layer", func(b *modelBuilder) { b.app("a") }, 5},
		{"motivation does not count", func(b *modelBuilder) {
			b.element("m", "goal", valueobjects.ElementGoal, valueobjects.LayerMotivation)
		}, 6},
		{"three layers", func(b *modelBuilder) {
			b.app("a").
				element("b", "svc", valueobjects.ElementBusinessService, valueobjects.LayerBusiness).
				element("c", "host", valueobjects.ElementNode, valueobjects.LayerTechnology)
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newModelBuilder(t)
			tt.build(b)

			insights, err := NewAnalyzer().Analyze(b.build(), KindGaps)
			require.NoError(t, err)
			assert.Len(t, byRule(insights, RuleMissingLayer), tt.expect)
		})
	}
}

func TestAnalyze_OrphansOnlyForUnconnected(t *testing.T) {
	model := newModelBuilder(t).
		app("a").app("b").app("c").
		relate("a", "b", valueobjects.RelationshipFlow).
		build()

	insights, err := NewAnalyzer().Analyze(model, KindGaps)
	require.NoError(t, err)

	orphans := byRule(insights, RuleOrphanElement)
	require.Len(t, orphans, 1)
	assert.Equal(t, []valueobjects.ElementID{"c"}, orphans[0].AffectedElements)
}

func TestAnalyze_WeakAlignment(t *testing.T) {
	t.Run("fires when few application elements serve business", func(t *testing.T) {
		model := newModelBuilder(t).
			app("a1").app("a2").app("a3").
			element("b1", "billing", valueobjects.ElementBusinessService, valueobjects.LayerBusiness).
			relate("a1", "b1", valueobjects.RelationshipServing).
			relate("a2", "a3", valueobjects.RelationshipFlow).
			build()

		insights, err := NewAnalyzer().Analyze(model, KindGaps)
		require.NoError(t, err)

		weak := byRule(insights, RuleWeakAlignment)
		require.Len(t, weak, 1)
		assert.Equal(t, valueobjects.SeverityHigh, weak[0].Severity)
		assert.Equal(t, []valueobjects.ElementID{"a1", "a2", "a3"}, weak[0].AffectedElements)
	})

	t.Run("silent when half serve business", func(t *testing.T) {
		model := newModelBuilder(t).
			app("a1").app("a2").
			element("b1", "billing", valueobjects.ElementBusinessService, valueobjects.LayerBusiness).
			relate("a1", "b1", valueobjects.RelationshipServing).
			build()

		insights, err := NewAnalyzer().Analyze(model, KindGaps)
		require.NoError(t, err)
		assert.Empty(t, byRule(insights, RuleWeakAlignment))
	})

	t.Run("skipped without application layer", func(t *testing.T) {
		model := newModelBuilder(t).
			element("b1", "billing", valueobjects.ElementBusinessService, valueobjects.LayerBusiness).
			build()

		insights, err := NewAnalyzer().Analyze(model, KindGaps)
		require.NoError(t, err)
		assert.Empty(t, byRule(insights, RuleWeakAlignment))
	})
}

func TestAnalyze_ThreeNodeCycle(t *testing.T) {
	model := newModelBuilder(t).
		app("A").app("B").app("C").
		relate("A", "B", valueobjects.RelationshipFlow).
		relate("B", "C", valueobjects.RelationshipFlow).
		relate("C", "A", valueobjects.RelationshipFlow).
		build()

	insights, err := NewAnalyzer().Analyze(model, KindDependencies)
	require.NoError(t, err)

	cycles := byRule(insights, RuleCycle)
	require.Len(t, cycles, 1)
	assert.Equal(t, valueobjects.SeverityHigh, cycles[0].Severity)
	assert.ElementsMatch(t, []valueobjects.ElementID{"A", "B", "C"}, cycles[0].AffectedElements)
	assert.Equal(t, []valueobjects.Layer{valueobjects.LayerApplication}, cycles[0].AffectedLayers)
}

func TestFindCycles(t *testing.T) {
	t.Run("rotation is normalized", func(t *testing.T) {
		model := newModelBuilder(t).
			app("z").app("m").app("a").
			relate("z", "m", valueobjects.RelationshipFlow).
			relate("m", "a", valueobjects.RelationshipFlow).
			relate("a", "z", valueobjects.RelationshipFlow).
			build()

		cycles := FindCycles(model)
		require.Len(t, cycles, 1)
		assert.Equal(t, []valueobjects.ElementID{"a", "z", "m"}, cycles[0])
	})

	t.Run("distinct cycles sharing a node", func(t *testing.T) {
		model := newModelBuilder(t).
			app("a").app("b").app("c").
			relate("a", "b", valueobjects.RelationshipFlow).
			relate("b", "a", valueobjects.RelationshipFlow).
			relate("a", "c", valueobjects.RelationshipFlow).
			relate("c", "a", valueobjects.RelationshipFlow).
			build()

		cycles := FindCycles(model)
		assert.Equal(t, [][]valueobjects.ElementID{{"a", "b"}, {"a", "c"}}, cycles)
	})

	t.Run("acyclic graph", func(t *testing.T) {
		model := newModelBuilder(t).
			app("a").app("b").app("c").
			relate("a", "b", valueobjects.RelationshipFlow).
			relate("a", "c", valueobjects.RelationshipFlow).
			relate("b", "c", valueobjects.RelationshipFlow).
			build()

		assert.Empty(t, FindCycles(model))
	})
}

func TestAnalyze_HighCoupling(t *testing.T) {
	b := newModelBuilder(t).app("hub")
	for i := 0; i < 11; i++ {
		id := fmt.Sprintf("spoke-%d", i)
		b.app(id).relate(id, "hub", valueobjects.RelationshipServing)
	}

	insights, err := NewAnalyzer().Analyze(b.build(), KindDependencies)
	require.NoError(t, err)

	coupling := byRule(insights, RuleHighCoupling)
	require.Len(t, coupling, 1)
	assert.Equal(t, []valueobjects.ElementID{"hub"}, coupling[0].AffectedElements)
	assert.Equal(t, valueobjects.SeverityMedium, coupling[0].Severity)
}

func TestAnalyze_Patterns(t *testing.T) {
	b := newModelBuilder(t).
		element("biz", "sales", valueobjects.ElementBusinessProcess, valueobjects.LayerBusiness).
		element("host", "cluster", valueobjects.ElementNode, valueobjects.LayerTechnology)
	for i := 0; i < 6; i++ {
		b.app(fmt.Sprintf("svc-%d", i))
	}
	b.relate("svc-0", "svc-1", valueobjects.RelationshipFlow)

	insights, err := NewAnalyzer().Analyze(b.build(), KindPatterns)
	require.NoError(t, err)

	layered := byRule(insights, RuleLayered)
	require.Len(t, layered, 1)
	assert.Equal(t, valueobjects.SeverityInfo, layered[0].Severity)
	assert.Len(t, layered[0].AffectedLayers, 3)

	micro := byRule(insights, RuleMicroservices)
	require.Len(t, micro, 1)
	assert.Len(t, micro[0].AffectedElements, 6)
}

func TestAnalyze_NoMicroservicesAtFiveComponents(t *testing.T) {
	b := newModelBuilder(t)
	for i := 0; i < 5; i++ {
		b.app(fmt.Sprintf("svc-%d", i))
	}

	insights, err := NewAnalyzer().Analyze(b.build(), KindPatterns)
	require.NoError(t, err)
	assert.Empty(t, byRule(insights, RuleMicroservices))
	assert.Empty(t, byRule(insights, RuleLayered))
}

func TestAnalyze_Redundancy(t *testing.T) {
	model := newModelBuilder(t).
		element("crm-1", "CRM", valueobjects.ElementApplicationComponent, valueobjects.LayerApplication).
		element("crm-2", "CRM", valueobjects.ElementApplicationComponent, valueobjects.LayerApplication).
		element("crm-3", "CRM", valueobjects.ElementApplicationService, valueobjects.LayerApplication).
		build()

	insights, err := NewAnalyzer().Analyze(model, KindOptimization)
	require.NoError(t, err)

	require.Len(t, insights, 1)
	assert.Equal(t, RulePotentialReuse, insights[0].Rule)
	assert.Equal(t, valueobjects.SeverityLow, insights[0].Severity)
	assert.Equal(t, 0.6, insights[0].Confidence)
	assert.Equal(t, []valueobjects.ElementID{"crm-1", "crm-2"}, insights[0].AffectedElements)
}

func TestAnalyze_KindOrderAndValidation(t *testing.T) {
	model := newModelBuilder(t).
		element("crm-1", "CRM", valueobjects.ElementApplicationComponent, valueobjects.LayerApplication).
		element("crm-2", "CRM", valueobjects.ElementApplicationComponent, valueobjects.LayerApplication).
		build()

	insights, err := NewAnalyzer().Analyze(model, KindOptimization, KindGaps)
	require.NoError(t, err)
	require.NotEmpty(t, insights)
	assert.Equal(t, valueobjects.InsightGap, insights[0].Type)
	assert.Equal(t, valueobjects.InsightOptimization, insights[len(insights)-1].Type)

	_, err = NewAnalyzer().Analyze(model, Kind("security"))
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAssessChangeImpact(t *testing.T) {
	hub := func(spokes int) *aggregates.Model {
		b := newModelBuilder(t).
			element("hub", "hub", valueobjects.ElementNode, valueobjects.LayerTechnology)
		for i := 0; i < spokes; i++ {
			id := fmt.Sprintf("spoke-%d", i)
			b.app(id).relate(id, "hub", valueobjects.RelationshipServing)
		}
		return b.build()
	}

	tests := []struct {
		name       string
		spokes     int
		changeType ChangeType
		severity   valueobjects.Severity
		firstRec   string
		approval   bool
	}{
		{"low", 2, ChangeModify, valueobjects.SeverityLow, "Regression test dependent elements", false},
		{"medium", 3, ChangeRemove, valueobjects.SeverityMedium, "Migrate dependencies first", false},
		{"high", 6, ChangeReplace, valueobjects.SeverityHigh, "Ensure interface compatibility", true},
		{"critical", 11, ChangeRemove, valueobjects.SeverityCritical, "Migrate dependencies first", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewAnalyzer().AssessChangeImpact(hub(tt.spokes), "hub", tt.changeType)
			require.NoError(t, err)

			assert.Equal(t, tt.spokes, result.DirectlyAffected)
			assert.Equal(t, tt.severity, result.Severity)
			assert.Equal(t, tt.firstRec, result.Recommendations[0])
			assert.Equal(t, tt.approval, result.RequiresApproval)
			assert.Equal(t, []valueobjects.Layer{valueobjects.LayerApplication}, result.AffectedLayers)
			assert.Len(t, result.AffectedElements, tt.spokes)
		})
	}
}

func TestAssessChangeImpact_Errors(t *testing.T) {
	model := newModelBuilder(t).app("a").build()
	analyzer := NewAnalyzer()

	_, err := analyzer.AssessChangeImpact(model, "missing", ChangeRemove)
	assert.True(t, pkgerrors.IsUnknownElement(err))

	_, err = analyzer.AssessChangeImpact(model, "a", ChangeType("rename"))
	assert.True(t, pkgerrors.IsValidation(err))
}
