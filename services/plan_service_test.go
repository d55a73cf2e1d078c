package services

import (
	"context"
	"testing"

	"github.com/GrainArc/TrialMap/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanServiceAfterImport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	importer := NewExperimentImportService(NewGormStore(db), nil, &recordingMessenger{}, logger.Nop())

	first, err := importer.ImportExperiment(ctx, document("Plan one",
		feature(`{"plot_id":1,"Serial":"S1","treatment":"N0"}`, validSquare),
		feature(`{"plot_id":2,"Serial":"S2","treatment":"N1"}`, validSquare),
	))
	require.NoError(t, err)
	_, err = importer.ImportExperiment(ctx, document("Plan two"))
	require.NoError(t, err)

	svc := NewPlanService(db)

	plans, err := svc.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Plan one", plans[0].Name)
	assert.Equal(t, int64(2), plans[0].PlotCount)
	assert.Equal(t, int64(0), plans[1].PlotCount)
	assert.NotEmpty(t, plans[0].UUID)

	plots, err := svc.PlanPlots(ctx, first.PlanID)
	require.NoError(t, err)
	require.Len(t, plots, 2)
	assert.Equal(t, "ID: 002 Serial: S2", plots[1].Name)

	fc, err := svc.PlanFeatureCollection(ctx, first.PlanID)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "N1", fc.Features[1].Properties["treatment"])
	assert.Equal(t, "Polygon", fc.Features[0].Geometry.GeoJSONType())
}

func TestPlanServiceNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanService(db)

	_, err := svc.PlanPlots(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.PlanFeatureCollection(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
