package methods

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/GrainArc/TrialMap/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const squareFeature = `{
	"type": "Feature",
	"properties": {"plot_id": 7, "Serial": "AB12"},
	"geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}
}`

func TestFeatureToWKT(t *testing.T) {
	got, err := FeatureToWKT([]byte(squareFeature))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "POLYGON"), got)

	geom, err := wkt.Unmarshal(got)
	require.NoError(t, err)
	want := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	assert.True(t, orb.Equal(want, geom))
}

func TestFeatureToWKTRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name    string
		feature string
	}{
		{name: "not json", feature: `{"type": "Feature",`},
		{name: "null geometry", feature: `{"type":"Feature","properties":{},"geometry":null}`},
		{name: "ring too short", feature: `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}`},
		{name: "ring not closed", feature: `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}}`},
		{name: "single point line", feature: `{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0]]}}`},
		{name: "not a feature", feature: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FeatureToWKT([]byte(tt.feature))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGeometry)
		})
	}
}

func TestFeatureToWKTPoint(t *testing.T) {
	got, err := FeatureToWKT([]byte(`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1.5,2.5]}}`))
	require.NoError(t, err)

	typ, err := WKTGeometryType(got)
	require.NoError(t, err)
	assert.Equal(t, "Point", typ)
}

func TestValidateMultiPolygon(t *testing.T) {
	good := orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}
	assert.NoError(t, ValidateGeometry(good))
	assert.ErrorIs(t, ValidateGeometry(orb.MultiPolygon{}), ErrInvalidGeometry)
	assert.ErrorIs(t, ValidateGeometry(orb.MultiPolygon{{{{0, 0}, {1, 0}}}}), ErrInvalidGeometry)
}

func TestPlotsToFeatureCollection(t *testing.T) {
	plots := []models.Plot{
		{
			ID:         3,
			PlanID:     1,
			Name:       "ID: 007 Serial: AB12",
			Geometry:   "POLYGON((0 0,10 0,10 10,0 10,0 0))",
			Status:     models.StatusActive,
			Properties: datatypes.JSON(`{"plot_id":7,"Serial":"AB12","treatment":"N2"}`),
		},
		{ID: 4, PlanID: 1, Name: "ID: 008 Serial: AB13", Geometry: "POINT(1 2)", Status: models.StatusActive},
	}

	fc, err := PlotsToFeatureCollection(plots)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "Polygon", first.Geometry.GeoJSONType())
	assert.Equal(t, "N2", first.Properties["treatment"])
	assert.Equal(t, "ID: 007 Serial: AB12", first.Properties["name"])
	assert.Equal(t, uint(1), first.Properties["plan_id"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}

func TestPlotsToFeatureCollectionBadWKT(t *testing.T) {
	_, err := PlotsToFeatureCollection([]models.Plot{{ID: 1, Geometry: "POLYGON(("}})
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}
