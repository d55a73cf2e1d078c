package methods

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GrainArc/TrialMap/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

// FeatureToWKT extracts the geometry of a serialized GeoJSON Feature and
// returns it as well-known text.
func FeatureToWKT(featureJSON []byte) (string, error) {
	feature, err := geojson.UnmarshalFeature(featureJSON)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	if err := ValidateGeometry(feature.Geometry); err != nil {
		return "", err
	}
	return wkt.MarshalString(feature.Geometry), nil
}

// WKTGeometryType returns the GeoJSON type name ("Polygon", "Point", ...) of a WKT string.
func WKTGeometryType(s string) (string, error) {
	geom, err := wkt.Unmarshal(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	return geom.GeoJSONType(), nil
}

// ValidateGeometry rejects geometries that cannot describe a plot.
func ValidateGeometry(geom orb.Geometry) error {
	switch g := geom.(type) {
	case nil:
		return fmt.Errorf("%w: feature has no geometry", ErrInvalidGeometry)
	case orb.Point:
		return nil
	case orb.MultiPoint:
		if len(g) == 0 {
			return fmt.Errorf("%w: empty multipoint", ErrInvalidGeometry)
		}
	case orb.LineString:
		if len(g) < 2 {
			return fmt.Errorf("%w: line string needs at least 2 positions, got %d", ErrInvalidGeometry, len(g))
		}
	case orb.MultiLineString:
		if len(g) == 0 {
			return fmt.Errorf("%w: empty multilinestring", ErrInvalidGeometry)
		}
		for _, ls := range g {
			if err := ValidateGeometry(ls); err != nil {
				return err
			}
		}
	case orb.Polygon:
		if len(g) == 0 {
			return fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
		}
		for _, ring := range g {
			if err := validateRing(ring); err != nil {
				return err
			}
		}
	case orb.MultiPolygon:
		if len(g) == 0 {
			return fmt.Errorf("%w: empty multipolygon", ErrInvalidGeometry)
		}
		for _, p := range g {
			if err := ValidateGeometry(p); err != nil {
				return err
			}
		}
	case orb.Collection:
		if len(g) == 0 {
			return fmt.Errorf("%w: empty geometry collection", ErrInvalidGeometry)
		}
		for _, member := range g {
			if err := ValidateGeometry(member); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unsupported geometry type %s", ErrInvalidGeometry, geom.GeoJSONType())
	}
	return nil
}

func validateRing(ring orb.Ring) error {
	if len(ring) < 4 {
		return fmt.Errorf("%w: ring needs at least 4 positions, got %d", ErrInvalidGeometry, len(ring))
	}
	if !ring.Closed() {
		return fmt.Errorf("%w: ring is not closed", ErrInvalidGeometry)
	}
	return nil
}

// PlotsToFeatureCollection converts stored plots back into GeoJSON. The stored
// feature properties are kept and the plot's own columns are layered on top.
func PlotsToFeatureCollection(plots []models.Plot) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, plot := range plots {
		geom, err := wkt.Unmarshal(plot.Geometry)
		if err != nil {
			return nil, fmt.Errorf("plot %d: %w: %v", plot.ID, ErrInvalidGeometry, err)
		}
		feature := geojson.NewFeature(geom)
		feature.ID = plot.ID
		if len(plot.Properties) > 0 {
			props := make(map[string]interface{})
			if err := json.Unmarshal(plot.Properties, &props); err != nil {
				return nil, fmt.Errorf("plot %d: invalid stored properties: %w", plot.ID, err)
			}
			for key, value := range props {
				feature.Properties[key] = value
			}
		}
		feature.Properties["id"] = plot.ID
		feature.Properties["plan_id"] = plot.PlanID
		feature.Properties["name"] = plot.Name
		feature.Properties["status"] = plot.Status
		fc.Append(feature)
	}
	return fc, nil
}
