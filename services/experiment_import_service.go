package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/GrainArc/TrialMap/logger"
	"github.com/GrainArc/TrialMap/methods"
	"github.com/GrainArc/TrialMap/models"
	"gorm.io/datatypes"
)

// GeometryConverter turns a serialized GeoJSON Feature into WKT.
type GeometryConverter interface {
	ToWKT(featureJSON []byte) (string, error)
}

type GeometryConverterFunc func(featureJSON []byte) (string, error)

func (f GeometryConverterFunc) ToWKT(featureJSON []byte) (string, error) {
	return f(featureJSON)
}

// ImportResult summarises one import. Skipped holds the features that were
// not created; Created never counts them.
type ImportResult struct {
	PlanID   uint            `json:"plan_id"`
	PlanName string          `json:"plan_name"`
	Total    int             `json:"total"`
	Created  int             `json:"created"`
	Skipped  []*FeatureError `json:"-"`
}

type experimentDocument struct {
	CRS      interface{}       `json:"crs"`
	Features []json.RawMessage `json:"features"`
}

// planName walks crs.properties.name; any other shape yields "".
func (d *experimentDocument) planName() string {
	crs, _ := d.CRS.(map[string]interface{})
	props, _ := crs["properties"].(map[string]interface{})
	name, _ := props["name"].(string)
	return strings.TrimSpace(name)
}

type ExperimentImportService struct {
	store     EntityStore
	geometry  GeometryConverter
	messenger Messenger
	log       *logger.Logger
}

// NewExperimentImportService wires the pipeline. A nil geometry converter
// falls back to methods.FeatureToWKT.
func NewExperimentImportService(store EntityStore, geometry GeometryConverter, messenger Messenger, log *logger.Logger) *ExperimentImportService {
	if geometry == nil {
		geometry = GeometryConverterFunc(methods.FeatureToWKT)
	}
	return &ExperimentImportService{
		store:     store,
		geometry:  geometry,
		messenger: messenger,
		log:       log.With("component", "experiment_import"),
	}
}

// PlotName formats the display name of an imported plot.
func PlotName(plotID int, serial string) string {
	return fmt.Sprintf("ID: %03d Serial: %s", plotID, serial)
}

// ImportExperiment creates one plan from the document's CRS name and one plot
// per feature. A returned error means nothing past the failure point was
// written; per-feature failures are reported in the result instead.
func (s *ExperimentImportService) ImportExperiment(ctx context.Context, contents []byte) (*ImportResult, error) {
	data, charset, err := methods.NormalizeEncoding(contents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if charset != "UTF-8" {
		s.log.Info("transcoded upload", "charset", charset)
	}

	var doc experimentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	name := doc.planName()
	if name == "" {
		return nil, fmt.Errorf("%w: crs.properties.name is absent", ErrMissingPlanMetadata)
	}

	plan := &models.Plan{Name: name, Status: models.StatusActive}
	planID, err := s.store.Create(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", name, asPersistence(err))
	}
	s.log.Info("created plan", "plan_id", planID, "name", name, "features", len(doc.Features))

	result := &ImportResult{PlanID: planID, PlanName: name, Total: len(doc.Features)}
	for i, raw := range doc.Features {
		if err := s.importFeature(ctx, planID, raw); err != nil {
			result.Skipped = append(result.Skipped, &FeatureError{Index: i, Err: err})
			s.log.Warn("skipping feature", "plan_id", planID, "index", i, "error", err)
			continue
		}
		result.Created++
	}

	s.log.Info("import finished", "plan_id", planID, "created", result.Created, "skipped", len(result.Skipped))
	s.messenger.Notify(ctx, Message{
		Type:      MessageStatus,
		Text:      fmt.Sprintf("Created %d features.", result.Created),
		PlanID:    planID,
		Count:     result.Created,
		CreatedAt: time.Now(),
	})
	if len(result.Skipped) > 0 {
		s.messenger.Notify(ctx, Message{
			Type:      MessageWarning,
			Text:      fmt.Sprintf("Skipped %d of %d features.", len(result.Skipped), result.Total),
			PlanID:    planID,
			Count:     len(result.Skipped),
			CreatedAt: time.Now(),
		})
	}
	return result, nil
}

func (s *ExperimentImportService) importFeature(ctx context.Context, planID uint, raw json.RawMessage) error {
	geometry, err := s.geometry.ToWKT(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeometryConversion, err)
	}

	var feature struct {
		Properties map[string]interface{} `json:"properties"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&feature); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingFeatureProperties, err)
	}

	plotID, err := plotIDProperty(feature.Properties)
	if err != nil {
		return err
	}
	serial, err := serialProperty(feature.Properties)
	if err != nil {
		return err
	}

	// Unknown types are left blank; the WKT itself is what gets stored.
	geometryType, _ := methods.WKTGeometryType(geometry)

	properties, err := json.Marshal(feature.Properties)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingFeatureProperties, err)
	}

	plot := &models.Plot{
		PlanID:       planID,
		Name:         PlotName(plotID, serial),
		PlotNumber:   plotID,
		Serial:       serial,
		Geometry:     geometry,
		GeometryType: geometryType,
		IsFixed:      true,
		IsLocation:   true,
		Status:       models.StatusActive,
		Properties:   datatypes.JSON(properties),
	}
	if _, err := s.store.Create(ctx, plot); err != nil {
		return asPersistence(err)
	}
	return nil
}

func plotIDProperty(props map[string]interface{}) (int, error) {
	var (
		n   int64
		err error
	)
	switch v := props["plot_id"].(type) {
	case json.Number:
		n, err = v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return 0, fmt.Errorf("%w: plot_id %s is not an integer", ErrMissingFeatureProperties, v)
			}
			n, err = int64(f), nil
		}
	case string:
		n, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: plot_id %q is not an integer", ErrMissingFeatureProperties, v)
		}
	case nil:
		return 0, fmt.Errorf("%w: plot_id is absent", ErrMissingFeatureProperties)
	default:
		return 0, fmt.Errorf("%w: plot_id has unsupported type %T", ErrMissingFeatureProperties, v)
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: plot_id %d is out of range", ErrMissingFeatureProperties, n)
	}
	return int(n), nil
}

func serialProperty(props map[string]interface{}) (string, error) {
	switch v := props["Serial"].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("%w: Serial is empty", ErrMissingFeatureProperties)
		}
		return v, nil
	case json.Number:
		return formatSerialNumber(v)
	case nil:
		return "", fmt.Errorf("%w: Serial is absent", ErrMissingFeatureProperties)
	default:
		return "", fmt.Errorf("%w: Serial has unsupported type %T", ErrMissingFeatureProperties, v)
	}
}

// formatSerialNumber prints a numeric Serial in plain decimal, so 1e3 becomes "1000".
func formatSerialNumber(v json.Number) (string, error) {
	if n, err := v.Int64(); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	f, err := v.Float64()
	if err != nil || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: Serial %s is not a usable number", ErrMissingFeatureProperties, v)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func asPersistence(err error) error {
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
