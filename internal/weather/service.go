package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loenard97/weather-crawler/internal/providers/openmeteo"
	"github.com/loenard97/weather-crawler/internal/types"
)

var (
	// ErrMissingField is returned when a schema field is absent or null.
	ErrMissingField = errors.New("missing field")
	// ErrFieldType is returned when a field cannot be decoded as its Kind.
	ErrFieldType = errors.New("unexpected field type")
)

type CurrentProvider interface {
	// GetCurrent fetches current conditions for the given coordinates and variables
	GetCurrent(ctx context.Context, latitude, longitude string, variables []string) (*openmeteo.CurrentAPIResponse, error)
}

type Service interface {
	Current(ctx context.Context, coords types.Coordinates) (*Reading, error)
}

type weatherService struct {
	currentProvider CurrentProvider
	variables       []string
	logger          *slog.Logger
}

func NewWeatherService(client *openmeteo.ForecastClient, logger *slog.Logger) Service {
	return NewWeatherServiceWithProvider(client, logger)
}

func NewWeatherServiceWithProvider(currentProvider CurrentProvider, logger *slog.Logger) Service {
	return &weatherService{
		currentProvider: currentProvider,
		variables:       CurrentVariables(),
		logger:          logger.With("component", "weather-service"),
	}
}

func (s *weatherService) Current(ctx context.Context, coords types.Coordinates) (*Reading, error) {
	apiResponse, err := s.currentProvider.GetCurrent(ctx, coords.Latitude, coords.Longitude, s.variables)
	if err != nil {
		s.logger.Debug("failed to get current weather from provider",
			"latitude", coords.Latitude,
			"longitude", coords.Longitude,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get current weather: %w", err)
	}

	reading, err := mapCurrentAPIResponseToReading(coords, apiResponse)
	if err != nil {
		s.logger.Debug("current weather response does not match schema", "error", err)
		return nil, err
	}

	s.logger.Debug("fetched current weather",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"time", reading.Time,
		"timezone", reading.Timezone,
	)

	return reading, nil
}

func mapCurrentAPIResponseToReading(coords types.Coordinates, resp *openmeteo.CurrentAPIResponse) (*Reading, error) {
	if resp == nil {
		return nil, fmt.Errorf("current weather response is nil")
	}
	if resp.Timezone == "" {
		return nil, fmt.Errorf("timezone: %w", ErrMissingField)
	}

	var ts int64
	if err := decodeRaw(resp.Current["time"], &ts); err != nil {
		return nil, fmt.Errorf("current.time: %w", err)
	}

	reading := &Reading{
		Coordinates: coords,
		Time:        time.Unix(ts, 0).UTC(),
		Timezone:    resp.Timezone,
		Values:      make(map[string]float64, len(Fields)),
	}

	for _, f := range Fields {
		var raw json.RawMessage
		var path string
		switch f.Source {
		case SourceMeta:
			raw, path = resp.Raw[f.Variable], f.Variable
		case SourceCurrent:
			raw, path = resp.Current[f.Variable], "current."+f.Variable
		}

		v, err := decodeField(raw, f.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		reading.Values[f.Variable] = v
	}

	return reading, nil
}

// decodeField decodes a raw JSON value according to kind and widens it to float64.
// Floats are parsed from the JSON text directly so 14.2 stays 14.2.
func decodeField(raw json.RawMessage, kind Kind) (float64, error) {
	switch kind {
	case KindUint8:
		var v uint8
		if err := decodeRaw(raw, &v); err != nil {
			return 0, err
		}
		return float64(v), nil
	default:
		var v float64
		if err := decodeRaw(raw, &v); err != nil {
			return 0, err
		}
		return v, nil
	}
}

func decodeRaw(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ErrMissingField
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s", ErrFieldType, err)
	}
	return nil
}
