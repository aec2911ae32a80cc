package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/loenard97/weather-crawler/internal/providers/geocode"
	"github.com/loenard97/weather-crawler/internal/types"
)

var (
	ErrEmptyPlace         = errors.New("place name is empty")
	ErrNoCandidates       = errors.New("no coordinates found for place")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Service resolves place names to coordinates
type Service interface {
	// Resolve returns the best ranked candidate for the place
	Resolve(ctx context.Context, place string) (types.Coordinates, error)
}

// SearchProvider defines the interface for forward geocoding providers
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]geocode.SearchResult, error)
}

// candidate carries the checks applied to the chosen search result only
type candidate struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

// locationService implements the Service interface
type locationService struct {
	searchProvider SearchProvider
	validate       *validator.Validate
	logger         *slog.Logger
}

// NewLocationService creates a new location service backed by a geocode client
func NewLocationService(client *geocode.Client, logger *slog.Logger) Service {
	return NewLocationServiceWithProvider(client, logger)
}

// NewLocationServiceWithProvider creates a new location service with a custom provider
// This is useful for testing with mock providers
func NewLocationServiceWithProvider(searchProvider SearchProvider, logger *slog.Logger) Service {
	return &locationService{
		searchProvider: searchProvider,
		validate:       validator.New(),
		logger:         logger.With("component", "location-service"),
	}
}

func (s *locationService) Resolve(ctx context.Context, place string) (types.Coordinates, error) {
	if strings.TrimSpace(place) == "" {
		return types.Coordinates{}, ErrEmptyPlace
	}

	results, err := s.searchProvider.Search(ctx, place)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("failed to search place %q: %w", place, err)
	}
	if len(results) == 0 {
		return types.Coordinates{}, fmt.Errorf("%w: %q", ErrNoCandidates, place)
	}

	// Later candidates are discarded unchecked.
	first := results[0]
	if err := s.validate.Struct(candidate{Lat: first.Lat, Lon: first.Lon}); err != nil {
		return types.Coordinates{}, fmt.Errorf("%w for %q: %v", ErrInvalidCoordinates, place, err)
	}

	s.logger.Info("resolved place",
		"place", place,
		"display_name", first.DisplayName,
		"latitude", first.Lat,
		"longitude", first.Lon,
		"discarded_candidates", len(results)-1,
	)

	return translateSearchResult(first), nil
}

// translateSearchResult converts a geocoding candidate to domain Coordinates
func translateSearchResult(r geocode.SearchResult) types.Coordinates {
	return types.NewCoordinates(r.Lat, r.Lon)
}
