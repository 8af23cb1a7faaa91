package country

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-itinerary-planner/internal/refdata"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

const (
	customRouteName   = "Custom Route"
	cityPipelineLimit = 4
)

type Service interface {
	ListCountries(ctx context.Context) []types.CountrySummary
	GetCountry(ctx context.Context, countryID string) (*types.CountrySummary, error)
	Allocations(ctx context.Context, req types.AllocationRequest) (*types.AllocationResponse, error)
	GenerateCountryItinerary(ctx context.Context, req types.CountryItineraryRequest) (*types.CountryItineraryResponse, error)
}

// ItineraryGenerator runs the single-city pipeline. itinerary.Service
// satisfies it.
type ItineraryGenerator interface {
	Generate(ctx context.Context, req types.GenerateItineraryRequest) (*types.Itinerary, error)
}

// CountryLookup resolves a country id to its reference profile.
type CountryLookup func(id string) (types.CountryProfile, bool)

type ServiceImpl struct {
	logger      *slog.Logger
	planner     *Planner
	itineraries ItineraryGenerator
	lookup      CountryLookup
}

func NewServiceImpl(itineraries ItineraryGenerator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		planner:     NewPlanner(),
		itineraries: itineraries,
		lookup:      refdata.Country,
	}
}

func (s *ServiceImpl) country(id string) (types.CountryProfile, error) {
	c, ok := s.lookup(strings.ToLower(strings.TrimSpace(id)))
	if !ok {
		return types.CountryProfile{}, fmt.Errorf("%q: %w", id, types.ErrUnknownCountry)
	}
	return c, nil
}

func (s *ServiceImpl) ListCountries(_ context.Context) []types.CountrySummary {
	return refdata.ListCountries()
}

func (s *ServiceImpl) GetCountry(ctx context.Context, countryID string) (*types.CountrySummary, error) {
	_, span := otel.Tracer("CountryService").Start(ctx, "GetCountry", trace.WithAttributes(
		attribute.String("country.id", countryID),
	))
	defer span.End()

	c, err := s.country(countryID)
	if err != nil {
		span.SetStatus(codes.Error, "unknown country")
		return nil, err
	}
	summary := refdata.Summarize(c)
	span.SetStatus(codes.Ok, "")
	return &summary, nil
}

// Allocations returns the alternative ways of splitting the trip days across
// the cities of a country.
func (s *ServiceImpl) Allocations(ctx context.Context, req types.AllocationRequest) (*types.AllocationResponse, error) {
	ctx, span := otel.Tracer("CountryService").Start(ctx, "Allocations", trace.WithAttributes(
		attribute.String("country.id", req.Country),
		attribute.Int("trip.days", req.TotalDays),
		attribute.String("trip.group_type", string(req.GroupType)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Allocations"), slog.String("country", req.Country))

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	c, err := s.country(req.Country)
	if err != nil {
		span.SetStatus(codes.Error, "unknown country")
		return nil, err
	}

	options, recommended, err := s.planner.GenerateOptions(c, req)
	if err != nil {
		l.WarnContext(ctx, "No allocation fits the request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocation failed")
		return nil, fmt.Errorf("failed to allocate days for %s: %w", c.Name, err)
	}

	l.InfoContext(ctx, "Allocation options generated", slog.Int("options", len(options)), slog.Int("recommended", recommended))
	span.SetAttributes(attribute.Int("allocation.options", len(options)))
	span.SetStatus(codes.Ok, "")
	return &types.AllocationResponse{
		Country:          c.Name,
		TotalDays:        req.TotalDays,
		Options:          options,
		RecommendedIndex: recommended,
		TravelTips:       c.TravelTips,
	}, nil
}

// GenerateCountryItinerary plans every city of the chosen allocation. City
// pipelines run concurrently; a city without usable POIs gets an empty plan
// and a note instead of failing the trip.
func (s *ServiceImpl) GenerateCountryItinerary(ctx context.Context, req types.CountryItineraryRequest) (*types.CountryItineraryResponse, error) {
	ctx, span := otel.Tracer("CountryService").Start(ctx, "GenerateCountryItinerary", trace.WithAttributes(
		attribute.String("country.id", req.Country),
		attribute.String("trip.start_date", req.StartDate.String()),
		attribute.String("trip.end_date", req.EndDate.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateCountryItinerary"), slog.String("country", req.Country))

	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate.Time) {
		span.SetStatus(codes.Error, "invalid dates")
		return nil, fmt.Errorf("start_date must be on or before end_date: %w", types.ErrInvalidRequest)
	}
	totalDays := int(req.EndDate.Sub(req.StartDate.Time).Hours()/24) + 1
	req.TotalDays = totalDays

	c, err := s.country(req.Country)
	if err != nil {
		span.SetStatus(codes.Error, "unknown country")
		return nil, err
	}

	allocation, optionName, err := s.chooseAllocation(ctx, c, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocation failed")
		return nil, err
	}

	vibes := make([]types.Vibe, 0, len(req.Vibes))
	for _, v := range req.Vibes {
		vibes = append(vibes, types.Vibe(v))
	}

	cities := make([]types.CityItinerarySummary, len(allocation))
	cursor := req.StartDate
	for i, a := range allocation {
		end := cursor.AddDays(a.Days - 1)
		cities[i] = types.CityItinerarySummary{
			CityID:    a.CityID,
			CityName:  a.CityName,
			StartDate: cursor,
			EndDate:   end,
			Days:      a.Days,
			DayPlans:  []types.DayPlan{},
		}
		cursor = end.AddDays(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cityPipelineLimit)
	for i := range cities {
		city := &cities[i]
		g.Go(func() error {
			it, err := s.itineraries.Generate(gctx, types.GenerateItineraryRequest{
				TripRequest: types.TripRequest{
					DestinationCity: city.CityName,
					StartDate:       city.StartDate,
					EndDate:         city.EndDate,
					GroupType:       req.GroupType,
					GroupSize:       req.GroupSize,
					HasKids:         req.HasKids,
					HasSeniors:      req.HasSeniors,
					Vibes:           vibes,
					BudgetLevel:     req.BudgetLevel,
					Pacing:          req.Pacing,
				},
			})
			switch {
			case err == nil:
				city.ItineraryID = &it.ID
				city.DayPlans = it.Days
				return nil
			case errors.Is(err, types.ErrNoCandidates), errors.Is(err, types.ErrNoPOIsPassedFilters):
				l.WarnContext(gctx, "No POIs for city", slog.String("city", city.CityName), slog.Any("error", err))
				city.Note = fmt.Sprintf("No POIs available for %s yet", city.CityName)
				return nil
			default:
				return fmt.Errorf("failed to plan %s: %w", city.CityName, err)
			}
		})
	}
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "City pipeline failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "city pipeline failed")
		return nil, err
	}

	totalTravel := 0
	for i := 0; i+1 < len(cities); i++ {
		next := allocation[i+1]
		minutes := c.TravelTime(allocation[i].CityID, next.CityID)
		if next.TravelTimeMinutes != nil {
			minutes = *next.TravelTimeMinutes
		}
		if minutes >= types.UnknownTravelTime {
			continue
		}
		cities[i].TravelToNext = &types.InterCityTravel{
			FromCity:          cities[i].CityName,
			ToCity:            cities[i+1].CityName,
			TravelTimeMinutes: minutes,
			Date:              cities[i+1].StartDate,
		}
		totalTravel += minutes
	}

	l.InfoContext(ctx, "Country itinerary generated", slog.Int("cities", len(cities)), slog.Int("days", totalDays))
	span.SetStatus(codes.Ok, "")
	return &types.CountryItineraryResponse{
		Country:            c.Name,
		OptionName:         optionName,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		TotalDays:          totalDays,
		Cities:             cities,
		TotalTravelMinutes: totalTravel,
		TravelTips:         c.TravelTips,
	}, nil
}

// chooseAllocation prefers an explicit allocation, then an option selected by
// id or name prefix, then the first generated option.
func (s *ServiceImpl) chooseAllocation(ctx context.Context, c types.CountryProfile, req types.CountryItineraryRequest) ([]types.CityAllocation, string, error) {
	if len(req.SelectedAllocation) > 0 {
		alloc := make([]types.CityAllocation, 0, len(req.SelectedAllocation))
		days := 0
		for _, a := range req.SelectedAllocation {
			city, ok := c.City(a.CityID)
			if !ok || a.Days < 1 {
				return nil, "", fmt.Errorf("invalid city %q in selected allocation: %w", a.CityID, types.ErrInvalidRequest)
			}
			if a.CityName == "" {
				a.CityName = city.Name
			}
			days += a.Days
			alloc = append(alloc, a)
		}
		if days != req.TotalDays {
			return nil, "", fmt.Errorf("selected allocation covers %d days, trip has %d: %w", days, req.TotalDays, types.ErrInvalidRequest)
		}
		attachLegs(c, alloc)
		return alloc, customRouteName, nil
	}

	if req.GroupType == "" {
		return nil, "", fmt.Errorf("group_type is required: %w", types.ErrInvalidRequest)
	}
	options, _, err := s.planner.GenerateOptions(c, req.AllocationRequest)
	if err != nil {
		s.logger.WarnContext(ctx, "No allocation for country itinerary", slog.Any("error", err))
		return nil, "", fmt.Errorf("failed to allocate days for %s: %w", c.Name, err)
	}

	chosen := options[0]
	if sel := normalizeOptionName(req.SelectedOptionID); sel != "" {
		for _, o := range options {
			if o.OptionID == req.SelectedOptionID || strings.HasPrefix(normalizeOptionName(o.Name), sel) {
				chosen = o
				break
			}
		}
	}
	return chosen.Cities, chosen.Name, nil
}

func normalizeOptionName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
