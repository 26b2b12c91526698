package events

import (
	"context"
	"log/slog"
)

// Service implements calendar operations over the Repository.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Event, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByYear(ctx context.Context, year int) ([]Event, error) {
	return s.repo.ListByYear(ctx, year)
}

func (s *Service) ListByType(ctx context.Context, raw string) ([]Event, error) {
	return s.repo.ListByType(ctx, ParseType(raw))
}

func (s *Service) Years(ctx context.Context) ([]int, error) {
	return s.repo.DistinctYears(ctx)
}

func (s *Service) Create(ctx context.Context, in EventInput) (Event, error) {
	event, err := s.repo.Create(ctx, Event{
		Name:        in.Name,
		Type:        ParseType(in.Type),
		Year:        in.Year,
		EventDate:   in.EventDate,
		Description: in.Description,
		Active:      true,
	})
	if err != nil {
		return Event{}, err
	}
	s.logger.Info("event created",
		slog.String("name", event.Name), slog.Int("year", event.Year))
	return event, nil
}

// Update replaces the event. Active is kept unless the input sets it.
func (s *Service) Update(ctx context.Context, id int64, in EventInput) (Event, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	event.Name = in.Name
	event.Type = ParseType(in.Type)
	event.Year = in.Year
	event.EventDate = in.EventDate
	event.Description = in.Description
	if in.Active != nil {
		event.Active = *in.Active
	}
	return s.repo.Update(ctx, event)
}

// Delete deactivates the event; the row stays for historical grouping.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
