package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mandap-rentals/mandap-server/internal/listview"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
	"github.com/mandap-rentals/mandap-server/internal/shared"
)

// Service implements customer register rules.
type Service struct {
	logger *slog.Logger
	repo   Repository
	audit  *shared.AuditLogger
	view   *listview.View[CustomerWithFlags]
}

// NewService constructs a Service. audit may be nil in tests.
func NewService(logger *slog.Logger, repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		audit:  audit,
		view: listview.New(map[string]listview.Column[CustomerWithFlags]{
			"name":   {Text: func(c CustomerWithFlags) string { return c.Name }},
			"mobile": {Text: func(c CustomerWithFlags) string { return c.Mobile }},
			"pal": {Text: func(c CustomerWithFlags) string {
				return strings.Join(c.PalNumbers, " ")
			}},
		}),
	}
}

// List returns active customers with derived flags, filtered and sorted.
func (s *Service) List(ctx context.Context, q listview.Query) ([]CustomerWithFlags, error) {
	base, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	flags, err := s.repo.LoadFlagSets(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]CustomerWithFlags, 0, len(base))
	for _, c := range base {
		rows = append(rows, CustomerWithFlags{Customer: c, Flags: flagsFor(c.ID, flags)})
	}
	return s.view.Apply(rows, q), nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a customer. Mobile numbers are unique across the register.
func (s *Service) Create(ctx context.Context, actorID int64, in CustomerInput) (Customer, error) {
	in = normalize(in)
	if _, err := s.repo.FindByMobile(ctx, in.Mobile); err == nil {
		return Customer{}, fmt.Errorf("%w: mobile %s already registered", httpx.ErrDuplicate, in.Mobile)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return Customer{}, err
	}
	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return Customer{}, err
	}
	s.recordAudit(ctx, actorID, "create", created)
	return created, nil
}

// Update replaces customer fields. When Active is omitted the current value
// is kept.
func (s *Service) Update(ctx context.Context, actorID, id int64, in CustomerInput) (Customer, error) {
	in = normalize(in)
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if in.Mobile != current.Mobile {
		if other, err := s.repo.FindByMobile(ctx, in.Mobile); err == nil && other.ID != id {
			return Customer{}, fmt.Errorf("%w: mobile %s already registered", httpx.ErrDuplicate, in.Mobile)
		} else if err != nil && !errors.Is(err, httpx.ErrNotFound) {
			return Customer{}, err
		}
	}
	active := current.Active
	if in.Active != nil {
		active = *in.Active
	}
	if in.PalNumbers == nil {
		in.PalNumbers = current.PalNumbers
	}
	updated, err := s.repo.Update(ctx, id, in, active)
	if err != nil {
		return Customer{}, err
	}
	s.recordAudit(ctx, actorID, "update", updated)
	return updated, nil
}

// Delete soft-deletes a customer. Blocked while the customer has open rental
// orders or bills with an outstanding balance.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	hasOrders, err := s.repo.HasActiveOrders(ctx, id)
	if err != nil {
		return err
	}
	if hasOrders {
		return fmt.Errorf("%w: customer has active rental orders", httpx.ErrConflict)
	}
	hasBills, err := s.repo.HasPendingBills(ctx, id)
	if err != nil {
		return err
	}
	if hasBills {
		return fmt.Errorf("%w: customer has unpaid bills", httpx.ErrConflict)
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	current.Active = false
	s.recordAudit(ctx, actorID, "delete", current)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, c Customer) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "customer",
		EntityID: strconv.FormatInt(c.ID, 10),
		Snapshot: c,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit customer", slog.String("action", action), slog.Any("error", err))
	}
}

func normalize(in CustomerInput) CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.AlternateContact = strings.TrimSpace(in.AlternateContact)
	in.Address = strings.TrimSpace(in.Address)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.PalNumbers != nil {
		seen := make(map[string]struct{}, len(in.PalNumbers))
		cleaned := make([]string, 0, len(in.PalNumbers))
		for _, pal := range in.PalNumbers {
			pal = strings.TrimSpace(pal)
			if pal == "" {
				continue
			}
			if _, dup := seen[pal]; dup {
				continue
			}
			seen[pal] = struct{}{}
			cleaned = append(cleaned, pal)
		}
		in.PalNumbers = cleaned
	}
	return in
}

func flagsFor(id int64, fs FlagSets) Flags {
	has := func(m map[int64]struct{}) bool {
		_, ok := m[id]
		return ok
	}
	return Flags{
		HasRentalOrders:   has(fs.AnyOrders),
		HasActiveOrders:   has(fs.ActiveOrders),
		HasUnbilledOrders: has(fs.UnbilledOrders),
		HasBilledOrders:   has(fs.BilledOrders),
		HasPendingBills:   has(fs.PendingBills),
	}
}
