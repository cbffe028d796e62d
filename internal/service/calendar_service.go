package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/apperr"
	"tripsplit/internal/models"
	"tripsplit/internal/storage"
)

// Calendar entry kinds.
const (
	EntryKindEvent   = "event"
	EntryKindExpense = "expense"
)

// CalendarEntry is one dated item on a group calendar. Events and
// expenses share this shape; Amount is set only for expenses.
type CalendarEntry struct {
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Date     string          `json:"date"`
	Location string          `json:"location,omitempty"`
	Amount   decimal.Decimal `json:"amount,omitempty"`
}

// EventInput is the payload for adding a calendar event.
type EventInput struct {
	Name     string
	Date     time.Time
	Location string
}

// CalendarService merges a group's events and expenses into one
// date-ordered calendar view.
type CalendarService struct {
	store storage.Store
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(store storage.Store) *CalendarService {
	return &CalendarService{store: store}
}

// AddEvent records a calendar event for a group. Members only.
func (s *CalendarService) AddEvent(ctx context.Context, groupID, userID string, in EventInput) (*models.Event, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	event := &models.Event{
		GroupID:  groupID,
		Name:     in.Name,
		Date:     in.Date,
		Location: in.Location,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		slog.Error("Create event failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}

	slog.Info("Event added", "event_id", event.ID, "group_id", groupID)
	return event, nil
}

// List returns the group's events and expenses as one slice sorted by
// date ascending. Entries on the same date keep events before expenses.
func (s *CalendarService) List(ctx context.Context, groupID, userID string) ([]CalendarEntry, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	events, err := s.store.ListEventsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("List events failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("List expenses for calendar failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}

	entries := make([]CalendarEntry, 0, len(events)+len(expenses))
	for _, e := range events {
		entries = append(entries, CalendarEntry{
			Kind:     EntryKindEvent,
			ID:       e.ID,
			Name:     e.Name,
			Date:     e.Date.Format("2006-01-02"),
			Location: e.Location,
		})
	}
	for _, e := range expenses {
		entries = append(entries, CalendarEntry{
			Kind:     EntryKindExpense,
			ID:       e.ID,
			Name:     e.Name,
			Date:     e.SpentAt.Format("2006-01-02"),
			Location: e.Location,
			Amount:   e.Amount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
	return entries, nil
}

func (s *CalendarService) requireMember(ctx context.Context, groupID, userID string) error {
	member, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		slog.Error("Calendar membership check failed", "group_id", groupID, "user_id", userID, "error", err)
		return apperr.Internal(err)
	}
	if !member {
		return apperr.Forbidden("only group members may view the calendar")
	}
	return nil
}
