package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tripsplit/internal/models"
)

// CreateEvent inserts a calendar event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, group_id, name, event_date, location) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.GroupID, event.Name, formatDate(event.Date), event.Location,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// ListEventsByGroup returns a group's events ordered by date.
func (s *SQLiteStore) ListEventsByGroup(ctx context.Context, groupID string) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, name, event_date, location FROM events WHERE group_id = ? ORDER BY event_date",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		var date string
		if err := rows.Scan(&event.ID, &event.GroupID, &event.Name, &date, &event.Location); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if event.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse event date: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
