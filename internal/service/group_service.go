package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/apperr"
	"tripsplit/internal/models"
	"tripsplit/internal/storage"
)

// GroupService manages trip groups and their member rosters. The roster
// is the authority every membership check consults.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// GroupInput is the payload for creating a group. MemberEmails are
// resolved to accounts; emails with no account are silently skipped.
type GroupInput struct {
	Name         string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	Image        []byte
	MemberEmails []string
}

// MemberView is a roster entry as shown to clients.
type MemberView struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// GroupSummary is the list-view shape of a group.
type GroupSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ExpenseSummary is a group detail's condensed view of one expense.
type ExpenseSummary struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	SpentAt string          `json:"spentAt"`
}

// GroupDetail is the full view of a group: roster plus expense
// summaries, newest spent date first.
type GroupDetail struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	Members     []MemberView     `json:"members"`
	Expenses    []ExpenseSummary `json:"expenses"`
}

// Create makes a new group with the creator on the roster. Invited
// emails that match an account join the roster too; unknown emails are
// skipped rather than rejected, so one bad address does not sink the
// whole trip.
func (s *GroupService) Create(ctx context.Context, creatorID string, in GroupInput) (*GroupDetail, error) {
	memberIDs := []string{creatorID}
	seen := map[string]bool{creatorID: true}
	for _, email := range in.MemberEmails {
		user, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			slog.Error("Create group: member lookup failed", "email", email, "error", err)
			return nil, apperr.Internal(err)
		}
		if user == nil || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		memberIDs = append(memberIDs, user.ID)
	}

	group := &models.Group{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Image:       in.Image,
	}
	if err := s.store.CreateGroup(ctx, group, memberIDs); err != nil {
		slog.Error("Create group failed", "name", in.Name, "error", err)
		return nil, apperr.Internal(err)
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(memberIDs))
	return s.detail(ctx, group)
}

// Get returns the full group view. Only members may see it.
func (s *GroupService) Get(ctx context.Context, groupID, userID string) (*GroupDetail, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.detail(ctx, group)
}

// Rename changes a group's display name. Members only.
func (s *GroupService) Rename(ctx context.Context, groupID, userID, name string) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}
	if err := s.store.UpdateGroupName(ctx, groupID, name); err != nil {
		slog.Error("Rename group failed", "group_id", groupID, "error", err)
		return apperr.Internal(err)
	}
	return nil
}

// UpdateMembers replaces the roster with the accounts behind the given
// emails. The requester stays on the roster regardless, so a user
// cannot lock themselves out by omission.
func (s *GroupService) UpdateMembers(ctx context.Context, groupID, userID string, emails []string) (*GroupDetail, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	memberIDs := []string{userID}
	seen := map[string]bool{userID: true}
	for _, email := range emails {
		user, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			slog.Error("Update members: lookup failed", "email", email, "error", err)
			return nil, apperr.Internal(err)
		}
		if user == nil || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		memberIDs = append(memberIDs, user.ID)
	}

	if err := s.store.ReplaceGroupMembers(ctx, groupID, memberIDs); err != nil {
		slog.Error("Update members failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}
	return s.detail(ctx, group)
}

// ListByUser returns summaries of every group the user belongs to.
func (s *GroupService) ListByUser(ctx context.Context, userID string) ([]GroupSummary, error) {
	groups, err := s.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		slog.Error("List groups failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, GroupSummary{
			ID:        g.ID,
			Name:      g.Name,
			StartDate: g.StartDate.Format("2006-01-02"),
			EndDate:   g.EndDate.Format("2006-01-02"),
		})
	}
	return summaries, nil
}

func (s *GroupService) getGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		slog.Error("Group lookup failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}
	return group, nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID string) error {
	member, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		slog.Error("Membership check failed", "group_id", groupID, "user_id", userID, "error", err)
		return apperr.Internal(err)
	}
	if !member {
		return apperr.Forbidden("only group members may access this group")
	}
	return nil
}

func (s *GroupService) detail(ctx context.Context, group *models.Group) (*GroupDetail, error) {
	users, err := s.store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		slog.Error("List group members failed", "group_id", group.ID, "error", err)
		return nil, apperr.Internal(err)
	}

	members := make([]MemberView, 0, len(users))
	for _, u := range users {
		members = append(members, MemberView{UserID: u.ID, Name: u.Name, Email: u.Email})
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("List group expenses failed", "group_id", group.ID, "error", err)
		return nil, apperr.Internal(err)
	}
	summaries := make([]ExpenseSummary, 0, len(expenses))
	for _, e := range expenses {
		summaries = append(summaries, ExpenseSummary{
			ID:      e.ID,
			Name:    e.Name,
			Amount:  e.Amount,
			SpentAt: e.SpentAt.Format("2006-01-02"),
		})
	}

	return &GroupDetail{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		StartDate:   group.StartDate.Format("2006-01-02"),
		EndDate:     group.EndDate.Format("2006-01-02"),
		Members:     members,
		Expenses:    summaries,
	}, nil
}
