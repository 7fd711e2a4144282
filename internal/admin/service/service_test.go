package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/admin/repository"
	"marketplace_backend/internal/admin/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	users         []repository.UserRow
	revenue       float64
	leadsByStatus map[string]int64
	deleted       []uuid.UUID
	statsErr      error
}

func (f *fakeRepo) CountUsers(context.Context) (int64, error) {
	if f.statsErr != nil {
		return 0, f.statsErr
	}
	return int64(len(f.users)), nil
}

func (f *fakeRepo) CountProviders(context.Context) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.IsProvider {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountServices(context.Context) (int64, error) { return 7, nil }
func (f *fakeRepo) CountBookings(context.Context) (int64, error) { return 12, nil }

func (f *fakeRepo) TotalRevenue(context.Context) (float64, error) {
	return f.revenue, nil
}

func (f *fakeRepo) LeadCountsByStatus(context.Context) (map[string]int64, error) {
	return f.leadsByStatus, nil
}

func (f *fakeRepo) ListUsers(_ context.Context, params repository.ListUsersParams) ([]repository.UserRow, int, error) {
	matched := make([]repository.UserRow, 0, len(f.users))
	for _, u := range f.users {
		if params.Search == "" || containsFold(u.Email, params.Search) || containsFold(u.FullName, params.Search) {
			matched = append(matched, u)
		}
	}
	total := len(matched)
	if params.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[params.Offset:]
	if params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}
	return matched, total, nil
}

func (f *fakeRepo) DeleteService(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type fakeModerator struct {
	removed []uuid.UUID
	err     error
}

func (f *fakeModerator) RemoveReview(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, id)
	return nil
}

func seedUsers(n int, providers int) []repository.UserRow {
	users := make([]repository.UserRow, n)
	for i := range users {
		users[i] = repository.UserRow{
			ID:         uuid.New(),
			Email:      fmt.Sprintf("user%d@example.com", i),
			FullName:   fmt.Sprintf("User %d", i),
			IsProvider: i < providers,
			CreatedAt:  time.Now(),
		}
	}
	return users
}

func TestDashboardAggregatesCounters(t *testing.T) {
	repo := &fakeRepo{
		users:   seedUsers(5, 2),
		revenue: 450.50,
		leadsByStatus: map[string]int64{
			"open":    3,
			"claimed": 1,
		},
	}
	svc := New(repo, &fakeModerator{}, logger.New("test"))

	resp, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if resp.Users != 5 || resp.Providers != 2 {
		t.Fatalf("expected 5 users / 2 providers, got %d / %d", resp.Users, resp.Providers)
	}
	if resp.Services != 7 || resp.Bookings != 12 {
		t.Fatalf("expected 7 services / 12 bookings, got %d / %d", resp.Services, resp.Bookings)
	}
	if resp.Revenue != 450.50 {
		t.Fatalf("expected revenue 450.50, got %v", resp.Revenue)
	}
	if resp.LeadsByStatus["open"] != 3 {
		t.Fatalf("expected 3 open leads, got %d", resp.LeadsByStatus["open"])
	}
}

func TestDashboardPropagatesFirstError(t *testing.T) {
	repo := &fakeRepo{statsErr: apperr.Internal("db down")}
	svc := New(repo, &fakeModerator{}, logger.New("test"))

	if _, err := svc.Dashboard(context.Background()); err == nil {
		t.Fatal("expected dashboard to fail when a counter fails")
	}
}

func TestListUsersClampsPaging(t *testing.T) {
	repo := &fakeRepo{users: seedUsers(30, 0)}
	svc := New(repo, &fakeModerator{}, logger.New("test"))

	resp, err := svc.ListUsers(context.Background(), transport.ListUsersRequest{Page: 0, PageSize: 500})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if resp.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", resp.Page)
	}
	if resp.PageSize != 100 {
		t.Fatalf("expected page size clamped to 100, got %d", resp.PageSize)
	}
	if resp.Total != 30 || len(resp.Items) != 30 {
		t.Fatalf("expected all 30 users, got total=%d items=%d", resp.Total, len(resp.Items))
	}
}

func TestListUsersSearch(t *testing.T) {
	repo := &fakeRepo{users: seedUsers(10, 0)}
	svc := New(repo, &fakeModerator{}, logger.New("test"))

	resp, err := svc.ListUsers(context.Background(), transport.ListUsersRequest{Search: "user3"})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Email != "user3@example.com" {
		t.Fatalf("expected exactly user3, got %+v", resp.Items)
	}
}

func TestRemoveReviewGoesThroughModerator(t *testing.T) {
	repo := &fakeRepo{}
	mod := &fakeModerator{}
	svc := New(repo, mod, logger.New("test"))

	id := uuid.New()
	if err := svc.RemoveReview(context.Background(), id); err != nil {
		t.Fatalf("remove review: %v", err)
	}
	if len(mod.removed) != 1 || mod.removed[0] != id {
		t.Fatalf("expected moderator called with %s, got %v", id, mod.removed)
	}
}

func TestRemoveServiceDeletesListing(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, &fakeModerator{}, logger.New("test"))

	id := uuid.New()
	if err := svc.RemoveService(context.Background(), id); err != nil {
		t.Fatalf("remove service: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != id {
		t.Fatalf("expected repo delete for %s, got %v", id, repo.deleted)
	}
}
