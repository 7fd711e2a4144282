package transport

import (
	"time"

	"github.com/google/uuid"
)

// DashboardResponse is the admin console's headline stats.
type DashboardResponse struct {
	Users         int64            `json:"users"`
	Providers     int64            `json:"providers"`
	Services      int64            `json:"services"`
	Bookings      int64            `json:"bookings"`
	Revenue       float64          `json:"revenue"`
	LeadsByStatus map[string]int64 `json:"leadsByStatus"`
}

// ListUsersRequest filters the admin user list.
type ListUsersRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// UserResponse is an account row in the admin user list.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	IsProvider    bool      `json:"isProvider"`
	IsAdmin       bool      `json:"isAdmin"`
	CompletedJobs int       `json:"completedJobs"`
	LeadBalance   float64   `json:"leadBalance"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserListResponse wraps a paginated admin user list.
type UserListResponse struct {
	Items    []UserResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
