package uptime

import (
	"context"

	"github.com/rishipandey14/HRMS-Backend/src/internal/calendar"
	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/pagination"

	"github.com/sirupsen/logrus"
)

// Role constants recognised by uptime queries
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "sadmin"
)

func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// Query describes an uptime read. Admins see their whole company; everybody else only
// their own records.
type Query struct {
	Requester identity.Identity
	Role      string
	UserID    string
	CompanyID string
	Week      string
	SortField string
	Order     string
	All       bool
	Page      pagination.Params
}

// WantsList reports whether the query returns a paginated list rather than one record.
func (q Query) WantsList() bool {
	return q.All || IsAdmin(q.Role)
}

type ListResult struct {
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
	Uptimes []*Uptime `json:"uptimes"`
}

type Service interface {
	List(ctx context.Context, q Query) (*ListResult, error)
	// Latest returns the record for q.Week, or the most recent one when no week is given.
	Latest(ctx context.Context, q Query) (*Uptime, error)
}

type uptimeService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &uptimeService{repo: repo}
}

func (s *uptimeService) List(ctx context.Context, q Query) (*ListResult, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	uptimes, err := s.repo.Find(ctx, filter, findOptions(q, q.Page.Skip, q.Page.Limit))
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"company_id": filter.CompanyID,
		"user_id":    filter.UserID,
		"week":       filter.Week,
		"total":      total,
		"returned":   len(uptimes),
	}).Debug("Listed uptimes")

	return &ListResult{
		Total:   total,
		Page:    q.Page.Page,
		Limit:   q.Page.Limit,
		Uptimes: uptimes,
	}, nil
}

func (s *uptimeService) Latest(ctx context.Context, q Query) (*Uptime, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	uptimes, err := s.repo.Find(ctx, filter, findOptions(q, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(uptimes) == 0 {
		return nil, models.ErrUptimeNotFound
	}

	return uptimes[0], nil
}

func buildFilter(q Query) (Filter, error) {
	if q.Requester == nil {
		return Filter{}, models.ErrInvalidParams
	}
	if q.Week != "" && !calendar.ValidWeek(q.Week) {
		return Filter{}, models.ErrInvalidWeek
	}

	filter := Filter{Week: q.Week}
	scope := q.Requester.ScopeID()

	if !IsAdmin(q.Role) {
		if subject, ok := q.Requester.SubjectID(); ok {
			filter.UserID = subject
		} else {
			filter.CompanyID = scope
		}
		return filter, nil
	}

	companyID := q.CompanyID
	if companyID == "" {
		companyID = scope
	}
	if companyID != scope {
		return Filter{}, models.ErrForbidden
	}

	filter.CompanyID = companyID
	filter.UserID = q.UserID
	return filter, nil
}

func findOptions(q Query, skip, limit int) FindOptions {
	sortField := q.SortField
	if _, ok := sortFields[sortField]; !ok {
		sortField = "week"
	}
	return FindOptions{
		SortField: sortField,
		Ascending: q.Order == "asc",
		Skip:      skip,
		Limit:     limit,
	}
}
