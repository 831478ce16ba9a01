package user

import (
	"context"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/clock"
	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/pagination"

	"github.com/sirupsen/logrus"
)

type Service interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetAllUsers(ctx context.Context, req *GetAllUsersRequest) (*GetAllUsersResponse, error)
	GetUserStats(ctx context.Context, companyCode string) (*models.Stats, error)
	// ApproveUser applies an approve/reject decision of requester to a user of the same company.
	ApproveUser(ctx context.Context, requester identity.Identity, req *ApproveRequest) (*User, error)
}

type userService struct {
	userRepository Repository
	cfg            *config.Configuration
	clock          clock.Clock
}

func NewUserService(userRepository Repository, cfg *config.Configuration, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.System()
	}
	return &userService{
		userRepository: userRepository,
		cfg:            cfg,
		clock:          clk,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, models.ErrInvalidParams
	}
	return s.userRepository.GetByID(ctx, id)
}

func (s *userService) GetAllUsers(ctx context.Context, req *GetAllUsersRequest) (*GetAllUsersResponse, error) {
	if req.CompanyCode == "" {
		return nil, models.ErrInvalidParams
	}
	if req.Role != "" && !isValidRole(req.Role) {
		return nil, models.ErrInvalidParams
	}

	logrus.WithFields(logrus.Fields{
		"company_code": req.CompanyCode,
		"page":         req.Page,
		"limit":        req.Limit,
		"role":         req.Role,
		"search":       req.Search,
	}).Debug("Getting all users")

	users, totalCount, err := s.userRepository.GetAllUsers(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to get users from repository")
		return nil, err
	}

	response := &GetAllUsersResponse{
		Users:      users,
		TotalCount: totalCount,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: pagination.TotalPages(totalCount, req.Limit),
	}

	logrus.WithFields(logrus.Fields{
		"users_count": len(users),
		"total_count": totalCount,
		"total_pages": response.TotalPages,
	}).Info("Successfully retrieved users")

	return response, nil
}

func (s *userService) GetUserStats(ctx context.Context, companyCode string) (*models.Stats, error) {
	if companyCode == "" {
		return nil, models.ErrInvalidParams
	}
	logrus.WithField("company_code", companyCode).Debug("Getting user statistics")

	stats, err := s.userRepository.GetUserStats(ctx, companyCode, s.monthStart())
	if err != nil {
		logrus.WithError(err).Error("Failed to get user stats from repository")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"company_code": companyCode,
		"total":        stats.Total,
		"approved":     stats.Approved,
		"pending":      stats.Pending,
		"newThisMonth": stats.NewThisMonth,
	}).Info("Successfully retrieved user statistics")

	return stats, nil
}

func (s *userService) ApproveUser(ctx context.Context, requester identity.Identity, req *ApproveRequest) (*User, error) {
	role, ok := roleForAction(req.Action)
	if !ok {
		return nil, models.ErrInvalidAction
	}
	if req.UserID == "" {
		return nil, models.ErrInvalidParams
	}

	user, err := s.userRepository.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.CompanyCode != requester.ScopeID() {
		logrus.WithFields(logrus.Fields{
			"requester": requester.Key(),
			"user_id":   user.ID,
		}).Warn("Approval across companies rejected")
		return nil, models.ErrForbidden
	}

	now := s.clock.Now()
	if err := s.userRepository.SetRole(ctx, user.ID, role, now); err != nil {
		return nil, err
	}
	user.Role = role
	user.UpdatedAt = now

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"action":  req.Action,
		"role":    role,
	}).Info("User approval updated")

	return user, nil
}

func (s *userService) monthStart() time.Time {
	now := s.clock.Now().In(s.cfg.App.Location())
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func roleForAction(action string) (string, bool) {
	switch action {
	case ActionApprove:
		return RoleUser, true
	case ActionReject:
		return RoleUnauthorized, true
	}
	return "", false
}

// isValidRole validates if role is valid
func isValidRole(role string) bool {
	validRoles := []string{RoleUser, RoleAdmin, RoleSuperAdmin, RoleUnauthorized}
	for _, validRole := range validRoles {
		if validRole == role {
			return true
		}
	}
	return false
}
