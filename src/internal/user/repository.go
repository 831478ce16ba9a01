package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/clients"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	regexKey   = "$regex"
	optionsKey = "$options"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetAllUsers(ctx context.Context, req *GetAllUsersRequest) ([]*User, int64, error)
	SetRole(ctx context.Context, id, role string, at time.Time) error
	GetUserStats(ctx context.Context, companyCode string, monthStart time.Time) (*models.Stats, error)
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(mongoClient *clients.MongoDB, collectionName string) Repository {
	return newRepository(mongoClient.Database.Collection(collectionName))
}

func newRepository(collection *mongo.Collection) *userRepository {
	return &userRepository{collection: collection}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	opts := options.FindOne().SetProjection(bson.M{"password": 0})

	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", id).Error("Failed to get user")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}

	return &user, nil
}

func (r *userRepository) GetAllUsers(ctx context.Context, req *GetAllUsersRequest) ([]*User, int64, error) {
	filter := bson.M{"companyCode": req.CompanyCode}

	if req.Role != "" {
		filter["role"] = req.Role
	}

	if req.Search != "" {
		pattern := regexp.QuoteMeta(req.Search)
		filter["$or"] = []bson.M{
			{"name": bson.M{regexKey: pattern, optionsKey: "i"}},
			{"email": bson.M{regexKey: pattern, optionsKey: "i"}},
		}
	}

	totalCount, err := r.countUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetLimit(int64(req.Limit)).
		SetSkip(int64(req.Skip)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"password": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find users")
		return nil, 0, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	defer cursor.Close(ctx)

	users := make([]*User, 0)
	for cursor.Next(ctx) {
		var user User
		if err := cursor.Decode(&user); err != nil {
			logrus.WithError(err).Error("Failed to decode user")
			continue
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, 0, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}

	logrus.WithFields(logrus.Fields{
		"company_code": req.CompanyCode,
		"count":        len(users),
		"total":        totalCount,
		"page":         req.Page,
		"limit":        req.Limit,
	}).Debug("Retrieved users successfully")

	return users, totalCount, nil
}

func (r *userRepository) SetRole(ctx context.Context, id, role string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"role":      role,
			"updatedAt": at,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to update user role")
		return fmt.Errorf("%w: %v", models.ErrDatabaseUpdate, err)
	}
	if result.MatchedCount == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) GetUserStats(ctx context.Context, companyCode string, monthStart time.Time) (*models.Stats, error) {
	base := bson.M{"companyCode": companyCode}

	total, err := r.countUsers(ctx, base)
	if err != nil {
		return nil, err
	}

	approved, err := r.countUsersByRoles(ctx, companyCode, RoleUser, RoleAdmin, RoleSuperAdmin)
	if err != nil {
		return nil, err
	}

	pending, err := r.countUsersByRoles(ctx, companyCode, RoleUnauthorized)
	if err != nil {
		return nil, err
	}

	admins, err := r.countUsersByRoles(ctx, companyCode, RoleAdmin, RoleSuperAdmin)
	if err != nil {
		return nil, err
	}

	newThisMonth, err := r.countUsers(ctx, bson.M{
		"companyCode": companyCode,
		"createdAt":   bson.M{"$gte": monthStart},
	})
	if err != nil {
		return nil, err
	}

	return &models.Stats{
		CompanyCode:  companyCode,
		Total:        total,
		Approved:     approved,
		Pending:      pending,
		Admins:       admins,
		NewThisMonth: newThisMonth,
	}, nil
}

func (r *userRepository) countUsers(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count users")
		return 0, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return count, nil
}

func (r *userRepository) countUsersByRoles(ctx context.Context, companyCode string, roles ...string) (int64, error) {
	filter := bson.M{
		"companyCode": companyCode,
		"role":        bson.M{"$in": roles},
	}
	return r.countUsers(ctx, filter)
}
