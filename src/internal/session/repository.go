package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rishipandey14/HRMS-Backend/src/clients"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type repository struct {
	collection *mongo.Collection
}

type Repository interface {
	Create(ctx context.Context, session *Session) error
	// FindOpen returns the open session of (subjectID, scopeID); subjectID is nil for companies.
	FindOpen(ctx context.Context, subjectID *string, scopeID string) (*Session, error)
	// Save persists the close of an open session. It reports ErrSessionNotFound when the
	// session was closed concurrently.
	Save(ctx context.Context, session *Session) error
	EnsureIndexes(ctx context.Context) error
}

func NewSessionRepository(db *clients.MongoDB, collectionName string) Repository {
	return newRepository(db.Database.Collection(collectionName))
}

func newRepository(collection *mongo.Collection) *repository {
	return &repository{collection: collection}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"session_id": session.ID.Hex(),
			"company_id": session.CompanyID,
		}).Error("Failed to create session")
		return fmt.Errorf("%w: %v", models.ErrDatabaseInsert, err)
	}

	return nil
}

func (r *repository) FindOpen(ctx context.Context, subjectID *string, scopeID string) (*Session, error) {
	var session Session
	filter := openFilter(subjectID, scopeID)
	opts := options.FindOne().SetSort(bson.D{{Key: "login_at", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrSessionNotFound
		}
		logrus.WithError(err).WithField("company_id", scopeID).Error("Failed to find open session")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}

	return &session, nil
}

func (r *repository) Save(ctx context.Context, session *Session) error {
	filter := bson.M{
		"_id":       session.ID,
		"logout_at": nil,
	}

	update := bson.M{
		"$set": bson.M{
			"logout_at":      session.LogoutAt,
			"duration_hours": session.DurationHours,
			"updated_at":     session.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("session_id", session.ID.Hex()).Error("Failed to save session")
		return fmt.Errorf("%w: %v", models.ErrDatabaseUpdate, err)
	}
	if result.MatchedCount == 0 {
		logrus.WithField("session_id", session.ID.Hex()).Warn("Session was already closed")
		return models.ErrSessionNotFound
	}

	return nil
}

func (r *repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "logout_at", Value: 1}}},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "login_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("%w: session indexes: %v", models.ErrDatabaseQuery, err)
	}
	return nil
}

func openFilter(subjectID *string, scopeID string) bson.M {
	filter := bson.M{
		"company_id": scopeID,
		"logout_at":  nil,
	}
	if subjectID != nil {
		filter["user_id"] = *subjectID
	} else {
		filter["user_id"] = nil
	}
	return filter
}
