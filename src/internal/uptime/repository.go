package uptime

import (
	"context"
	"fmt"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/clients"
	"github.com/rishipandey14/HRMS-Backend/src/internal/calendar"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sort fields accepted by Find, keyed by their API name.
var sortFields = map[string]string{
	"week":      "week",
	"userId":    "user_id",
	"companyId": "company_id",
}

type Filter struct {
	UserID    string
	CompanyID string
	Week      string
}

type FindOptions struct {
	SortField string
	Ascending bool
	Skip      int
	Limit     int
}

type Repository interface {
	// AddHours atomically adds hours to one weekday bucket of the record addressed by key,
	// creating the record with zeroed buckets when missing and clamping the bucket to [0, maxHours].
	AddHours(ctx context.Context, key Key, day string, hours, maxHours float64, at time.Time) (*Uptime, error)
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]*Uptime, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type repository struct {
	collection *mongo.Collection
}

func NewRepository(db *clients.MongoDB, collectionName string) Repository {
	return newRepository(db.Database.Collection(collectionName))
}

func newRepository(collection *mongo.Collection) *repository {
	return &repository{collection: collection}
}

func (r *repository) AddHours(ctx context.Context, key Key, day string, hours, maxHours float64, at time.Time) (*Uptime, error) {
	if !calendar.IsDay(day) {
		return nil, fmt.Errorf("%w: unknown weekday %q", models.ErrInvalidParams, day)
	}

	filter := bson.M{
		"user_id":    key.UserID,
		"company_id": key.CompanyID,
		"week":       key.Week,
	}
	update := addHoursPipeline(day, hours, maxHours, at)
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var uptime Uptime
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&uptime)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-closes of the week raced on the upsert; the record exists now.
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&uptime)
	}
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":    key.UserID,
			"company_id": key.CompanyID,
			"week":       key.Week,
			"day":        day,
		}).Error("Failed to add uptime hours")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseUpdate, err)
	}

	return &uptime, nil
}

// addHoursPipeline builds an update pipeline that fills missing buckets with 0 and sets
// daily_hours.<day> = max(0, min(maxHours, current + hours)) in one server-side step.
func addHoursPipeline(day string, hours, maxHours float64, at time.Time) mongo.Pipeline {
	set := bson.D{}
	for _, d := range calendar.Days {
		current := bson.D{{Key: "$ifNull", Value: bson.A{"$daily_hours." + d, 0}}}
		value := interface{}(current)
		if d == day {
			sum := bson.D{{Key: "$add", Value: bson.A{current, hours}}}
			capped := bson.D{{Key: "$min", Value: bson.A{maxHours, sum}}}
			value = bson.D{{Key: "$max", Value: bson.A{0, capped}}}
		}
		set = append(set, bson.E{Key: "daily_hours." + d, Value: value})
	}
	set = append(set,
		bson.E{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", at}}}},
		bson.E{Key: "updated_at", Value: at},
	)

	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

func (r *repository) Find(ctx context.Context, filter Filter, opts FindOptions) ([]*Uptime, error) {
	sortField, ok := sortFields[opts.SortField]
	if !ok {
		sortField = "week"
	}
	direction := -1
	if opts.Ascending {
		direction = 1
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip(int64(opts.Skip))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := r.collection.Find(ctx, toBSON(filter), findOpts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find uptimes")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	defer cursor.Close(ctx)

	uptimes := make([]*Uptime, 0)
	if err := cursor.All(ctx, &uptimes); err != nil {
		logrus.WithError(err).Error("Failed to decode uptimes")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}

	logrus.WithFields(logrus.Fields{
		"count": len(uptimes),
		"skip":  opts.Skip,
		"limit": opts.Limit,
	}).Debug("Retrieved uptimes successfully")

	return uptimes, nil
}

func (r *repository) Count(ctx context.Context, filter Filter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		logrus.WithError(err).Error("Failed to count uptimes")
		return 0, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return count, nil
}

func (r *repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "company_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: uptime indexes: %v", models.ErrDatabaseQuery, err)
	}
	return nil
}

func toBSON(filter Filter) bson.M {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.CompanyID != "" {
		query["company_id"] = filter.CompanyID
	}
	if filter.Week != "" {
		query["week"] = filter.Week
	}
	return query
}
