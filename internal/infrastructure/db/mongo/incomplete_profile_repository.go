package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

const incompleteProfilesCollection = "incomplete_profiles"

// IncompleteProfileRepository keeps one document per (email, role) with the
// latest failure and a count of how many times the profile step failed.
type IncompleteProfileRepository struct {
	coll *mongo.Collection
}

func NewIncompleteProfileRepository(db *mongo.Database) *IncompleteProfileRepository {
	return &IncompleteProfileRepository{coll: db.Collection(incompleteProfilesCollection)}
}

var _ ports.IncompleteProfileRepository = (*IncompleteProfileRepository)(nil)

// EnsureIndexes creates the unique (email, role) index. Safe to call on every start.
func (r *IncompleteProfileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "role", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_role"),
	})
	if err != nil {
		return fmt.Errorf("create %s index: %w", incompleteProfilesCollection, err)
	}
	return nil
}

func (r *IncompleteProfileRepository) Record(ctx context.Context, rec *domain.IncompleteProfile) error {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	filter := bson.M{"email": rec.Email, "role": string(rec.Role)}
	update := bson.M{
		"$set": bson.M{
			"mobile":         rec.Mobile,
			"stage":          rec.Stage,
			"reason":         rec.Reason,
			"backend_status": rec.BackendStatus,
			"recorded_at":    recordedAt,
			"resolved":       false,
		},
		"$setOnInsert": bson.M{"first_recorded_at": recordedAt},
		"$inc":         bson.M{"attempts": 1},
	}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("record incomplete profile: %w", err)
	}
	return nil
}
