package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/estiacrm/marketintel/config"
	"github.com/estiacrm/marketintel/models"
)

// MongoArchive stores each run's raw listings verbatim so a run can be
// re-normalized later without re-crawling the portal.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type archivedBatch struct {
	RunID          string              `bson:"run_id"`
	OrganizationID string              `bson:"organization_id"`
	Platform       string              `bson:"platform"`
	Listings       []models.RawListing `bson:"listings"`
	ArchivedAt     time.Time           `bson:"archived_at"`
}

func NewMongoArchive(ctx context.Context, cfg *config.MongoConfig) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &MongoArchive{
		client: client,
		coll:   client.Database(cfg.DBName).Collection(cfg.ArchiveColl),
	}, nil
}

func (m *MongoArchive) ArchiveBatch(ctx context.Context, runID, organizationID, platform string, raws []models.RawListing) error {
	if len(raws) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.coll.InsertOne(ctx, archivedBatch{
		RunID:          runID,
		OrganizationID: organizationID,
		Platform:       platform,
		Listings:       raws,
		ArchivedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to archive raw batch for run %s: %w", runID, err)
	}
	return nil
}

func (m *MongoArchive) FetchRun(ctx context.Context, runID string) ([]models.RawListing, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := m.coll.Find(ctx, bson.M{"run_id": runID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archived run %s: %w", runID, err)
	}
	defer cursor.Close(ctx)

	var out []models.RawListing
	for cursor.Next(ctx) {
		var batch archivedBatch
		if err := cursor.Decode(&batch); err != nil {
			return nil, fmt.Errorf("failed to decode archived batch: %w", err)
		}
		out = append(out, batch.Listings...)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error reading run %s: %w", runID, err)
	}
	return out, nil
}

func (m *MongoArchive) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
