package projection

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HerdSync is the persistence/sync collaborator: the core calls it after every
// local mutation but never waits on it to produce a derived value. Failures
// are logged by the caller; the in-memory state stays authoritative for the
// session.
type HerdSync interface {
	UpsertAnimal(ctx context.Context, animal *AnimalReadModel) error
	UpsertEvents(ctx context.Context, events []*EventReadModel) error
	DeleteAnimal(ctx context.Context, animalID string) error
	DeleteEvent(ctx context.Context, eventID int64) error
	LoadAll(ctx context.Context, establishmentID string) ([]*AnimalReadModel, []*EventReadModel, error)
}

// MongoHerdSync implements HerdSync on MongoDB collections.
type MongoHerdSync struct {
	animals *mongo.Collection
	events  *mongo.Collection
}

func NewMongoHerdSync(db *mongo.Database) *MongoHerdSync {
	animals := db.Collection("animals")
	events := db.Collection("events")

	ctx := context.Background()
	animals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "establishment_id", Value: 1}},
	})
	events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "animal_id", Value: 1}}},
		{Keys: bson.D{{Key: "establishment_id", Value: 1}}},
	})

	return &MongoHerdSync{animals: animals, events: events}
}

func (s *MongoHerdSync) UpsertAnimal(ctx context.Context, animal *AnimalReadModel) error {
	_, err := s.animals.ReplaceOne(ctx,
		bson.M{"_id": animal.ID},
		animal,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert animal %s: %w", animal.ID, err)
	}
	return nil
}

func (s *MongoHerdSync) UpsertEvents(ctx context.Context, events []*EventReadModel) error {
	for _, ev := range events {
		_, err := s.events.ReplaceOne(ctx,
			bson.M{"_id": ev.ID},
			ev,
			options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to upsert event %d: %w", ev.ID, err)
		}
	}
	return nil
}

// DeleteAnimal removes the animal and cascades deletion of its events,
// mirroring the in-memory store.
func (s *MongoHerdSync) DeleteAnimal(ctx context.Context, animalID string) error {
	if _, err := s.animals.DeleteOne(ctx, bson.M{"_id": animalID}); err != nil {
		return fmt.Errorf("failed to delete animal %s: %w", animalID, err)
	}
	if _, err := s.events.DeleteMany(ctx, bson.M{"animal_id": animalID}); err != nil {
		return fmt.Errorf("failed to delete events of animal %s: %w", animalID, err)
	}
	return nil
}

func (s *MongoHerdSync) DeleteEvent(ctx context.Context, eventID int64) error {
	if _, err := s.events.DeleteOne(ctx, bson.M{"_id": eventID}); err != nil {
		return fmt.Errorf("failed to delete event %d: %w", eventID, err)
	}
	return nil
}

// LoadAll fetches one establishment's animals and events for a warm start.
func (s *MongoHerdSync) LoadAll(ctx context.Context, establishmentID string) ([]*AnimalReadModel, []*EventReadModel, error) {
	filter := bson.M{}
	if establishmentID != "" {
		filter["establishment_id"] = establishmentID
	}

	cursor, err := s.animals.Find(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load animals: %w", err)
	}
	var animals []*AnimalReadModel
	if err := cursor.All(ctx, &animals); err != nil {
		return nil, nil, fmt.Errorf("failed to decode animals: %w", err)
	}

	cursor, err = s.events.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load events: %w", err)
	}
	var events []*EventReadModel
	if err := cursor.All(ctx, &events); err != nil {
		return nil, nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return animals, events, nil
}
