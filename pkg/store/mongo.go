package store

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lecture-notes/pkg/domain"
)

// MongoStore persists lectures in a MongoDB collection. Artifacts are
// embedded in the lecture document, so replacing one is a single `$set`
// and deleting a lecture cascades for free. Document-level writes give
// the per-lecture serialization the Store contract requires.
type MongoStore struct {
	mongoClient *mongo.Client
	collection  *mongo.Collection
}

// NewMongoStore creates a Mongo-backed store. Call Connect before use.
func NewMongoStore(connectionString, databaseName, collectionName string) *MongoStore {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Error surfaces on Connect().
		return &MongoStore{}
	}

	return &MongoStore{
		mongoClient: mongoClient,
		collection:  mongoClient.Database(databaseName).Collection(collectionName),
	}
}

// Connect verifies connectivity to MongoDB.
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return s.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}

// UpsertLecture creates or replaces the lecture's transcript and status
// fields by id, leaving embedded artifacts untouched.
func (s *MongoStore) UpsertLecture(ctx context.Context, lecture *domain.Lecture) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"_id": lecture.ID}
	update := bson.M{"$set": bson.M{
		"title":          lecture.Title,
		"audio_ref":      lecture.AudioRef,
		"source_url":     lecture.SourceURL,
		"raw_transcript": lecture.RawTranscript,
		"transcript":     lecture.Transcript,
		"created_at":     primitive.NewDateTimeFromTime(lecture.CreatedAt),
		"status":         lecture.Status,
		"error":          lecture.Error,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := s.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// UpdateStatus sets status and error on an existing lecture.
func (s *MongoStore) UpdateStatus(ctx context.Context, id string, status domain.LectureStatus, errMsg string) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "error": errMsg}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertArtifact replaces the lecture's single artifact of the
// payload's kind with one document update.
func (s *MongoStore) UpsertArtifact(ctx context.Context, id string, artifact domain.Artifact) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}
	if err := artifact.Validate(); err != nil {
		return err
	}

	var field string
	var payload any
	switch artifact.Kind {
	case domain.KindSummary:
		field, payload = "summary", artifact.Summary
	case domain.KindQuiz:
		field, payload = "quiz", artifact.Quiz
	case domain.KindFlashcards:
		field, payload = "flashcards", artifact.Flashcards
	}

	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: payload}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLecture fetches a lecture with all embedded artifacts.
func (s *MongoStore) GetLecture(ctx context.Context, id string) (*domain.Lecture, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	var lecture domain.Lecture
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lecture)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lecture: %w", err)
	}
	return &lecture, nil
}

// ListLectures returns a page ordered by creation time descending.
func (s *MongoStore) ListLectures(ctx context.Context, page, perPage int) ([]domain.Lecture, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	return s.findLectures(ctx, bson.M{}, opts)
}

// SearchLectures matches query as a case-insensitive substring of title
// or transcript.
func (s *MongoStore) SearchLectures(ctx context.Context, query string) ([]domain.Lecture, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	pattern := regexp.QuoteMeta(query)
	re := primitive.Regex{Pattern: pattern, Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"transcript": re},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	return s.findLectures(ctx, filter, opts)
}

// DeleteLecture removes the lecture document; embedded artifacts go
// with it.
func (s *MongoStore) DeleteLecture(ctx context.Context, id string) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) findLectures(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Lecture, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query lectures: %w", err)
	}
	defer cursor.Close(ctx)

	lectures := []domain.Lecture{}
	for cursor.Next(ctx) {
		var lecture domain.Lecture
		if err := cursor.Decode(&lecture); err != nil {
			continue // Skip invalid documents
		}
		lectures = append(lectures, lecture)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return lectures, nil
}
