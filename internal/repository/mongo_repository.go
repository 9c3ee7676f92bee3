package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

const (
	conversationsCollection = "conversations"
	tasksCollection         = "tasks"
)

type mongoRepository struct {
	conversations *mongo.Collection
	tasks         *mongo.Collection
}

// NewMongoRepository returns the document backend. Each conversation is one
// document with its entries embedded.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (Store, error) {
	r := &mongoRepository{
		conversations: db.Collection(conversationsCollection),
		tasks:         db.Collection(tasksCollection),
	}
	_, err := r.conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create conversation index: %w", err)
	}
	_, err = r.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task index: %w", err)
	}
	return r, nil
}

func (r *mongoRepository) Name() string { return "mongo" }

// --- Conversation Operations ---

func (r *mongoRepository) LoadOrCreate(ctx context.Context, ownerID, conversationID, seedTitle string) (*model.Conversation, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if conversationID != "" {
		conv, err := r.Get(ctx, ownerID, conversationID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	conv := newConversation(ownerID, seedTitle)
	if _, err := r.conversations.InsertOne(ctx, conv); err != nil {
		return nil, fmt.Errorf("could not insert conversation: %w", err)
	}
	return conv, nil
}

func (r *mongoRepository) Append(ctx context.Context, conv *model.Conversation, entries ...model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	now := model.Now()
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": entries}},
		"$set":  bson.M{"updatedAt": now},
	}
	res, err := r.conversations.UpdateOne(ctx, ownedBy(conv.OwnerID, conv.ID), update)
	if err != nil {
		return fmt.Errorf("could not append entries: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	mirror(conv, entries, now)
	return nil
}

func (r *mongoRepository) List(ctx context.Context, ownerID string) ([]model.ConversationSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"title": 1, "updatedAt": 1})
	cur, err := r.conversations.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("could not list conversations: %w", err)
	}
	summaries := []model.ConversationSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("could not decode conversations: %w", err)
	}
	for i := range summaries {
		summaries[i].UpdatedAt = summaries[i].UpdatedAt.UTC()
	}
	return summaries, nil
}

func (r *mongoRepository) Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.conversations.FindOne(ctx, ownedBy(ownerID, conversationID)).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not get conversation: %w", err)
	}
	// BSON dates decode into local time.
	conv.CreatedAt = conv.CreatedAt.UTC()
	conv.UpdatedAt = conv.UpdatedAt.UTC()
	if conv.Messages == nil {
		conv.Messages = []model.Entry{}
	}
	for i := range conv.Messages {
		conv.Messages[i].CreatedAt = conv.Messages[i].CreatedAt.UTC()
	}
	return &conv, nil
}

func (r *mongoRepository) Rename(ctx context.Context, ownerID, conversationID, title string) error {
	update := bson.M{"$set": bson.M{"title": title, "updatedAt": model.Now()}}
	res, err := r.conversations.UpdateOne(ctx, ownedBy(ownerID, conversationID), update)
	if err != nil {
		return fmt.Errorf("could not rename conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, ownerID, conversationID string) error {
	res, err := r.conversations.DeleteOne(ctx, ownedBy(ownerID, conversationID))
	if err != nil {
		return fmt.Errorf("could not delete conversation: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Task Operations ---

func (r *mongoRepository) CreateTask(ctx context.Context, task *model.Task) error {
	if err := prepareTask(task); err != nil {
		return err
	}
	if _, err := r.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("could not insert task: %w", err)
	}
	return nil
}

func (r *mongoRepository) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.tasks.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	tasks := []model.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("could not decode tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].CreatedAt = tasks[i].CreatedAt.UTC()
		tasks[i].UpdatedAt = tasks[i].UpdatedAt.UTC()
	}
	return tasks, nil
}

func ownedBy(ownerID, conversationID string) bson.M {
	return bson.M{"_id": conversationID, "ownerId": ownerID}
}
