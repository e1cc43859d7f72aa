package repositories

import (
	"context"

	"github.com/HSouheill/branchstock_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{
		collection: db.Collection("messages"),
	}
}

func (r *MongoMessageRepository) Create(ctx context.Context, msg *models.OwnerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, msg)
	return classify(err)
}

func (r *MongoMessageRepository) List(ctx context.Context, limit int64) ([]models.OwnerMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	msgs := []models.OwnerMessage{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, classify(err)
	}
	return msgs, nil
}
