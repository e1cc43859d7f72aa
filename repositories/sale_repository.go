package repositories

import (
	"context"

	"github.com/HSouheill/branchstock_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSaleRepository is the append-only ledger. Sales carry their branchId
// so one collection serves every branches/{id}/sales path.
type MongoSaleRepository struct {
	collection *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) *MongoSaleRepository {
	return &MongoSaleRepository{
		collection: db.Collection("sales"),
	}
}

func (r *MongoSaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, sale)
	return classify(err)
}

func (r *MongoSaleRepository) List(ctx context.Context, branchID string, filter models.SaleFilter) ([]models.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := bson.M{"branchId": branchID}
	if filter.WorkerID != "" {
		query["workerId"] = filter.WorkerID
	}
	ts := bson.M{}
	if !filter.From.IsZero() {
		ts["$gte"] = models.FormatTimestamp(filter.From)
	}
	if !filter.To.IsZero() {
		ts["$lt"] = models.FormatTimestamp(filter.To)
	}
	if len(ts) > 0 {
		query["timestamp"] = ts
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	sales := []models.Sale{}
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, classify(err)
	}
	return sales, nil
}
