package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/branchstock_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoItemRepository keeps every branch's category sub-collections in one
// "items" collection addressed by (branchId, category, _id).
type MongoItemRepository struct {
	collection *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *MongoItemRepository {
	return &MongoItemRepository{
		collection: db.Collection("items"),
	}
}

func itemKey(branchID, category, id string) bson.M {
	return bson.M{"_id": id, "branchId": branchID, "category": category}
}

func (r *MongoItemRepository) Create(ctx context.Context, item *models.Item) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, item)
	return classify(err)
}

func (r *MongoItemRepository) FindByID(ctx context.Context, branchID, category, id string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var item models.Item
	if err := r.collection.FindOne(ctx, itemKey(branchID, category, id)).Decode(&item); err != nil {
		return nil, classify(err)
	}
	return &item, nil
}

func (r *MongoItemRepository) List(ctx context.Context, branchID, category string) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"branchId": branchID, "category": category}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	items := []models.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, classify(err)
	}
	return items, nil
}

func (r *MongoItemRepository) Update(ctx context.Context, branchID, category, id string, update models.ItemUpdate) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Stock != nil {
		set["stock"] = *update.Stock
	}
	if update.Warranty != nil {
		set["warranty"] = *update.Warranty
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.Item
	err := r.collection.FindOneAndUpdate(ctx, itemKey(branchID, category, id), bson.M{"$set": set}, opts).Decode(&item)
	if err != nil {
		return nil, classify(err)
	}
	return &item, nil
}

func (r *MongoItemRepository) SetImageURL(ctx context.Context, branchID, category, id, url string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, itemKey(branchID, category, id), bson.M{
		"$set": bson.M{"imageUrl": url, "updatedAt": time.Now()},
	})
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock is a single conditional update, so two concurrent sales
// can never both consume the same units.
func (r *MongoItemRepository) DecrementStock(ctx context.Context, branchID, category, id string, qty int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := itemKey(branchID, category, id)
	filter["stock"] = bson.M{"$gte": qty}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.Item
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}, opts).Decode(&item)
	if err == mongo.ErrNoDocuments {
		// Either the item vanished or the guard failed; tell them apart.
		if _, findErr := r.FindByID(ctx, branchID, category, id); findErr != nil {
			return 0, findErr
		}
		return 0, ErrInsufficientStock
	}
	if err != nil {
		return 0, classify(err)
	}
	return item.Stock, nil
}

func (r *MongoItemRepository) IncrementStock(ctx context.Context, branchID, category, id string, qty int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.Item
	err := r.collection.FindOneAndUpdate(ctx, itemKey(branchID, category, id), bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}, opts).Decode(&item)
	if err != nil {
		return 0, classify(err)
	}
	return item.Stock, nil
}
