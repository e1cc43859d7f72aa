package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/branchstock_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 10 * time.Second

type MongoBranchRepository struct {
	collection *mongo.Collection
}

func NewBranchRepository(db *mongo.Database) *MongoBranchRepository {
	return &MongoBranchRepository{
		collection: db.Collection("branches"),
	}
}

func (r *MongoBranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if branch.Categories == nil {
		branch.Categories = []models.Category{}
	}
	_, err := r.collection.InsertOne(ctx, branch)
	return classify(err)
}

func (r *MongoBranchRepository) FindByID(ctx context.Context, id string) (*models.Branch, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var branch models.Branch
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&branch); err != nil {
		return nil, classify(err)
	}
	return &branch, nil
}

// List returns branches in insertion order.
func (r *MongoBranchRepository) List(ctx context.Context) ([]models.Branch, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	branches := []models.Branch{}
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, classify(err)
	}
	return branches, nil
}

func (r *MongoBranchRepository) UpdateCategories(ctx context.Context, id string, revision int64, categories []models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "revision": revision}
	if revision == 0 {
		// Branches written before revisions existed carry no field.
		filter = bson.M{"_id": id, "$or": bson.A{
			bson.M{"revision": 0},
			bson.M{"revision": bson.M{"$exists": false}},
		}}
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{
			"categories": categories,
			"updatedAt":  time.Now(),
		},
		"$inc": bson.M{"revision": 1},
	})
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}
