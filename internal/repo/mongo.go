package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

const (
	foodsCollection  = "foods"
	offersCollection = "offers"
)

// MongoRepo stores the catalog (food items and offers) in MongoDB.
type MongoRepo struct {
	client *mongo.Client
	foods  *mongo.Collection
	offers *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoRepo(client, database), nil
}

func NewMongoRepo(client *mongo.Client, database string) *MongoRepo {
	db := client.Database(database)
	return &MongoRepo{
		client: client,
		foods:  db.Collection(foodsCollection),
		offers: db.Collection(offersCollection),
	}
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.foods.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}
	_, err := r.offers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func mapMongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func (r *MongoRepo) ListFoods(ctx context.Context, category string) ([]models.FoodItem, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := r.foods.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	items := []models.FoodItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepo) GetFood(ctx context.Context, id string) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := r.foods.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, mapMongoErr(err)
	}
	return &item, nil
}

func (r *MongoRepo) CreateFood(ctx context.Context, item *models.FoodItem) error {
	item.EnsureIDs()
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	_, err := r.foods.InsertOne(ctx, item)
	return mapMongoErr(err)
}

func (r *MongoRepo) SaveFood(ctx context.Context, item *models.FoodItem) error {
	item.UpdatedAt = time.Now().UTC()
	res, err := r.foods.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteFood(ctx context.Context, id string) error {
	res, err := r.foods.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) SearchFoods(ctx context.Context, q string, limit int) ([]models.FoodItem, error) {
	rx := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": rx},
		bson.M{"description": rx},
		bson.M{"subCategory": rx},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.foods.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	items := []models.FoodItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepo) ListOffers(ctx context.Context, includeInactive bool) ([]models.Offer, error) {
	filter := bson.M{}
	if !includeInactive {
		filter["isActive"] = true
	}
	cur, err := r.offers.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	offers := []models.Offer{}
	if err := cur.All(ctx, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *MongoRepo) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	var o models.Offer
	if err := r.offers.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, mapMongoErr(err)
	}
	return &o, nil
}

func (r *MongoRepo) CreateOffer(ctx context.Context, o *models.Offer) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := r.offers.InsertOne(ctx, o)
	return mapMongoErr(err)
}

func (r *MongoRepo) SaveOffer(ctx context.Context, o *models.Offer) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.offers.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
