package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	pkgmongo "github.com/jtjeruta/desktop-ims-sub001/pkg/mongodb"
)

const productsCollection = "products"

// ProductRepository persists products in MongoDB
type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(client *pkgmongo.CircuitBreakerClient) (*ProductRepository, error) {
	repo := &ProductRepository{collection: client.Collection(productsCollection)}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure product indexes: %w", err)
	}
	return repo, nil
}

// ensureIndexes keeps name and SKU unique among non-archived products only.
// Archived revisions may share both with their successor.
func (r *ProductRepository) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	activeOnly := bson.M{"archived": false}
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys: bson.D{{Key: "archived", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	return err
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_, err := r.collection.InsertOne(ctx, p)
	if pkgmongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict("a product with the same name or SKU already exists")
	}
	return err
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFoundWithID("product", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindActiveByNameOrSKU(ctx context.Context, name, sku string, excludeID *primitive.ObjectID) (*domain.Product, error) {
	filter := bson.M{
		"archived": false,
		"$or":      []bson.M{{"name": name}, {"sku": sku}},
	}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	var p domain.Product
	err := r.collection.FindOne(ctx, filter).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound("product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, includeArchived bool, opts domain.ListOptions) ([]*domain.Product, error) {
	filter := bson.M{}
	if !includeArchived {
		filter["archived"] = false
	}

	findOpts := options.Find().
		SetSort(pkgmongo.SortDescending("createdAt")).
		SetSkip(opts.Offset).
		SetLimit(opts.Limit)

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Count(ctx context.Context, includeArchived bool) (int64, error) {
	filter := bson.M{}
	if !includeArchived {
		filter["archived"] = false
	}
	return r.collection.CountDocuments(ctx, filter)
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if pkgmongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict("a product with the same name or SKU already exists")
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("product", p.ID.Hex())
	}
	return nil
}

// IncrementStock adjusts store-level stock with a single atomic $inc, so
// concurrent orders never lose updates to a read-modify-write race
func (r *ProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	update := pkgmongo.BuildIncrementUpdate("stock", delta)
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("product", id.Hex())
	}
	return nil
}

func (r *ProductRepository) SetArchived(ctx context.Context, id primitive.ObjectID, archived bool) error {
	update := pkgmongo.BuildUpdateWithTimestamp(bson.M{"archived": archived})
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("product", id.Hex())
	}
	return nil
}

func (r *ProductRepository) AttachVariant(ctx context.Context, productID, variantID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"variantIds": variantID},
		"$set":      bson.M{"updatedAt": pkgmongo.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("product", productID.Hex())
	}
	return nil
}

func (r *ProductRepository) DetachVariant(ctx context.Context, productID, variantID primitive.ObjectID) error {
	update := pkgmongo.BuildPullUpdate("variantIds", variantID)
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("product", productID.Hex())
	}
	return nil
}
