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

const variantsCollection = "variants"

// VariantRepository persists product sales units in MongoDB
type VariantRepository struct {
	collection *mongo.Collection
}

func NewVariantRepository(client *pkgmongo.CircuitBreakerClient) (*VariantRepository, error) {
	repo := &VariantRepository{collection: client.Collection(variantsCollection)}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure variant indexes: %w", err)
	}
	return repo, nil
}

func (r *VariantRepository) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (r *VariantRepository) Insert(ctx context.Context, v *domain.Variant) error {
	_, err := r.collection.InsertOne(ctx, v)
	if pkgmongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict("a variant with the same name already exists for this product")
	}
	return err
}

func (r *VariantRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Variant, error) {
	var v domain.Variant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFoundWithID("variant", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VariantRepository) FindByProduct(ctx context.Context, productID primitive.ObjectID) ([]*domain.Variant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID}, options.Find().SetSort(pkgmongo.SortAscending("createdAt")))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var variants []*domain.Variant
	if err := cursor.All(ctx, &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *VariantRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFoundWithID("variant", id.Hex())
	}
	return nil
}

func (r *VariantRepository) RepointProduct(ctx context.Context, oldProductID, newProductID primitive.ObjectID) error {
	update := pkgmongo.BuildUpdateWithTimestamp(bson.M{"productId": newProductID})
	_, err := r.collection.UpdateMany(ctx, bson.M{"productId": oldProductID}, update)
	return err
}
