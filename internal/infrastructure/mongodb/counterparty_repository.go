package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	pkgmongo "github.com/jtjeruta/desktop-ims-sub001/pkg/mongodb"
)

const (
	vendorsCollection   = "vendors"
	customersCollection = "customers"
)

// VendorRepository persists purchase-order counterparties
type VendorRepository struct {
	collection *mongo.Collection
}

func NewVendorRepository(client *pkgmongo.CircuitBreakerClient) *VendorRepository {
	return &VendorRepository{collection: client.Collection(vendorsCollection)}
}

func (r *VendorRepository) Insert(ctx context.Context, v *domain.Vendor) error {
	_, err := r.collection.InsertOne(ctx, v)
	return err
}

func (r *VendorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Vendor, error) {
	var v domain.Vendor
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFoundWithID("vendor", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VendorRepository) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Vendor, error) {
	findOpts := options.Find().
		SetSort(pkgmongo.SortAscending("name")).
		SetSkip(opts.Offset).
		SetLimit(opts.Limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vendors []*domain.Vendor
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *VendorRepository) Update(ctx context.Context, v *domain.Vendor) error {
	v.UpdatedAt = pkgmongo.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": v.ID}, v)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("vendor", v.ID.Hex())
	}
	return nil
}

func (r *VendorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFoundWithID("vendor", id.Hex())
	}
	return nil
}

// CustomerRepository persists sales-order counterparties
type CustomerRepository struct {
	collection *mongo.Collection
}

func NewCustomerRepository(client *pkgmongo.CircuitBreakerClient) *CustomerRepository {
	return &CustomerRepository{collection: client.Collection(customersCollection)}
}

func (r *CustomerRepository) Insert(ctx context.Context, c *domain.Customer) error {
	_, err := r.collection.InsertOne(ctx, c)
	return err
}

func (r *CustomerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Customer, error) {
	var c domain.Customer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFoundWithID("customer", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Customer, error) {
	findOpts := options.Find().
		SetSort(pkgmongo.SortAscending("name")).
		SetSkip(opts.Offset).
		SetLimit(opts.Limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*domain.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	c.UpdatedAt = pkgmongo.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("customer", c.ID.Hex())
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFoundWithID("customer", id.Hex())
	}
	return nil
}
