package application

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
)

// parseID converts a hex ID from the API into an ObjectID, reporting a
// not-found for malformed values so probing with garbage IDs behaves the
// same as probing with unknown ones
func parseID(id, resource string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrNotFoundWithID(resource, id)
	}
	return oid, nil
}

func parseOptionalID(id *string, resource string) (*primitive.ObjectID, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	oid, err := parseID(*id, resource)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func hexPtr(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	s := id.Hex()
	return &s
}
