package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// IsDuplicateKeyError reports whether err is a unique-index violation
func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// BuildUpdateWithTimestamp builds a BSON update document with automatic updatedAt
func BuildUpdateWithTimestamp(set bson.M) bson.M {
	set["updatedAt"] = Now()
	return bson.M{"$set": set}
}

// BuildIncrementUpdate builds a BSON increment update
func BuildIncrementUpdate(field string, value interface{}) bson.M {
	return bson.M{
		"$inc": bson.M{field: value},
		"$set": bson.M{"updatedAt": Now()},
	}
}

// BuildPushUpdate builds a BSON push update for arrays
func BuildPushUpdate(field string, value interface{}) bson.M {
	return bson.M{
		"$push": bson.M{field: value},
		"$set":  bson.M{"updatedAt": Now()},
	}
}

// BuildPullUpdate builds a BSON pull update for arrays
func BuildPullUpdate(field string, condition interface{}) bson.M {
	return bson.M{
		"$pull": bson.M{field: condition},
		"$set":  bson.M{"updatedAt": Now()},
	}
}

// SortAscending creates an ascending sort option
func SortAscending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

// SortDescending creates a descending sort option
func SortDescending(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}
