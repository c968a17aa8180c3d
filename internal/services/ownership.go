package services

import (
	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequireOwner rejects a mutation by anyone but the resource's owner.
// Callers load the resource first so a missing resource is a 404, not a 403.
func RequireOwner(owner, actor primitive.ObjectID, resource string) error {
	if owner.IsZero() || owner != actor {
		return apperr.Forbidden("You are not allowed to modify this " + resource)
	}
	return nil
}

// ParseID parses a hex object id from a request. Hex digits are accepted in
// either case; anything else is a validation error.
func ParseID(raw, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid " + name)
	}
	return id, nil
}
