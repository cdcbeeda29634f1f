// Package service holds the business rules. Services speak in *apperr.Error so
// the HTTP layer can map failures without knowing about storage.
package service

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/repository"
)

// storeErr turns a repository error into a client-safe one. ErrNotFound becomes
// NotFound(notFound); typed errors pass through; anything else is Internal.
func storeErr(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFound).Wrap(err)
	}
	return apperr.Internal(err)
}

// parseID accepts only 24-char hex ObjectIDs; anything else is treated as absent.
func parseID(raw, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFound)
	}
	return id, nil
}
