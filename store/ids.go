package store

import (
	"github.com/brunoscheufler/pocketnotes/constants"
	"github.com/google/uuid"
)

// NewID returns a time-ordered UUIDv7, or a random v4 if v7 generation fails
func NewID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}

func newBlobName() string {
	return uuid.NewString() + constants.DefaultImageExt
}
