package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
	"github.com/Data-Dreamersambit/Audio-Player/internal/repository"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

// MediaStore is the external media host the services upload to. Object
// lifetime follows the owning document: deleting an audio or account
// removes its stored objects as well.
type MediaStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

func parseObjectID(kind, s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid %s ID", utils.ErrValidation, kind)
	}
	return id, nil
}

// resolveAuthors attaches (name, profileImage) to each audio with one
// batched lookup. Only those two author fields are ever exposed.
func resolveAuthors(ctx context.Context, users repository.UserRepository, audios []models.Audio) error {
	seen := make(map[primitive.ObjectID]struct{}, len(audios))
	ids := make([]primitive.ObjectID, 0, len(audios))
	for _, a := range audios {
		if _, ok := seen[a.Author]; !ok {
			seen[a.Author] = struct{}{}
			ids = append(ids, a.Author)
		}
	}
	authors, err := users.FindManyByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.AuthorInfo, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].AuthorInfo()
	}
	for i := range audios {
		audios[i].AuthorInfo = byID[audios[i].Author]
	}
	return nil
}
