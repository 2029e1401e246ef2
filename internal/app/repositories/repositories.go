package repositories

import (
	"errors"

	"github.com/yigit/flashclass/internal/docstore"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CredentialRepository *CredentialRepository
	FlashcardRepository  *FlashcardRepository
	FolderRepository     *FolderRepository
	ClassRepository      *ClassRepository
	TokenRepository      *TokenRepository
}

// NewRepositories initializes all repositories over one store
func NewRepositories(store docstore.Store) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(store),
		CredentialRepository: NewCredentialRepository(store),
		FlashcardRepository:  NewFlashcardRepository(store),
		FolderRepository:     NewFolderRepository(store),
		ClassRepository:      NewClassRepository(store),
		TokenRepository:      NewTokenRepository(store),
	}
}

// translate maps store errors onto the application taxonomy
func translate(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return apperrors.NewNotFoundError(resource, id)
	default:
		return apperrors.NewBackendError(resource, err)
	}
}

// decodeAll decodes documents into entities, setting ids via setID
func decodeAll[T any](docs []docstore.Document, resource string, setID func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.Decode(&v); err != nil {
			return nil, apperrors.NewBackendError(resource, err)
		}
		setID(&v, doc.ID)
		out = append(out, v)
	}
	return out, nil
}

func decodeOne[T any](doc docstore.Document, resource string, setID func(*T, string)) (*T, error) {
	var v T
	if err := doc.Decode(&v); err != nil {
		return nil, apperrors.NewBackendError(resource, err)
	}
	setID(&v, doc.ID)
	return &v, nil
}
