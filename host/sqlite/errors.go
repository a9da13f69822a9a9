package sqlite

import (
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kbukum/pipegen/errors"
)

// fromDatabase converts a gorm error into an AppError.
func fromDatabase(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(resource, id)
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Conflict("A " + resource + " with these details already exists.").WithCause(err)
	}
	return errors.Internal(err).WithDetail("resource", resource)
}
