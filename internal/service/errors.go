package service

import (
	"errors"

	"library-lending-backend/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
