package errors

import (
	"fmt"
)

type (
	NotFoundError struct {
		ID string
	}
	AlreadyExistsError struct {
		ID string
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.ID)
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s: already exists", e.ID)
}
