package errors

import (
	"fmt"
)

type (
	DecryptionError struct {
		Err error
	}
	CommunicationError struct {
		Err    error
		Status int
	}
	ClientFoundNilArgument struct {
		Msg string
	}
)

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("%s: could not decrypt", e.Err.Error())
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

func (e *CommunicationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gate API responded with status %d", e.Status)
	}
	return fmt.Sprintf("%s: could not reach gate API", e.Err.Error())
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

func (e *ClientFoundNilArgument) Error() string {
	return e.Msg
}
