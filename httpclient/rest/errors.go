package rest

import (
	"errors"

	"github.com/kbukum/pipegen/httpclient"
)

// IsDecode checks if the error is a JSON decoding failure.
func IsDecode(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

// IsStatus checks if the error is a non-2xx response.
func IsStatus(err error) bool { return httpclient.IsStatus(err) }
