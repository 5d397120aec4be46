package storage

import "errors"

// ErrNilRecord is returned when a nil turn or document is stored.
var ErrNilRecord = errors.New("cannot store nil record")
