package activation

import "errors"

var (
	// ErrDeserialization indicates the event's data object could not be decoded.
	ErrDeserialization = errors.New("activation: event data could not be deserialized")
	// ErrMalformedEvent indicates required checkout metadata is missing or invalid.
	ErrMalformedEvent = errors.New("activation: checkout metadata malformed")
	// ErrPersistence indicates the local mirror could not be updated.
	ErrPersistence = errors.New("activation: mirror update failed")
	// ErrDownstream indicates the monolith rejected or never received the activation.
	ErrDownstream = errors.New("activation: downstream activation failed")
)
