package sealbox

import "errors"

var (
	// ErrConfiguration is an exported constant or variable used by the sealbox codec.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidMessage is an exported constant or variable used by the sealbox codec.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrInvalidSignature is an exported constant or variable used by the sealbox codec.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrCodecNotReady is an exported constant or variable used by the sealbox codec.
	ErrCodecNotReady = errors.New("codec not initialized")
)
