// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "attesta/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a HolderID where a RequestID is expected.
type (
	HolderID  uuid.UUID
	RequestID uuid.UUID
	SessionID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, decoded tokens).

func ParseHolderID(s string) (HolderID, error) {
	id, err := parseUUID(s, "holder ID")
	return HolderID(id), err
}

func ParseRequestID(s string) (RequestID, error) {
	id, err := parseUUID(s, "request ID")
	return RequestID(id), err
}

func ParseSessionID(s string) (SessionID, error) {
	id, err := parseUUID(s, "session ID")
	return SessionID(id), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+what)
	}
	return id, nil
}

// New functions - use when minting fresh identifiers.

func NewHolderID() HolderID   { return HolderID(uuid.New()) }
func NewRequestID() RequestID { return RequestID(uuid.New()) }
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// String methods - for logging and debugging.

func (id HolderID) String() string  { return uuid.UUID(id).String() }
func (id RequestID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id HolderID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Suffix returns the last n characters of the identifier, used for
// short human-facing references such as exported card file names.
func (id RequestID) Suffix(n int) string {
	s := id.String()
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
