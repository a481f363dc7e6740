package models

import (
	"time"

	"attesta/internal/purpose"
	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
)

// Status represents the lifecycle state of a verification request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRedeemed Status = "redeemed"
	StatusExpired  Status = "expired"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusRedeemed || s == StatusExpired
}

// AttributeValue is one disclosed key/value pair on an issued request.
type AttributeValue struct {
	Key   string
	Value string
}

// Request represents one issued, purpose-bound disclosure instance.
//
// # Lifecycle Invariant
//
// The authority is the sole owner of Status. A request is redeemable at most
// once: the pending->redeemed transition happens under the store's
// compare-and-swap, so concurrent redemption attempts race on Status and
// exactly one observes pending. Records are never deleted, only
// time-expired; the access log enumerates all of them.
type Request struct {
	ID             id.RequestID
	HolderID       id.HolderID
	Purpose        purpose.Key
	Attributes     []AttributeValue
	Status         Status
	CreatedAt      time.Time
	ExpiresAt      time.Time
	RedeemedAt     *time.Time
	VerifierDevice string
}

// NewRequest creates a Request with domain invariant checks. The attribute
// keys must be a subset of the purpose's allow-list; violations are
// invariant errors, not user errors, because the issuer derives attributes
// from the catalog itself.
func NewRequest(requestID id.RequestID, holderID id.HolderID, p purpose.Purpose, attrs []AttributeValue, createdAt time.Time, expiresAt time.Time) (*Request, error) {
	if requestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request ID required")
	}
	if holderID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "holder ID required")
	}
	if createdAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "creation time required")
	}
	if !expiresAt.After(createdAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expiry must be after creation time")
	}
	for _, attr := range attrs {
		if !p.Requires(attr.Key) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "attribute not allowed for purpose: "+attr.Key)
		}
	}
	return &Request{
		ID:         requestID,
		HolderID:   holderID,
		Purpose:    p.Key,
		Attributes: attrs,
		Status:     StatusPending,
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
	}, nil
}

// ComputeStatus reports the lifecycle state at the provided time.
// Expiry is derived lazily; the stored status only ever records redemption.
func (r Request) ComputeStatus(now time.Time) Status {
	if r.Status == StatusRedeemed {
		return StatusRedeemed
	}
	if r.ExpiresAt.Before(now) {
		return StatusExpired
	}
	return StatusPending
}

// IsRedeemable returns true while the request can still be redeemed.
func (r Request) IsRedeemable(now time.Time) bool {
	return r.ComputeStatus(now) == StatusPending
}

// DisclosureResult is the authority's redemption response: the verdict plus
// the purpose-filtered attribute values. It is consumed once per scan and
// never persisted.
type DisclosureResult struct {
	Valid      bool
	Purpose    purpose.Key
	Attributes map[string]string
	Reason     string // denial reason on Valid == false, for the access log
}

// AttributeMap converts the request's disclosed attributes to the result shape.
func (r Request) AttributeMap() map[string]string {
	m := make(map[string]string, len(r.Attributes))
	for _, attr := range r.Attributes {
		m[attr.Key] = attr.Value
	}
	return m
}
