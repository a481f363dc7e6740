package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"attesta/internal/identity/models"
	pkgerrors "attesta/pkg/domain-errors"
)

// DigiLockerAttestor is the stand-in for the national locker integration.
// The real flow is a consent redirect owned by the external authority; from
// this core's point of view it is success/failure plus an authority ID.
type DigiLockerAttestor struct{}

func NewDigiLockerAttestor() *DigiLockerAttestor {
	return &DigiLockerAttestor{}
}

// Attest validates that the captured attributes are sufficient for
// attestation and assigns an authority identifier.
func (a *DigiLockerAttestor) Attest(_ context.Context, identity *models.Identity) (string, error) {
	if identity.FullName == "" || identity.DOB.IsZero() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "full name and date of birth are required for attestation")
	}
	// ANDI-prefixed authority IDs match the upstream issuer format.
	return "ANDI-" + strings.ToUpper(uuid.New().String()[:8]), nil
}
