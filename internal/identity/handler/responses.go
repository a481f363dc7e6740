package handler

import (
	"time"

	"attesta/internal/identity/models"
)

// IdentityResponse is the wire shape of a holder's identity.
type IdentityResponse struct {
	FullName    string `json:"fullName"`
	DOB         string `json:"dob,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Address     string `json:"address,omitempty"`
	TaxID       string `json:"taxId,omitempty"`
	BloodGroup  string `json:"bloodGroup,omitempty"`
	CreditScore int    `json:"creditScore,omitempty"`
	Verified    bool   `json:"verified"`
	AuthorityID string `json:"authorityId,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func toIdentityResponse(identity *models.Identity) IdentityResponse {
	resp := IdentityResponse{
		FullName:    identity.FullName,
		Gender:      identity.Gender,
		Address:     identity.Address,
		TaxID:       identity.TaxID,
		BloodGroup:  identity.BloodGroup,
		CreditScore: identity.CreditScore,
		Verified:    identity.Verified,
		AuthorityID: identity.AuthorityID,
	}
	if !identity.DOB.IsZero() {
		resp.DOB = identity.DOB.Format("2006-01-02")
	}
	if !identity.UpdatedAt.IsZero() {
		resp.UpdatedAt = identity.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
