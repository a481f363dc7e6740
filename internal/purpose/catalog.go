// Package purpose defines the static disclosure purpose catalog. A purpose
// bounds which identity attributes may ever be requested for it; the issuer
// validates every verification request against this allow-list.
package purpose

import (
	dErrors "attesta/pkg/domain-errors"
)

// Key labels why attributes are disclosed. Purpose binding allows a holder
// to prove exactly one claim set without exposing the rest of the identity.
type Key string

const (
	KeyAgeVerification  Key = "age_verification"
	KeyFinancialKYC     Key = "financial_kyc"
	KeyRentalAgreement  Key = "rental_agreement"
	KeyMedicalEmergency Key = "medical_emergency"
)

// IsValid checks if the purpose key is one of the supported enum values.
func (k Key) IsValid() bool {
	_, ok := byKey[k]
	return ok
}

// Transform selects how a verifier terminal displays the disclosed
// attributes. It is an explicit tag on the catalog entry, chosen by key -
// never inferred from title text, which breaks silently on relabeling.
type Transform string

const (
	// TransformNone shows attribute values verbatim.
	TransformNone Transform = "none"
	// TransformAgeBand collapses the age disclosure to a conservative band
	// when no exact age was disclosed.
	TransformAgeBand Transform = "age_band"
)

// Canonical attribute keys as they appear on issued requests and in
// disclosure results.
const (
	AttrFullName       = "Full Name"
	AttrAgeOver18      = "Age (Over 18)"
	AttrTaxID          = "Tax ID"
	AttrCreditScore    = "Credit Score"
	AttrCurrentAddress = "Current Address"
	AttrBloodGroup     = "Blood Group"
)

// Purpose is an immutable catalog entry. RequiredAttributes is the complete,
// ordered allow-list: an issued request may never carry an attribute outside it.
type Purpose struct {
	Key                Key
	Title              string
	Description        string
	RequiredAttributes []string
	Transform          Transform
}

// Requires reports whether the purpose's allow-list contains the attribute key.
func (p Purpose) Requires(attr string) bool {
	for _, a := range p.RequiredAttributes {
		if a == attr {
			return true
		}
	}
	return false
}

// catalog is defined at process start and never mutated.
var catalog = []Purpose{
	{
		Key:                KeyAgeVerification,
		Title:              "Age Verification",
		Description:        "Prove you are above a required age without revealing your exact date of birth.",
		RequiredAttributes: []string{AttrAgeOver18},
		Transform:          TransformAgeBand,
	},
	{
		Key:                KeyFinancialKYC,
		Title:              "Financial KYC",
		Description:        "Verify identity and credit standing for high-tier financial services.",
		RequiredAttributes: []string{AttrFullName, AttrTaxID, AttrCreditScore},
		Transform:          TransformNone,
	},
	{
		Key:                KeyRentalAgreement,
		Title:              "Rental Agreement",
		Description:        "Verify address and identity for housing and legal lease agreements.",
		RequiredAttributes: []string{AttrFullName, AttrCurrentAddress},
		Transform:          TransformNone,
	},
	{
		Key:                KeyMedicalEmergency,
		Title:              "Emergency Medical",
		Description:        "Share critical health info with first responders for emergency treatment.",
		RequiredAttributes: []string{AttrFullName, AttrBloodGroup},
		Transform:          TransformNone,
	},
}

var byKey = func() map[Key]Purpose {
	m := make(map[Key]Purpose, len(catalog))
	for _, p := range catalog {
		m[p.Key] = p
	}
	return m
}()

// List returns all purposes in stable catalog order.
func List() []Purpose {
	out := make([]Purpose, len(catalog))
	copy(out, catalog)
	return out
}

// Get resolves a purpose by key.
func Get(key Key) (Purpose, error) {
	p, ok := byKey[key]
	if !ok {
		return Purpose{}, dErrors.New(dErrors.CodeNotFound, "unknown purpose: "+string(key))
	}
	return p, nil
}
