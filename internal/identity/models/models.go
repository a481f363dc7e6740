package models

import (
	"strconv"
	"time"

	"attesta/internal/purpose"
	id "attesta/pkg/domain"
)

// Identity is the holder's attribute bag. The proof lifecycle treats it as
// read-only input: only the capture and attestation flows mutate it.
type Identity struct {
	HolderID    id.HolderID
	FullName    string
	DOB         time.Time // zero when not captured
	Gender      string
	Address     string
	TaxID       string
	BloodGroup  string
	CreditScore int // zero when not captured
	Verified    bool
	AuthorityID string // assigned by the external authority on attestation
	UpdatedAt   time.Time
}

// Attribute resolves a catalog attribute key against the identity.
// The second return reports presence; issuance must fail loudly on absent
// attributes rather than silently omitting them.
func (i Identity) Attribute(key string, now time.Time) (string, bool) {
	switch key {
	case purpose.AttrFullName:
		return i.FullName, i.FullName != ""
	case purpose.AttrAgeOver18:
		if i.DOB.IsZero() {
			return "", false
		}
		return strconv.FormatBool(id.IsOver18(i.DOB, now)), true
	case purpose.AttrTaxID:
		return i.TaxID, i.TaxID != ""
	case purpose.AttrCurrentAddress:
		return i.Address, i.Address != ""
	case purpose.AttrBloodGroup:
		return i.BloodGroup, i.BloodGroup != ""
	case purpose.AttrCreditScore:
		if i.CreditScore <= 0 {
			return "", false
		}
		return strconv.Itoa(i.CreditScore), true
	default:
		return "", false
	}
}

// MissingAttributes returns the subset of keys the identity cannot disclose.
func (i Identity) MissingAttributes(keys []string, now time.Time) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := i.Attribute(key, now); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
