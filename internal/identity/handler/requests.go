package handler

import (
	"time"

	"attesta/internal/identity/service"
	dErrors "attesta/pkg/domain-errors"
)

// CaptureRequest is the POST /identity payload.
type CaptureRequest struct {
	FullName    string `json:"fullName"`
	DOB         string `json:"dob"` // YYYY-MM-DD
	Gender      string `json:"gender,omitempty"`
	Address     string `json:"address,omitempty"`
	TaxID       string `json:"taxId,omitempty"`
	BloodGroup  string `json:"bloodGroup,omitempty"`
	CreditScore int    `json:"creditScore,omitempty"`
}

// ToInput validates the payload and converts it to a service input.
func (r CaptureRequest) ToInput() (service.CaptureInput, error) {
	in := service.CaptureInput{
		FullName:    r.FullName,
		Gender:      r.Gender,
		Address:     r.Address,
		TaxID:       r.TaxID,
		BloodGroup:  r.BloodGroup,
		CreditScore: r.CreditScore,
	}
	if r.DOB != "" {
		dob, err := time.Parse("2006-01-02", r.DOB)
		if err != nil {
			return service.CaptureInput{}, dErrors.New(dErrors.CodeValidation, "dob must be formatted YYYY-MM-DD")
		}
		in.DOB = dob
	}
	return in, nil
}
