package handler

import (
	"attesta/internal/purpose"
	dErrors "attesta/pkg/domain-errors"
)

// GenerateRequest is the POST /verify/generate payload. Attributes is an
// optional client echo of the purpose's attribute list; the authority always
// issues the catalog's full allow-list, but an attribute outside it is
// rejected instead of ignored so a confused client fails loudly.
type GenerateRequest struct {
	Purpose    string   `json:"purpose"`
	Attributes []string `json:"attributes,omitempty"`
}

// Validate checks the payload against the purpose catalog.
func (r GenerateRequest) Validate() (purpose.Purpose, error) {
	if r.Purpose == "" {
		return purpose.Purpose{}, dErrors.New(dErrors.CodeBadRequest, "purpose is required")
	}
	p, err := purpose.Get(purpose.Key(r.Purpose))
	if err != nil {
		return purpose.Purpose{}, err
	}
	for _, attr := range r.Attributes {
		if !p.Requires(attr) {
			return purpose.Purpose{}, dErrors.New(dErrors.CodeBadRequest, "attribute not allowed for purpose: "+attr)
		}
	}
	return p, nil
}
