package handler

import (
	"time"

	"attesta/internal/verification/models"
)

// RequestResponse is the wire shape of one verification request record.
type RequestResponse struct {
	ID             string   `json:"id"`
	Purpose        string   `json:"purpose"`
	Attributes     []string `json:"attributes"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"createdAt"`
	ExpiresAt      string   `json:"expiresAt"`
	RedeemedAt     string   `json:"redeemedAt,omitempty"`
	VerifierDevice string   `json:"verifierDevice,omitempty"`
}

func toRequestResponse(request *models.Request) RequestResponse {
	keys := make([]string, 0, len(request.Attributes))
	for _, attr := range request.Attributes {
		keys = append(keys, attr.Key)
	}
	resp := RequestResponse{
		ID:             request.ID.String(),
		Purpose:        string(request.Purpose),
		Attributes:     keys,
		Status:         string(request.Status),
		CreatedAt:      request.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:      request.ExpiresAt.UTC().Format(time.RFC3339),
		VerifierDevice: request.VerifierDevice,
	}
	if request.RedeemedAt != nil {
		resp.RedeemedAt = request.RedeemedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// DisclosureResponse is the redemption verdict returned to verifiers.
// Attributes are already filtered server-side to the purpose's minimal set.
type DisclosureResponse struct {
	Valid      bool              `json:"valid"`
	Purpose    string            `json:"purpose,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func toDisclosureResponse(result *models.DisclosureResult) DisclosureResponse {
	return DisclosureResponse{
		Valid:      result.Valid,
		Purpose:    string(result.Purpose),
		Attributes: result.Attributes,
	}
}

// LogsResponse is the access log page payload: the holder's display name
// plus the reverse-chronological request history.
type LogsResponse struct {
	Holder string            `json:"holder"`
	Logs   []RequestResponse `json:"logs"`
}
