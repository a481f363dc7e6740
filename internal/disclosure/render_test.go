package disclosure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attesta/internal/authority"
	"attesta/internal/purpose"
)

func TestRender_AgeBand(t *testing.T) {
	t.Run("threshold-only disclosure collapses to the band", func(t *testing.T) {
		model := Render(authority.Disclosure{
			Valid:      true,
			Purpose:    string(purpose.KeyAgeVerification),
			Attributes: map[string]string{purpose.AttrAgeOver18: "true"},
		})

		require.Len(t, model.Fields, 1)
		assert.Equal(t, purpose.AttrAgeOver18, model.Fields[0].Label)
		assert.Equal(t, "21+", model.Fields[0].Value, "never surface the raw boolean for an age proof")
	})

	t.Run("exact numeric age is shown as-is", func(t *testing.T) {
		model := Render(authority.Disclosure{
			Valid:      true,
			Purpose:    string(purpose.KeyAgeVerification),
			Attributes: map[string]string{purpose.AttrAgeOver18: "31"},
		})

		require.Len(t, model.Fields, 1)
		assert.Equal(t, "31", model.Fields[0].Value)
	})
}

// TestRender_MedicalEmergency pins selective disclosure end to end: exactly
// the purpose's two fields surface, nothing else from the identity.
func TestRender_MedicalEmergency(t *testing.T) {
	model := Render(authority.Disclosure{
		Valid:   true,
		Purpose: string(purpose.KeyMedicalEmergency),
		Attributes: map[string]string{
			purpose.AttrFullName:   "Jane Roe",
			purpose.AttrBloodGroup: "O+",
		},
	})

	assert.True(t, model.Valid)
	require.Len(t, model.Fields, 2)
	assert.Equal(t, Field{Label: purpose.AttrFullName, Value: "Jane Roe"}, model.Fields[0])
	assert.Equal(t, Field{Label: purpose.AttrBloodGroup, Value: "O+"}, model.Fields[1])
}

func TestRender_InvalidVerdict(t *testing.T) {
	model := Render(authority.Disclosure{
		Valid:      false,
		Purpose:    string(purpose.KeyAgeVerification),
		Attributes: map[string]string{purpose.AttrAgeOver18: "true"},
	})

	assert.False(t, model.Valid)
	assert.Empty(t, model.Purpose)
	require.NotNil(t, model.Fields)
	assert.Empty(t, model.Fields, "an invalid verdict must show nothing")
}

func TestRender_UnknownPurposeShowsVerbatim(t *testing.T) {
	model := Render(authority.Disclosure{
		Valid:      true,
		Purpose:    "passport_renewal",
		Attributes: map[string]string{"B": "2", "A": "1"},
	})

	assert.Empty(t, model.Title)
	require.Len(t, model.Fields, 2)
	assert.Equal(t, "A", model.Fields[0].Label, "leftover keys render in sorted order")
}

// TestRender_Idempotent calls Render twice on the same input and asserts
// identical output and an unmutated input.
func TestRender_Idempotent(t *testing.T) {
	input := authority.Disclosure{
		Valid:   true,
		Purpose: string(purpose.KeyFinancialKYC),
		Attributes: map[string]string{
			purpose.AttrFullName:    "Jane Roe",
			purpose.AttrTaxID:       "ABCDE1234F",
			purpose.AttrCreditScore: "760",
		},
	}

	first := Render(input)
	second := Render(input)
	assert.Equal(t, first, second)
	assert.Equal(t, "Jane Roe", input.Attributes[purpose.AttrFullName], "input must not be mutated")
	assert.Len(t, input.Attributes, 3)
}
