package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		want string
		v    Validation
	}{
		{
			name: "message only",
			v:    Validation{Code: string(ErrRequiredElementMissing), Message: "missing element b"},
			want: "[cvc-complex-type.2.4.b] missing element b",
		},
		{
			name: "with path",
			v:    Validation{Code: string(ErrUnexpectedElement), Message: "element z not allowed", Path: "/a/z"},
			want: "[cvc-complex-type.2.4.d] element z not allowed at /a/z",
		},
		{
			name: "with expected and actual",
			v: Validation{
				Code:     string(ErrAttributeValueInvalid),
				Message:  "value not allowed",
				Path:     "/a/@kind",
				Expected: []string{"A", "B"},
				Actual:   "C",
			},
			want: "[cvc-enumeration-valid] value not allowed at /a/@kind (expected: A, B) (actual: C)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.v.Error())
		})
	}

	var nilValidation *Validation
	require.Equal(t, "validation <nil>", nilValidation.Error())
}

func TestNewValidationf(t *testing.T) {
	v := NewValidationf(ErrRequiredAttributeMissing, "/a", "attribute %s is required", "id")

	require.Equal(t, string(ErrRequiredAttributeMissing), v.Code)
	require.Equal(t, "attribute id is required", v.Message)
	require.Equal(t, "/a", v.Path)
	require.Equal(t, SeverityError, v.Severity)
}

func TestValidationListErrorAndFilter(t *testing.T) {
	one := Validation{Code: string(ErrRequiredElementMissing), Message: "missing element b"}
	two := Validation{Code: string(ErrContentModelInvalid), Message: "incomplete content", Severity: SeverityWarning}

	require.Equal(t, "no validation errors", ValidationList{}.Error())
	require.Equal(t, "[cvc-complex-type.2.4.b] missing element b (and 1 more)", ValidationList{one, two}.Error())
	require.Equal(t, ValidationList{one}, ValidationList{one, two}.Errors())
	require.Equal(t, "warning", SeverityWarning.String())
}

func TestAsValidations(t *testing.T) {
	list := ValidationList{
		{Code: string(ErrUnexpectedElement), Message: "element z not allowed"},
		{Code: string(ErrAttributeNotDeclared), Message: "attribute q not declared"},
	}
	wrapped := fmt.Errorf("check failed: %w", list)

	got, ok := AsValidations(wrapped)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.Equal(t, string(ErrAttributeNotDeclared), got[1].Code)

	_, ok = AsValidations(fmt.Errorf("plain"))
	require.False(t, ok)
	_, ok = AsValidations(nil)
	require.False(t, ok)
}
