package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
		"123e4567-e89b-12d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"{0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b}",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidYearMonth(t *testing.T) {
	valid := []string{"2024-01", "2024-12", "1999-09"}
	invalid := []string{"2024-13", "2024-00", "2024-1", "24-01", "2024/01", ""}
	for _, s := range valid {
		if !IsValidYearMonth(s) {
			t.Errorf("IsValidYearMonth(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidYearMonth(s) {
			t.Errorf("IsValidYearMonth(%q) = true, want false", s)
		}
	}
}

func TestIsValidErrorCode(t *testing.T) {
	valid := []string{"E_LIFT_04", "BATT-LOW", "E1"}
	invalid := []string{"e_lift", "E", "E LIFT", ""}
	for _, s := range valid {
		if !IsValidErrorCode(s) {
			t.Errorf("IsValidErrorCode(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidErrorCode(s) {
			t.Errorf("IsValidErrorCode(%q) = true, want false", s)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "robot_id", Message: "robot_id is required"},
		{Field: "error_code", Message: "error_code is invalid"},
	}
	if got := errs.Error(); got != "robot_id: robot_id is required; error_code: error_code is invalid" {
		t.Errorf("Error() = %q", got)
	}
	if m := errs.ToMap(); len(m) != 2 || m["robot_id"] != "robot_id is required" {
		t.Errorf("ToMap() = %v", m)
	}
}

func TestIsInSlice(t *testing.T) {
	if !IsInSlice("install", []string{"install", "remove"}) {
		t.Error("IsInSlice(install) = false, want true")
	}
	if IsInSlice("swap", []string{"install", "remove"}) {
		t.Error("IsInSlice(swap) = true, want false")
	}
}
