package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/weave/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "a")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorIdentifier(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"a", true},
		{"_hidden", true},
		{"model.lr", true},
		{"batch-size", true},
		{"", false},
		{"1st", false},
		{"has space", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := New().Identifier("name", tt.value)
			if v.HasErrors() == tt.ok {
				t.Errorf("Identifier(%q) errors=%v, want ok=%v", tt.value, v.Errors(), tt.ok)
			}
		})
	}
}

func TestValidatorUnique(t *testing.T) {
	v := New().Unique("entries", []string{"a", "b", "c"})
	if v.HasErrors() {
		t.Errorf("unexpected errors %v", v.Errors())
	}

	v2 := New().Unique("entries", []string{"b", "a", "b", "a", "c"})
	if !v2.HasErrors() {
		t.Fatal("expected duplicate error")
	}
	if msg := v2.Errors()[0].Message; msg != "duplicate names: a, b" {
		t.Errorf("message = %q", msg)
	}
}

func TestValidatorNotEmpty(t *testing.T) {
	if New().NotEmpty("chains", 2).HasErrors() {
		t.Error("expected no error")
	}
	if !New().NotEmpty("chains", 0).HasErrors() {
		t.Error("expected error for empty list")
	}
}

func TestValidatorRange(t *testing.T) {
	tests := []struct {
		name  string
		value int
		ok    bool
	}{
		{"inside", 25, true},
		{"below", 5, false},
		{"above", 101, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New().Range("depth", tt.value, 18, 100)
			if v.HasErrors() == tt.ok {
				t.Errorf("Range(%d) errors=%v", tt.value, v.Errors())
			}
		})
	}
}

func TestValidatorMinMax(t *testing.T) {
	v := New().Min("replicates", 5, 0).Max("replicates", 5, 10)
	if v.HasErrors() {
		t.Error("expected no errors")
	}
	if !New().Min("replicates", -1, 0).HasErrors() {
		t.Error("expected error for value below min")
	}
	if !New().Max("depth", 11, 10).HasErrors() {
		t.Error("expected error for value above max")
	}
}

func TestValidatorOneOf(t *testing.T) {
	weaves := []string{"maximal", "minimal", "strict"}
	if New().OneOf("weave", "strict", weaves).HasErrors() {
		t.Error("expected no error for valid value")
	}
	if !New().OneOf("weave", "loose", weaves).HasErrors() {
		t.Error("expected error for invalid value")
	}
	if New().OneOf("weave", "", weaves).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(false, "field", "custom error")
	if !v.HasErrors() {
		t.Fatal("expected error for false condition")
	}
	if v.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Required("name", "x").Validate() != nil {
		t.Error("expected nil for valid input")
	}
	if New().Err() != nil {
		t.Error("Err should return untyped nil without errors")
	}

	v := New().Required("name", "").Required("weave", "")
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %s", appErr.Code)
	}
	if appErr.Details == nil {
		t.Fatal("expected details in error")
	}
	if !strings.Contains(appErr.Message, "name") || !strings.Contains(appErr.Message, "weave") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
	if !errors.IsCode(v.Err(), errors.ErrCodeInvalidInput) {
		t.Error("Err should carry the invalid input code")
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("name", "a").Identifier("name", "a").Min("n", 1, 0)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

type tracing struct {
	Endpoint   string  `yaml:"endpoint" validate:"omitempty,hostname_port"`
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

type settings struct {
	Name    string  `yaml:"name" validate:"required,identifier"`
	Weave   string  `yaml:"weave" validate:"omitempty,oneof=maximal minimal strict"`
	Depth   int     `yaml:"max_aggregation_depth" validate:"gte=0"`
	Tracing tracing `yaml:"tracing"`
}

func TestStructValidateValid(t *testing.T) {
	s := settings{Name: "sweep", Weave: "strict", Tracing: tracing{Endpoint: "localhost:4318", SampleRate: 0.5}}
	if err := Validate(s); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	s := settings{Name: "9lives", Weave: "loose", Depth: -1, Tracing: tracing{SampleRate: 2}}
	err := Validate(s)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"name: must be a valid identifier",
		"weave: must be one of: maximal minimal strict",
		"max_aggregation_depth: must be greater than or equal to 0",
		"tracing.sample_rate: must be less than or equal to 1",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatal("expected AppError")
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 4 {
		t.Errorf("fields detail = %v", appErr.Details["fields"])
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("name", "value"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected error for empty required field")
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("SampleRate"); got != "sample_rate" {
		t.Errorf("toSnakeCase = %q", got)
	}
}
