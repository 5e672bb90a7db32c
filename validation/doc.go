// Package validation provides input validation for weave configuration and
// replication specs.
//
// Struct tag validation (using the validator library) covers configuration
// structs; the programmatic Validator collects field errors for structures
// whose rules depend on each other, such as the parameter names of a spec.
//
// # Struct Tag Validation
//
//	type Defaults struct {
//	    Weave string `yaml:"weave" validate:"omitempty,oneof=maximal minimal strict"`
//	    Depth int    `yaml:"max_aggregation_depth" validate:"gte=0"`
//	}
//	err := validation.Validate(d)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Identifier("name", name).Unique("entries", names)
//	err := v.Err()
package validation
