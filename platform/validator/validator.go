// Package validator wraps go-playground struct validation behind an
// injectable type. This is part of the platform layer and contains no
// business logic.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates request DTOs against their struct tags. Handlers
// receive one shared instance through their module constructor.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{
		v: validator.New(),
	}
}

// Struct validates a struct against its validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single value against a tag expression.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation adds a named custom rule usable from struct tags.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
