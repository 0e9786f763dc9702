// Package validator contains the default [domain.Validator] implementation.
// Validation is purely syntactic and always precedes evaluation: an invalid
// query yields an empty result upstream, never an error.
package validator

import (
	"fmt"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/comparer"
	"github.com/kivadb/kiva/internal/adapter/logger"
)

const origin = "validator"

// Validator implements [domain.Validator].
type Validator struct {
	comparer domain.Comparer
	logger   domain.Logger
	operands map[string]func(any) bool
}

// NewValidator returns a new implementation of [domain.Validator].
func NewValidator(options ...domain.ValidatorOption) domain.Validator {
	opts := domain.ValidatorOptions{
		Logger: logger.NewNopLogger(),
	}
	for _, option := range options {
		option(&opts)
	}

	v := &Validator{
		comparer: comparer.NewComparer(),
		logger:   opts.Logger,
	}
	v.operands = map[string]func(any) bool{
		"$exists":   v.isExistsFlag,
		"$eq":       v.isScalar,
		"$ne":       v.isScalar,
		"$gt":       v.isOrdered,
		"$gte":      v.isOrdered,
		"$lt":       v.isOrdered,
		"$lte":      v.isOrdered,
		"$in":       v.isScalarArray,
		"$nin":      v.isScalarArray,
		"$includes": v.isScalar,
		"$like":     v.isString,
		"$type":     v.isTypeName,
	}
	return v
}

// Validate implements [domain.Validator].
func (v *Validator) Validate(query domain.Document) bool {
	if query == nil {
		return v.fail("query must be a non-null object")
	}
	for key, value := range query.Iter() {
		switch key {
		case "$and", "$or":
			arr, ok := value.([]any)
			if !ok {
				return v.fail(fmt.Sprintf("%s operand must be an array", key))
			}
			for _, item := range arr {
				sub, ok := item.(domain.Document)
				if !ok {
					return v.fail(fmt.Sprintf("%s elements must be queries", key))
				}
				if !v.Validate(sub) {
					return false
				}
			}
		case "$not":
			sub, ok := value.(domain.Document)
			if !ok {
				return v.fail("$not operand must be a query")
			}
			if !v.Validate(sub) {
				return false
			}
		case "$where":
			if _, ok := value.(domain.Predicate); !ok {
				return v.fail("$where operand must be a predicate over a document")
			}
		default:
			if !v.validateField(key, value) {
				return false
			}
		}
	}
	return true
}

func (v *Validator) validateField(field string, value any) bool {
	if len(field) > 0 && field[0] == '$' {
		return v.fail(fmt.Sprintf("unknown logical operator %s", field))
	}
	ops, ok := value.(domain.Document)
	if !ok {
		// implicit equality against a literal value, always valid
		return true
	}
	for op, operand := range ops.Iter() {
		check, known := v.operands[op]
		if !known {
			return v.fail(fmt.Sprintf("unknown comparison operator %s on field %s", op, field))
		}
		if !check(operand) {
			return v.fail(fmt.Sprintf("invalid %s operand on field %s", op, field))
		}
	}
	return true
}

func (v *Validator) fail(message string) bool {
	v.logger.Emit(domain.LevelWarn, message, origin)
	return false
}

// $exists takes a boolean or the numbers 0/1.
func (v *Validator) isExistsFlag(operand any) bool {
	if _, ok := operand.(bool); ok {
		return true
	}
	n, ok := v.comparer.Number(operand)
	return ok && (n == 0 || n == 1)
}

func (v *Validator) isScalar(operand any) bool {
	switch v.comparer.KindOf(operand) {
	case domain.KindNull, domain.KindBoolean, domain.KindNumber, domain.KindString:
		return true
	default:
		return false
	}
}

func (v *Validator) isOrdered(operand any) bool {
	k := v.comparer.KindOf(operand)
	return k == domain.KindNumber || k == domain.KindString
}

func (v *Validator) isScalarArray(operand any) bool {
	arr, ok := operand.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		if !v.isScalar(item) {
			return false
		}
	}
	return true
}

func (v *Validator) isString(operand any) bool {
	_, ok := operand.(string)
	return ok
}

func (v *Validator) isTypeName(operand any) bool {
	name, ok := operand.(string)
	if !ok {
		return false
	}
	_, ok = domain.KindByName(name)
	return ok
}
