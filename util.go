package memsim

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Number is any integer type that can be used as an address or a length
type Number interface {
	constraints.Integer
}

// CheckPositive returns ErrNonPositive, annotated with the provided name, if number is not greater than zero
func CheckPositive[T Number](number T, name string) error {
	if number <= 0 {
		return cerrors.Wrapf(ErrNonPositive, "%s is %d", name, number)
	}
	return nil
}

// EndAddress returns the first address past a region starting at base with the provided length
func EndAddress[T Number](base, length T) T {
	return base + length
}
