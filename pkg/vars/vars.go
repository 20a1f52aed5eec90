// Package vars holds the scalar variables and DIMensioned arrays of a running
// program.
package vars

import (
	"errors"
	"fmt"
	"sort"

	"trs80/pkg/basic"
)

var (
	ErrUndefinedArray    = errors.New("undefined array")
	ErrIndexOutOfRange   = errors.New("subscript out of range")
	ErrTypeMismatch      = basic.ErrTypeMismatch
	ErrNegativeDimension = errors.New("negative array size")
)

// Store maps names to values. Scalars and arrays live in separate namespaces,
// so A and A(1) never collide.
type Store struct {
	scalars map[string]basic.Value
	arrays  map[string][]basic.Value
}

func New() *Store {
	return &Store{
		scalars: make(map[string]basic.Value),
		arrays:  make(map[string][]basic.Value),
	}
}

// Get returns the value bound to name. ok is false when name was never
// assigned.
func (s *Store) Get(name string) (basic.Value, bool) {
	v, ok := s.scalars[name]
	return v, ok
}

// Set binds a scalar. String variables take any value and store its printed
// form; numeric variables reject strings.
func (s *Store) Set(name string, v basic.Value) error {
	v, err := coerce(name, v)
	if err != nil {
		return err
	}
	s.scalars[name] = v
	return nil
}

func coerce(name string, v basic.Value) (basic.Value, error) {
	if basic.IsStringName(name) {
		if v.Kind != basic.Text {
			return basic.Str(v.String()), nil
		}
		return v, nil
	}
	if v.Kind != basic.Number {
		return basic.Value{}, fmt.Errorf("%w: cannot assign %s to %s", ErrTypeMismatch, v.Quote(), name)
	}
	return v, nil
}

// Dim allocates size+1 zeroed slots for name, replacing any existing array.
func (s *Store) Dim(name string, size int) error {
	if size < 0 {
		return fmt.Errorf("%w: DIM %s(%d)", ErrNegativeDimension, name, size)
	}
	arr := make([]basic.Value, size+1)
	zero := basic.Zero(name)
	for i := range arr {
		arr[i] = zero
	}
	s.arrays[name] = arr
	return nil
}

// Len reports the slot count of an array, or -1 when it is undefined.
func (s *Store) Len(name string) int {
	arr, ok := s.arrays[name]
	if !ok {
		return -1
	}
	return len(arr)
}

func (s *Store) slot(name string, index int) (*basic.Value, error) {
	arr, ok := s.arrays[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedArray, name)
	}
	if index < 0 || index >= len(arr) {
		return nil, fmt.Errorf("%w: %s(%d)", ErrIndexOutOfRange, name, index)
	}
	return &arr[index], nil
}

// GetElem reads name(index).
func (s *Store) GetElem(name string, index int) (basic.Value, error) {
	p, err := s.slot(name, index)
	if err != nil {
		return basic.Value{}, err
	}
	return *p, nil
}

// SetElem writes name(index) with the same coercion as Set.
func (s *Store) SetElem(name string, index int, v basic.Value) error {
	p, err := s.slot(name, index)
	if err != nil {
		return err
	}
	v, err = coerce(name, v)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Names returns the bound scalar names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.scalars))
	for name := range s.scalars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Arrays returns the DIMensioned array names in sorted order.
func (s *Store) Arrays() []string {
	names := make([]string, 0, len(s.arrays))
	for name := range s.arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Array returns a copy of an array's slots.
func (s *Store) Array(name string) []basic.Value {
	arr, ok := s.arrays[name]
	if !ok {
		return nil
	}
	return append([]basic.Value(nil), arr...)
}

// Restore replaces a whole array. It is used when resuming a saved machine.
func (s *Store) Restore(name string, values []basic.Value) {
	s.arrays[name] = append([]basic.Value(nil), values...)
}

// Clear forgets every scalar and array.
func (s *Store) Clear() {
	clear(s.scalars)
	clear(s.arrays)
}
