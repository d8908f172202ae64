package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	enumMutex   sync.RWMutex
	enumManager = map[reflect.Type]any{}
)

type enum[T ~string] struct {
	values []T
	toEnum map[string]T
}

// New registers value as a valid member of its enum type and returns it, so
// it can be used in var declarations:
//
//	var Active = enum.New(Status("active"))
func New[T ~string](value T) T {
	enumMutex.Lock()
	defer enumMutex.Unlock()

	t := reflect.TypeOf(value)
	e, ok := enumManager[t].(*enum[T])
	if !ok {
		e = &enum[T]{toEnum: make(map[string]T)}
		enumManager[t] = e
	}

	if _, ok := e.toEnum[string(value)]; !ok {
		e.values = append(e.values, value)
	}
	e.toEnum[string(value)] = value

	return value
}

// ToEnum converts s to a registered member of T.
func ToEnum[T ~string](s string) (T, error) {
	enumMutex.RLock()
	defer enumMutex.RUnlock()

	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT)].(*enum[T])
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// Values returns all registered members of T in registration order.
func Values[T ~string]() []T {
	enumMutex.RLock()
	defer enumMutex.RUnlock()

	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT)].(*enum[T])
	if !ok {
		return nil
	}

	return append([]T(nil), e.values...)
}

// IsValid returns true if value is a registered member of its enum type.
func IsValid[T ~string](value T) bool {
	_, err := ToEnum[T](string(value))
	return err == nil
}
