package core

import (
	"errors"
	"reflect"
)

// ErrorDetail is the error half of a Result.
type ErrorDetail struct {
	Message string `json:"message"`
	Cause   Cause  `json:"cause"`
}

// Result is the envelope returned for every action and by the HTTP API.
// Exactly one of Data and Error is set.
type Result struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// OK wraps a payload. A nil payload is reported as an unknown failure
// so that a Result is never empty.
func OK(data any) Result {
	if isNil(data) {
		return Failed(Unknown(errors.New("empty payload"), "operation returned no data"))
	}
	return Result{Data: data}
}

// Failed wraps err. A nil err is itself reported as an unknown failure.
func Failed(err error) Result {
	if err == nil {
		return Result{Error: &ErrorDetail{Message: "operation failed without an error", Cause: CauseUnknown}}
	}
	return Result{Error: &ErrorDetail{Message: err.Error(), Cause: CauseOf(err)}}
}

// ResultOf builds a Result from the usual (value, error) pair.
func ResultOf[T any](v T, err error) Result {
	if err != nil {
		return Failed(err)
	}
	return OK(v)
}

// Succeeded reports whether the result carries a payload.
func (r Result) Succeeded() bool { return r.Error == nil }

// Validate checks the exactly-one-of invariant.
func (r Result) Validate() error {
	switch {
	case r.Error != nil && r.Data != nil:
		return errors.New("result carries both data and error")
	case r.Error == nil && isNil(r.Data):
		return errors.New("result carries neither data nor error")
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
