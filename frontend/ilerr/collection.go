package ilerr

import (
	"errors"
	"log/slog"
	"strconv"
)

// Errors accumulates the errors of a pass. A nil *Errors is empty.
type Errors struct {
	errs []IleError
}

func (r *Errors) With(errs ...IleError) *Errors {
	if r == nil {
		return &Errors{errs: errs}
	}
	r.errs = append(r.errs, errs...)
	return r
}

func (r *Errors) Errors() []IleError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) Len() int {
	if r == nil {
		return 0
	}
	return len(r.errs)
}

func (r *Errors) HasError() bool {
	return r.Len() > 0
}

// WithCode returns the errors of the given code, in the order they were added
func (r *Errors) WithCode(code ErrCode) []IleError {
	var found []IleError
	for _, err := range r.Errors() {
		if err.Code() == code {
			found = append(found, err)
		}
	}
	return found
}

// Err joins the collected errors, or returns nil if there are none
func (r *Errors) Err() error {
	if !r.HasError() {
		return nil
	}
	errs := make([]error, len(r.errs))
	for i, err := range r.errs {
		errs[i] = err
	}
	return errors.Join(errs...)
}

func (r *Errors) LogValue() slog.Value {
	vals := make([]slog.Attr, 0, r.Len())
	for i, v := range r.Errors() {
		vals = append(vals, slog.String("e"+strconv.Itoa(i), FormatWithCode(v)))
	}
	return slog.GroupValue(vals...)
}
