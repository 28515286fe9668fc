package ilerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilErrorsIsEmpty(t *testing.T) {
	var errs *Errors

	assert.False(t, errs.HasError())
	assert.Equal(t, 0, errs.Len())
	assert.Nil(t, errs.Errors())
	assert.NoError(t, errs.Err())
}

func TestErrorsCollect(t *testing.T) {
	var errs *Errors
	errs = errs.With(New(NewUnknownVariable{Name: "?3"}))
	errs = errs.With(New(NewBadFixture{File: "a.yaml", Reason: "no vars"}))

	require.Equal(t, 2, errs.Len())
	assert.Len(t, errs.WithCode(UnknownVariable), 1)
	assert.Len(t, errs.WithCode(Parse), 0)

	joined := errs.Err()
	require.Error(t, joined)
	assert.Contains(t, joined.Error(), "inference variable '?3' was not declared")
	assert.Contains(t, joined.Error(), "a.yaml: no vars")

	var badFixture NewBadFixture
	assert.True(t, errors.As(joined, &badFixture))
	assert.Equal(t, "a.yaml", badFixture.File)
}

func TestUnclassifiedUnwraps(t *testing.T) {
	cause := errors.New("disk on fire")
	err := New(Unclassified{From: cause})

	assert.Equal(t, None, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "(E000) unclassified error: disk on fire", FormatWithCode(err))
}

func TestFormatWithCode(t *testing.T) {
	err := New(NewParse{Positioner: Span{Start: 4, Stop: 5}, Source: "Vec<", ParserMessage: "expected a type"})

	assert.Equal(t, `(E001) expected a type (at offset 4 of "Vec<")`, FormatWithCode(err))
	assert.Equal(t, "expected a type", NewParse{ParserMessage: "expected a type"}.Error())
}
