// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package errors_test

import (
	"fmt"
	"testing"

	"github.com/featurebasedb/indexedlist/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Run("Is", func(t *testing.T) {
		uncoded := newUncoded("uncoded error")
		oor := newErrSlotOutOfRange(7)
		inf := newErrIndexNotFound("by-name")
		oorCustom := errors.New(errSlotOutOfRange, "custom slot message")

		tests := []struct {
			err    error
			target errors.Code
			exp    bool
		}{
			{
				err:    uncoded,
				target: errUncoded,
				exp:    true,
			},
			{
				err:    uncoded,
				target: errSlotOutOfRange,
				exp:    false,
			},
			{
				err:    oor,
				target: errSlotOutOfRange,
				exp:    true,
			},
			{
				err:    oor,
				target: errIndexNotFound,
				exp:    false,
			},
			{
				err:    errors.Wrap(inf, "with message"),
				target: errIndexNotFound,
				exp:    true,
			},
			{
				err:    oorCustom,
				target: errSlotOutOfRange,
				exp:    true,
			},
			{
				err:    fmt.Errorf("plain"),
				target: errSlotOutOfRange,
				exp:    false,
			},
		}

		for i, test := range tests {
			t.Run(fmt.Sprintf("test-%d", i), func(t *testing.T) {
				got := errors.Is(test.err, test.target)
				assert.Equal(t, test.exp, got)
			})
		}
	})

	t.Run("CodeOf", func(t *testing.T) {
		code, ok := errors.CodeOf(errors.Wrap(newErrSlotOutOfRange(3), "set"))
		assert.True(t, ok)
		assert.Equal(t, errSlotOutOfRange, code)

		_, ok = errors.CodeOf(fmt.Errorf("plain"))
		assert.False(t, ok)
	})

	t.Run("Message", func(t *testing.T) {
		err := errors.Wrap(newErrSlotOutOfRange(3), "set")
		assert.Equal(t, "set: slot out of range: 3", err.Error())
	})
}

// Test error codes.

const (
	errUncoded        errors.Code = "Uncoded"
	errSlotOutOfRange errors.Code = "SlotOutOfRange"
	errIndexNotFound  errors.Code = "IndexNotFound"
)

func newUncoded(message string) error {
	return errors.New(
		errUncoded,
		message,
	)
}

func newErrSlotOutOfRange(slot int) error {
	return errors.Newf(
		errSlotOutOfRange,
		"slot out of range: %d", slot,
	)
}

func newErrIndexNotFound(name string) error {
	return errors.New(
		errIndexNotFound,
		"index not found: "+name,
	)
}
