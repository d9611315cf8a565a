// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := mnemoerr.New(mnemoerr.CodeStoreEntryNotFound, "entry missing")
	assert.Equal(t, mnemoerr.CodeStoreEntryNotFound, mnemoerr.CodeOf(err))

	assert.Equal(t, mnemoerr.Code(""), mnemoerr.CodeOf(nil))
	assert.Equal(t, mnemoerr.Code(""), mnemoerr.CodeOf(fmt.Errorf("plain")))
}

func TestWrapNilPassthrough(t *testing.T) {
	assert.NoError(t, mnemoerr.Wrap(nil, mnemoerr.CodeStoreDatabaseFailure, "ignored"))
	assert.NoError(t, mnemoerr.Wrapf(nil, mnemoerr.CodeStoreDatabaseFailure, "ignored %d", 1))
	assert.NoError(t, mnemoerr.With(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := mnemoerr.Wrap(cause, mnemoerr.CodeStoreDatabaseFailure, "storing entry",
		mnemoerr.FieldEntryID("mem-1"))

	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeStoreDatabaseFailure, mnemoerr.CodeOf(err))
	assert.Contains(t, err.Error(), "storing entry")

	fields := mnemoerr.FieldsOf(err)
	assert.Equal(t, "mem-1", fields["entry_id"])
}

func TestClassifiers(t *testing.T) {
	assert.True(t, mnemoerr.IsNotFound(mnemoerr.New(mnemoerr.CodeStoreEntryNotFound, "x")))
	assert.True(t, mnemoerr.IsNotFound(mnemoerr.New(mnemoerr.CodeSecretNotFound, "x")))
	assert.False(t, mnemoerr.IsNotFound(mnemoerr.New(mnemoerr.CodeStoreDatabaseFailure, "x")))

	assert.True(t, mnemoerr.IsInvalidInput(mnemoerr.New(mnemoerr.CodeRememberInputInvalid, "x")))
	assert.True(t, mnemoerr.IsInvalidInput(mnemoerr.New(mnemoerr.CodeConfigValidateInvalidValue, "x")))
	assert.False(t, mnemoerr.IsInvalidInput(mnemoerr.New(mnemoerr.CodeRecallSearchFailure, "x")))

	assert.True(t, mnemoerr.IsUpstreamFailure(mnemoerr.New(mnemoerr.CodeEmbedUpstreamFailure, "x")))
	assert.False(t, mnemoerr.IsUpstreamFailure(mnemoerr.New(mnemoerr.CodeRecallSearchFailure, "x")))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code mnemoerr.Code
		want int
	}{
		{mnemoerr.CodeStoreEntryNotFound, http.StatusNotFound},
		{mnemoerr.CodeServerRequestInvalid, http.StatusBadRequest},
		{mnemoerr.CodeEmbedUpstreamFailure, http.StatusBadGateway},
		{mnemoerr.CodeStoreDatabaseFailure, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := mnemoerr.New(tc.code, "x")
		assert.Equal(t, tc.want, mnemoerr.HTTPStatus(err), "code %s", tc.code)
	}
}

func TestHasCode(t *testing.T) {
	err := mnemoerr.Errorf(mnemoerr.CodeCLIDaemonNotRunning, "daemon down")
	assert.True(t, mnemoerr.HasCode(err, mnemoerr.CodeCLIDaemonNotRunning))
	assert.False(t, mnemoerr.HasCode(err, mnemoerr.CodeCLIRequestFailure))
	assert.False(t, mnemoerr.HasCode(nil, mnemoerr.CodeCLIRequestFailure))
}
