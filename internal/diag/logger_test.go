package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	Logf("test message")
	require.True(t, called)

	SetLogger(nil)
	require.NotPanics(t, func() { Logf("test message") })

	noOpCalled := false
	SetLogger(func(format string, v ...interface{}) { noOpCalled = true })
	Logf("test")
	require.True(t, noOpCalled)

	noOpCalled = false
	SetLogger(nil)
	Logf("test")
	require.False(t, noOpCalled)
}

func TestLogfDefault(t *testing.T) {
	require.NotNil(t, Logf)
	require.NotPanics(t, func() { Logf("test message: %s", "value") })
}
