package apimodels

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("predict interval: %w", WrapError(TransportError, cause, "dial failed"))

	assert.Equal(t, TransportError, KindOf(err))
	assert.ErrorIs(t, err, cause, "cause should stay reachable")
	assert.ErrorIs(t, err, &Error{Kind: TransportError})
	assert.NotErrorIs(t, err, &Error{Kind: ServiceError})

	assert.Equal(t, InvalidInput, KindOf(NewError(InvalidInput, "bad interval")))
	assert.Equal(t, TransportError, KindOf(errors.New("plain")), "unclassified errors count as transport failures")
}

func TestUserMessage(t *testing.T) {
	cases := map[ErrorKind]string{
		MissingCredential:    "Enter your API key",
		InvalidInput:         "Invalid input: x",
		AuthenticationFailed: "rejected the API key",
		TransportError:       "could not be reached: x",
		ServiceError:         "rejected the request: x",
		RenderError:          "could not be displayed: x",
	}
	for kind, want := range cases {
		assert.Contains(t, UserMessage(NewError(kind, "x")), want, "kind %s", kind)
	}
	assert.Contains(t, UserMessage(errors.New("boom")), "unexpectedly")
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "ServiceError: bad coordinates", NewError(ServiceError, "bad coordinates").Error())
	assert.Equal(t, "TransportError: timeout: eof", WrapError(TransportError, errors.New("eof"), "timeout").Error())
}

func TestActionValid(t *testing.T) {
	for _, a := range Actions {
		assert.True(t, a.Valid(), "action %s", a)
	}
	assert.False(t, Action("plot").Valid())
}
