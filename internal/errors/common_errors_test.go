package errors

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeEmptyInput, "sales has no rows", nil),
			want: "[EMPTY_INPUT] sales has no rows",
		},
		{
			name: "with cause",
			err:  NewStorageError("open sales.csv", errors.New("permission denied")),
			want: "[STORAGE] open sales.csv: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_IsSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{"missing field", MissingField("revenue", []string{"category"}), ErrMissingField, true},
		{"invalid argument", InvalidArgument("top_n must be >= 0, got %d", -1), ErrInvalidArgument, true},
		{"empty input", EmptyInput("sales"), ErrEmptyInput, true},
		{"bind", BindError("127.0.0.1:80", errors.New("in use")), ErrBindError, true},
		{"wrapped", fmt.Errorf("build chart: %w", MissingField("x", nil)), ErrMissingField, true},
		{"type mismatch", EmptyInput("sales"), ErrMissingField, false},
		{"parsing has no sentinel", NewParsingError("bad number", nil), ErrInvalidArgument, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestAppError_UnwrapCause(t *testing.T) {
	cause := &net.OpError{Op: "listen", Net: "tcp", Err: errors.New("address already in use")}
	err := BindError("0.0.0.0:8050", cause)

	var opErr *net.OpError
	assert.ErrorAs(t, err, &opErr)
	assert.Same(t, cause, opErr)
	assert.Equal(t, "0.0.0.0:8050", err.Context["addr"])
}

func TestMissingField_Message(t *testing.T) {
	err := MissingField("revenue", []string{"category", "total_value"})

	assert.Contains(t, err.Error(), `"revenue"`)
	assert.Contains(t, err.Error(), "category, total_value")
	assert.Equal(t, "revenue", err.Context["field"])
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "bad port"}
	err.WithContext("port", 70000).WithContext("host", "localhost")

	assert.Equal(t, 70000, err.Context["port"])
	assert.Equal(t, "localhost", err.Context["host"])
}

func TestConstructors_Types(t *testing.T) {
	tests := []struct {
		err  *AppError
		want ErrorType
	}{
		{NewParsingError("p", nil), ErrTypeParsing},
		{NewStorageError("s", nil), ErrTypeStorage},
		{NewConfigError("c", nil), ErrTypeConfig},
		{InvalidArgument("i"), ErrTypeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}
