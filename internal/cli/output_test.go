package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitkit/internal/collect"
	"github.com/roach88/hitkit/internal/fixture"
	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeNotFound, "no such product", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E004", resp.Error.Code)
	assert.Equal(t, "no such product", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error("E001", "load failed", map[string]string{"file": "a.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "Error [E001]: load failed\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E001", "load failed", map[string]string{"file": "a.yaml"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("event %s", "1:0:1")

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Equal(t, "event 1:0:1\n", errBuf.String())
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := collect.NewUndeclaredError("gaushit")
	err := formatter.Fail(ExitFailure, "event 1:0:1", cause)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, Reported(err))
	assert.ErrorIs(t, err, cause)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDeclaration, resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError,
		GetExitCode(fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("x")))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.False(t, Reported(NewExitError(ExitFailure, "not printed")))
	assert.False(t, Reported(errors.New("plain")))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "failed to open database: boom",
		WrapExitError(ExitCommandError, "failed to open database", errors.New("boom")).Error())
	assert.Equal(t, "--db is required", NewExitError(ExitCommandError, "--db is required").Error())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"geometry", &geometry.LoadError{Field: "detector.name", Message: "empty"}, ErrCodeInvalidGeometry},
		{"fixture", fixture.ValidationErrors{{Field: "events", Message: "required"}}, ErrCodeInvalidFixture},
		{"not_found", fmt.Errorf("read: %w", store.ErrProductNotFound), ErrCodeNotFound},
		{"already_written", fmt.Errorf("write: %w", store.ErrAlreadyCommitted), ErrCodeAlreadyWritten},
		{"unknown_channel", fmt.Errorf("hit: %w", geometry.ErrUnknownChannel), ErrCodeUnknownChannel},
		{"undeclared", collect.NewUndeclaredError("x"), ErrCodeDeclaration},
		{"duplicate", collect.NewDuplicateError("x"), ErrCodeDeclaration},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}
