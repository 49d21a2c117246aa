package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command failures so embedding hosts can branch on
// the outcome without parsing messages.
const (
	codeMessageInvalid  = "PIRANHA_COMMAND_MESSAGE_INVALID"
	codeCanceled        = "PIRANHA_COMMAND_CANCELED"
	codeTimedOut        = "PIRANHA_COMMAND_TIMED_OUT"
	codeContextFailed   = "PIRANHA_COMMAND_CONTEXT_FAILED"
	codeExecutionFailed = "PIRANHA_COMMAND_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message rejected").
		WithTextCode(codeMessageInvalid)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled before completion").
			WithTextCode(codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command exceeded its timeout").
			WithTextCode(codeTimedOut)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context failed").
			WithTextCode(codeContextFailed)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(codeExecutionFailed)
}
