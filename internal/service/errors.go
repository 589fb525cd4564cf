package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/swisscoin/internal/auth"
	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/middleware"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/internal/validate"
)

var errNotInvolved = errors.New("caller is not a party to this record")

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	var ce *connect.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ce):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, ledger.ErrOverSettlement),
		errors.Is(err, ledger.ErrDirectionInconsistent),
		errors.Is(err, ledger.ErrInactive):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ledger.ErrDuplicatePeriod),
		errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case ledger.IsValidation(err),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrMissingName),
		errors.Is(err, money.ErrInvalidFormat),
		errors.Is(err, money.ErrTooPrecise),
		errors.Is(err, money.ErrOverflow):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// fail logs err and returns it as a Connect error.
func fail(op string, err error, args ...any) error {
	cerr := toConnectError(err)
	code := connect.CodeOf(cerr)
	args = append(args, "code", code.String(), "error", err)
	if code == connect.CodeInternal {
		slog.Error(op+" failed", args...)
	} else {
		slog.Warn(op+" failed", args...)
	}
	return cerr
}

// caller returns the authenticated party ID.
func caller(ctx context.Context) (string, error) {
	partyID := middleware.GetPartyID(ctx)
	if partyID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return partyID, nil
}

// checkRequest validates a request message against its struct tags.
func checkRequest(msg any) error {
	if err := validate.Struct(msg); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

func permissionDenied(err error) error {
	return connect.NewError(connect.CodePermissionDenied, err)
}
