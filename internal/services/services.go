package services

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/winnie-backend/internal/nutrition/guidance"
	"github.com/yungbote/winnie-backend/internal/platform/apierr"
	"github.com/yungbote/winnie-backend/internal/platform/ctxutil"
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var errUnauthorized = apierr.Newf(http.StatusUnauthorized, "unauthorized", "unauthorized")

func requireUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, errUnauthorized
	}
	return id, nil
}

func invalidRequest(err error) error {
	return apierr.New(http.StatusBadRequest, "invalid_request", err)
}

// cuisineOrDefault normalizes a requested cuisine, defaulting to the
// guidance table's default.
func cuisineOrDefault(c string) string {
	if c = guidance.NormalizeCuisine(c); c != "" {
		return c
	}
	return guidance.DefaultCuisine
}
