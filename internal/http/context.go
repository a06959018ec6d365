package http

import (
	"context"
	"log/slog"

	"github.com/example/sport-facilities/internal/application"
	"github.com/example/sport-facilities/internal/logging"
)

type contextKey string

const (
	principalContextKey     contextKey = "principal"
	facilityIDContextKey    contextKey = "facility_id"
	reservationIDContextKey contextKey = "reservation_id"
)

// ContextWithPrincipal returns a derived context containing the resolved principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the resolved principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithFacilityID injects the facility identifier resolved from the request path.
func ContextWithFacilityID(ctx context.Context, facilityID string) context.Context {
	return context.WithValue(ctx, facilityIDContextKey, facilityID)
}

// FacilityIDFromContext extracts a facility identifier previously associated with the context.
func FacilityIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(facilityIDContextKey).(string)
	return id, ok
}

// ContextWithReservationID injects the reservation identifier resolved from the request path.
func ContextWithReservationID(ctx context.Context, reservationID string) context.Context {
	return context.WithValue(ctx, reservationIDContextKey, reservationID)
}

// ReservationIDFromContext extracts a reservation identifier previously associated with the context.
func ReservationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reservationIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
