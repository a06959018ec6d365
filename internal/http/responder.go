package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/sport-facilities/internal/application"
	"github.com/example/sport-facilities/internal/booking"
)

var (
	errBadRequestBody       = errors.New("Nieprawidłowy format żądania.")
	errBadTimestamp         = errors.New("Nieprawidłowy format daty. Wymagany jest format RFC 3339.")
	errBadTimeOfDay         = errors.New("Nieprawidłowy format godziny. Wymagany jest format HH:MM lub HH:MM:SS.")
	errInvalidFacilityID    = errors.New("Nieprawidłowy identyfikator obiektu.")
	errInvalidReservationID = errors.New("Nieprawidłowy identyfikator rezerwacji.")
	errMissingIdentity      = errors.New("Wymagane uwierzytelnienie.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "Brak uprawnień do wykonania tej operacji.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Nie znaleziono zasobu."})
	default:
		var rErr *booking.RejectionError
		if errors.As(err, &rErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				ErrorCode: strings.ToUpper(string(rErr.Reason)),
				Message:   localizeRejection(rErr.Reason),
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Dane wejściowe są nieprawidłowe.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Wystąpił wewnętrzny błąd serwera."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Nieprawidłowe żądanie."
	case http.StatusUnauthorized:
		return "Wymagane uwierzytelnienie."
	case http.StatusForbidden:
		return "Brak uprawnień do wykonania tej operacji."
	case http.StatusNotFound:
		return "Nie znaleziono zasobu."
	case http.StatusUnprocessableEntity:
		return "Dane wejściowe są nieprawidłowe."
	default:
		return "Wystąpił wewnętrzny błąd serwera."
	}
}

func localizeRejection(reason booking.Reason) string {
	switch reason {
	case booking.ReasonInvalidInterval:
		return "Czas rozpoczęcia musi być wcześniejszy niż czas zakończenia."
	case booking.ReasonNotAvailableThisDay:
		return "Obiekt nie jest dostępny w wybranym dniu."
	case booking.ReasonOutsideOpeningHours:
		return "Wybrane godziny rezerwacji wykraczają poza godziny dostępności obiektu."
	case booking.ReasonOverlap:
		return "W wybranym terminie obiekt jest już zarezerwowany."
	default:
		return "Rezerwacja została odrzucona."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "name is required":
		return "Nazwa obiektu jest wymagana."
	case "day of week must be between 0 and 6":
		return "Dzień tygodnia musi być wartością od 0 do 6."
	case "at most one rule per day of week":
		return "Dozwolona jest najwyżej jedna reguła dostępności na dzień tygodnia."
	case "available days require opening and closing times":
		return "Dostępne dni wymagają godziny otwarcia i zamknięcia."
	case "opening time must not be after closing time":
		return "Godzina otwarcia nie może być późniejsza niż godzina zamknięcia."
	case "closed days must not carry opening hours":
		return "Dni zamknięte nie mogą mieć godzin otwarcia."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
