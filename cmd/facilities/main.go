package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/sport-facilities/internal/application"
	"github.com/example/sport-facilities/internal/booking"
	"github.com/example/sport-facilities/internal/config"
	httptransport "github.com/example/sport-facilities/internal/http"
	"github.com/example/sport-facilities/internal/notify"
	"github.com/example/sport-facilities/internal/persistence"
	"github.com/example/sport-facilities/internal/persistence/sqlite"
	"github.com/example/sport-facilities/internal/timezone"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	normalizer, err := timezone.New(cfg.Timezone, cfg.TimezoneFallback)
	if err != nil {
		logger.Error("failed to resolve timezone", "error", err, "timezone", cfg.Timezone, "fallback", cfg.TimezoneFallback)
		os.Exit(1)
	}

	var mailer notify.Mailer
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	dispatcher := notify.NewDispatcher(mailer, cfg.NotifyBuffer, logger)
	defer dispatcher.Close()

	idGenerator := uuid.NewString
	now := time.Now

	facilityRepo := newFacilityRepositoryAdapter(sqlite.NewFacilityRepository(storage))
	reservationRepo := newReservationRepositoryAdapter(sqlite.NewReservationRepository(storage))
	userDirectory := newUserDirectoryAdapter(sqlite.NewUserRepository(storage))

	validator := booking.NewValidator(normalizer)

	facilityService := application.NewFacilityService(facilityRepo, idGenerator, now, logger)
	reservationService := application.NewReservationService(reservationRepo, facilityRepo, userDirectory, dispatcher, validator, normalizer.Location(), idGenerator, now, logger)

	facilityHandler := httptransport.NewFacilityHandler(facilityService, logger)
	reservationHandler := httptransport.NewReservationHandler(reservationService, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Facilities:   facilityHandler,
		Reservations: reservationHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireIdentity(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("facilities API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type facilityRepositoryAdapter struct {
	repo persistence.FacilityRepository
}

func newFacilityRepositoryAdapter(repo persistence.FacilityRepository) *facilityRepositoryAdapter {
	return &facilityRepositoryAdapter{repo: repo}
}

func (a *facilityRepositoryAdapter) CreateFacility(ctx context.Context, facility application.Facility) (application.Facility, error) {
	if err := a.repo.CreateFacility(ctx, toPersistenceFacility(facility)); err != nil {
		return application.Facility{}, err
	}
	return a.GetFacility(ctx, facility.ID)
}

func (a *facilityRepositoryAdapter) UpdateFacility(ctx context.Context, facility application.Facility) (application.Facility, error) {
	if err := a.repo.UpdateFacility(ctx, toPersistenceFacility(facility)); err != nil {
		return application.Facility{}, err
	}
	return a.GetFacility(ctx, facility.ID)
}

func (a *facilityRepositoryAdapter) GetFacility(ctx context.Context, id string) (application.Facility, error) {
	stored, err := a.repo.GetFacility(ctx, id)
	if err != nil {
		return application.Facility{}, err
	}
	return toApplicationFacility(stored)
}

func (a *facilityRepositoryAdapter) ListFacilities(ctx context.Context) ([]application.Facility, error) {
	models, err := a.repo.ListFacilities(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	facilities := make([]application.Facility, 0, len(models))
	for _, model := range models {
		facility, err := toApplicationFacility(model)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, facility)
	}
	return facilities, nil
}

func (a *facilityRepositoryAdapter) DeleteFacility(ctx context.Context, id string) error {
	return a.repo.DeleteFacility(ctx, id)
}

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

func (a *reservationRepositoryAdapter) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.CreateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return a.GetReservation(ctx, reservation.ID)
}

func (a *reservationRepositoryAdapter) UpdateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.UpdateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return a.GetReservation(ctx, reservation.ID)
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) DeleteReservation(ctx context.Context, id string) error {
	return a.repo.DeleteReservation(ctx, id)
}

func (a *reservationRepositoryAdapter) ListReservationsByFacility(ctx context.Context, facilityID string) ([]application.Reservation, error) {
	models, err := a.repo.ListReservationsByFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *reservationRepositoryAdapter) ListReservations(ctx context.Context) ([]application.Reservation, error) {
	models, err := a.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

type userDirectoryAdapter struct {
	repo persistence.UserRepository
}

func newUserDirectoryAdapter(repo persistence.UserRepository) *userDirectoryAdapter {
	return &userDirectoryAdapter{repo: repo}
}

func (a *userDirectoryAdapter) FindUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return application.User{
		ID:          stored.ID,
		Email:       stored.Email,
		DisplayName: stored.DisplayName,
		IsAdmin:     stored.IsAdmin,
	}, nil
}

func toPersistenceFacility(facility application.Facility) persistence.Facility {
	rules := make([]persistence.AvailabilityRule, 0, len(facility.Rules))
	for _, rule := range facility.Rules {
		converted := persistence.AvailabilityRule{
			FacilityID:  facility.ID,
			DayOfWeek:   rule.Day,
			IsAvailable: rule.IsAvailable,
		}
		if rule.Opens != nil {
			opens := rule.Opens.String()
			converted.OpeningTime = &opens
		}
		if rule.Closes != nil {
			closes := rule.Closes.String()
			converted.ClosingTime = &closes
		}
		rules = append(rules, converted)
	}

	return persistence.Facility{
		ID:          facility.ID,
		Name:        facility.Name,
		Location:    facility.Location,
		Description: facility.Description,
		Rules:       rules,
		CreatedAt:   facility.CreatedAt,
		UpdatedAt:   facility.UpdatedAt,
	}
}

func toApplicationFacility(model persistence.Facility) (application.Facility, error) {
	rules := make([]application.AvailabilityRule, 0, len(model.Rules))
	for _, rule := range model.Rules {
		converted := application.AvailabilityRule{
			Day:         rule.DayOfWeek,
			IsAvailable: rule.IsAvailable,
		}
		if rule.OpeningTime != nil {
			opens, err := booking.ParseTimeOfDay(*rule.OpeningTime)
			if err != nil {
				return application.Facility{}, fmt.Errorf("stored opening time for facility %s: %w", model.ID, err)
			}
			converted.Opens = &opens
		}
		if rule.ClosingTime != nil {
			closes, err := booking.ParseTimeOfDay(*rule.ClosingTime)
			if err != nil {
				return application.Facility{}, fmt.Errorf("stored closing time for facility %s: %w", model.ID, err)
			}
			converted.Closes = &closes
		}
		rules = append(rules, converted)
	}

	return application.Facility{
		ID:          model.ID,
		Name:        model.Name,
		Location:    model.Location,
		Description: model.Description,
		Rules:       rules,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:          reservation.ID,
		FacilityID:  reservation.FacilityID,
		UserID:      reservation.UserID,
		Start:       reservation.Start.UTC(),
		End:         reservation.End.UTC(),
		Description: reservation.Description,
		CreatedAt:   reservation.CreatedAt,
		UpdatedAt:   reservation.UpdatedAt,
	}
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:          model.ID,
		FacilityID:  model.FacilityID,
		UserID:      model.UserID,
		Start:       model.Start,
		End:         model.End,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toApplicationReservations(models []persistence.Reservation) []application.Reservation {
	if len(models) == 0 {
		return nil
	}
	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, toApplicationReservation(model))
	}
	return reservations
}
