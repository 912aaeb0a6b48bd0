package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authService "github.com/questionit/api/internal/auth/service"
	"github.com/questionit/api/internal/config"
	"github.com/questionit/api/internal/database"
)

// applicationUseCase implements ApplicationUseCase.
type applicationUseCase struct {
	config        *config.Config
	txManager     database.TxManager
	appRepo       ApplicationRepository
	handshakeRepo HandshakeTokenRepository
	sessionRepo   SessionRepository
	keyService    authService.KeyService
	now           func() time.Time
}

// Create registers an application for ownerID.
//
// Returns ErrTooManyApplications once the owner reached the configured quota and
// ErrSameAppName when the owner already has an application with that name, compared
// case-insensitively. Default rights never include InternalUseOnly.
func (a *applicationUseCase) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input *authDomain.CreateApplicationInput,
) (*authDomain.Application, error) {
	count, err := a.appRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count >= a.config.ApplicationsPerUser {
		return nil, authDomain.ErrTooManyApplications
	}

	if err := a.checkName(ctx, ownerID, input.Name, nil); err != nil {
		return nil, err
	}

	key, err := a.keyService.GenerateKey()
	if err != nil {
		return nil, err
	}

	now := a.now()
	app := &authDomain.Application{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       ownerID,
		Name:          input.Name,
		URL:           input.URL,
		Key:           key,
		DefaultRights: authDomain.EncodeRights(input.Rights, 0) & authDomain.DelegableRights,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *applicationUseCase) checkName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := a.appRepo.NameExists(ctx, ownerID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return authDomain.ErrSameAppName
	}
	return nil
}

// owned loads an application and checks ownerID registered it.
func (a *applicationUseCase) owned(ctx context.Context, ownerID, id uuid.UUID) (*authDomain.Application, error) {
	app, err := a.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.OwnerID != ownerID {
		return nil, authDomain.ErrForbidden
	}
	return app, nil
}

// Update edits name, URL and default rights. Rights names left out keep their value.
func (a *applicationUseCase) Update(
	ctx context.Context,
	ownerID uuid.UUID,
	id uuid.UUID,
	input *authDomain.UpdateApplicationInput,
) (*authDomain.Application, error) {
	app, err := a.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := a.checkName(ctx, ownerID, input.Name, &app.ID); err != nil {
		return nil, err
	}

	app.Name = input.Name
	app.URL = input.URL
	app.DefaultRights = authDomain.EncodeRights(input.Rights, app.DefaultRights) & authDomain.DelegableRights
	app.UpdatedAt = a.now()

	if err := a.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// RegenerateKey replaces the application key.
func (a *applicationUseCase) RegenerateKey(
	ctx context.Context,
	ownerID uuid.UUID,
	id uuid.UUID,
) (*authDomain.Application, error) {
	app, err := a.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	key, err := a.keyService.GenerateKey()
	if err != nil {
		return nil, err
	}
	app.Key = key
	app.UpdatedAt = a.now()

	if err := a.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Delete removes the application, its pending handshakes and its sessions in one transaction.
func (a *applicationUseCase) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	return a.txManager.WithTx(ctx, func(ctx context.Context) error {
		app, err := a.owned(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if _, err := a.handshakeRepo.DeleteByApplication(ctx, app.ID); err != nil {
			return err
		}
		if _, err := a.sessionRepo.DeleteByApplication(ctx, app.ID); err != nil {
			return err
		}
		return a.appRepo.Delete(ctx, app.ID)
	})
}

// List returns the applications registered by ownerID.
func (a *applicationUseCase) List(ctx context.Context, ownerID uuid.UUID) ([]*authDomain.Application, error) {
	return a.appRepo.ListByOwner(ctx, ownerID)
}

// ListSubscribed returns the applications holding a live session of userID.
func (a *applicationUseCase) ListSubscribed(ctx context.Context, userID uuid.UUID) ([]*authDomain.Application, error) {
	return a.appRepo.ListSubscribed(ctx, userID, a.now())
}

// Unsubscribe revokes the sessions userID granted to an application. Returns
// ErrResourceNotFound when there were none.
func (a *applicationUseCase) Unsubscribe(ctx context.Context, userID uuid.UUID, applicationID uuid.UUID) error {
	deleted, err := a.sessionRepo.DeleteByUserAndApplication(ctx, userID, applicationID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return authDomain.ErrResourceNotFound
	}
	return nil
}

// NewApplicationUseCase creates a new ApplicationUseCase with the provided dependencies.
func NewApplicationUseCase(
	config *config.Config,
	txManager database.TxManager,
	appRepo ApplicationRepository,
	handshakeRepo HandshakeTokenRepository,
	sessionRepo SessionRepository,
	keyService authService.KeyService,
) ApplicationUseCase {
	return &applicationUseCase{
		config:        config,
		txManager:     txManager,
		appRepo:       appRepo,
		handshakeRepo: handshakeRepo,
		sessionRepo:   sessionRepo,
		keyService:    keyService,
		now:           func() time.Time { return time.Now().UTC() },
	}
}
