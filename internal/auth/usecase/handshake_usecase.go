package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authService "github.com/questionit/api/internal/auth/service"
	"github.com/questionit/api/internal/config"
	"github.com/questionit/api/internal/database"
	apperrors "github.com/questionit/api/internal/errors"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// handshakeUseCase implements HandshakeUseCase.
type handshakeUseCase struct {
	config           *config.Config
	txManager        database.TxManager
	appRepo          ApplicationRepository
	handshakeRepo    HandshakeTokenRepository
	sessionRepo      SessionRepository
	userRepo         UserRepository
	cipher           authService.HandshakeCipher
	signer           authService.CredentialSigner
	keyService       authService.KeyService
	validatorService authService.ValidatorService
	now              func() time.Time
}

// RequestToken creates a pending handshake.
//
// The requested rights are applied over the application's default rights and capped by
// them, so an application can never ask for more than it was registered with. The rights
// travel sealed inside the returned token; nothing else is disclosed.
func (h *handshakeUseCase) RequestToken(
	ctx context.Context,
	input *authDomain.RequestHandshakeInput,
) (*authDomain.RequestHandshakeOutput, error) {
	app, err := h.appRepo.GetByKey(ctx, input.ApplicationKey)
	if err != nil {
		return nil, err
	}

	payload := authDomain.HandshakePayload{
		CorrelationID: uuid.NewString(),
		Rights:        authDomain.CapRights(input.Rights, app.DefaultRights),
	}

	sealed, err := h.cipher.Seal(app.ID, payload)
	if err != nil {
		return nil, err
	}

	token := &authDomain.HandshakeToken{
		ID:            uuid.Must(uuid.NewV7()),
		Token:         sealed,
		ApplicationID: app.ID,
		RedirectTo:    input.RedirectTo,
		CreatedAt:     h.now(),
	}
	if err := h.handshakeRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &authDomain.RequestHandshakeOutput{Token: sealed}, nil
}

// pending loads a handshake that can still be approved.
func (h *handshakeUseCase) pending(ctx context.Context, token string) (*authDomain.HandshakeToken, error) {
	handshake, err := h.handshakeRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, authDomain.ErrHandshakeTokenNotFound) {
			return nil, authDomain.ErrInvalidExpiredToken
		}
		return nil, err
	}
	if handshake.IsExpired(h.now(), h.config.HandshakeExpiration) {
		return nil, authDomain.ErrInvalidExpiredToken
	}
	if handshake.IsApproved() {
		return nil, authDomain.ErrTokenAlreadyApproved
	}
	return handshake, nil
}

// Details returns what the user is asked to approve.
func (h *handshakeUseCase) Details(ctx context.Context, token string) (*authDomain.HandshakeDetails, error) {
	handshake, err := h.pending(ctx, token)
	if err != nil {
		return nil, err
	}

	app, err := h.appRepo.GetByID(ctx, handshake.ApplicationID)
	if err != nil {
		if errors.Is(err, authDomain.ErrApplicationNotFound) {
			return nil, authDomain.ErrInvalidExpiredToken
		}
		return nil, err
	}

	payload, err := h.cipher.Open(app.ID, handshake.Token)
	if err != nil {
		return nil, authDomain.ErrInvalidExpiredToken
	}

	return &authDomain.HandshakeDetails{
		ApplicationName: app.Name,
		ApplicationURL:  app.URL,
		CreatedAt:       handshake.CreatedAt,
		Rights:          payload.Rights.Named(),
	}, nil
}

// Approve approves or denies a pending handshake.
//
// On denial the handshake is deleted and the callback, if any, receives denied=<token>.
// On approval the user becomes the owner and a validator is generated: an opaque value
// appended to the callback as validator=<value>, or a 6 digit PIN for out-of-band flows.
// Only the validator hash is stored.
func (h *handshakeUseCase) Approve(
	ctx context.Context,
	user *userDomain.User,
	input *authDomain.ApproveHandshakeInput,
) (*authDomain.ApproveHandshakeOutput, error) {
	if input.Token != "" && input.Deny != "" {
		return nil, authDomain.ErrBadRequest
	}
	if input.Token == "" && input.Deny == "" {
		return nil, authDomain.ErrBadRequest
	}

	if input.Deny != "" {
		return h.deny(ctx, input.Deny)
	}

	handshake, err := h.pending(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	if handshake.IsOutOfBand() {
		pin, hash, err := h.validatorService.GeneratePIN()
		if err != nil {
			return nil, err
		}
		if err := h.handshakeRepo.Approve(ctx, handshake.ID, user.ID, hash); err != nil {
			return nil, err
		}
		return &authDomain.ApproveHandshakeOutput{PIN: pin}, nil
	}

	validator, hash, err := h.validatorService.GenerateValidator()
	if err != nil {
		return nil, err
	}
	callback, err := withQuery(handshake.RedirectTo, "validator", validator)
	if err != nil {
		return nil, err
	}
	if err := h.handshakeRepo.Approve(ctx, handshake.ID, user.ID, hash); err != nil {
		return nil, err
	}
	return &authDomain.ApproveHandshakeOutput{Validator: validator, URL: callback}, nil
}

func (h *handshakeUseCase) deny(ctx context.Context, token string) (*authDomain.ApproveHandshakeOutput, error) {
	handshake, err := h.pending(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := h.handshakeRepo.Delete(ctx, handshake.ID); err != nil {
		if errors.Is(err, authDomain.ErrHandshakeTokenNotFound) {
			return nil, authDomain.ErrInvalidExpiredToken
		}
		return nil, err
	}

	output := &authDomain.ApproveHandshakeOutput{Denied: true}
	if !handshake.IsOutOfBand() {
		callback, err := withQuery(handshake.RedirectTo, "denied", token)
		if err != nil {
			return nil, err
		}
		output.DeniedURL = callback
	}
	return output, nil
}

// Exchange consumes an approved handshake.
//
// The handshake row is locked for the duration of the transaction and deleted before
// commit; a concurrent exchange either waits and finds it gone or fails on the delete.
// Checks run in order: token and application exist and match, token not expired, token
// approved, validator matches, sealed payload opens.
func (h *handshakeUseCase) Exchange(
	ctx context.Context,
	input *authDomain.ExchangeHandshakeInput,
) (*authDomain.ExchangeHandshakeOutput, error) {
	var output *authDomain.ExchangeHandshakeOutput

	err := h.txManager.WithTx(ctx, func(ctx context.Context) error {
		handshake, err := h.handshakeRepo.GetByTokenForUpdate(ctx, input.Token)
		if err != nil {
			if errors.Is(err, authDomain.ErrHandshakeTokenNotFound) {
				return authDomain.ErrInvalidExpiredToken
			}
			return err
		}

		app, err := h.appRepo.GetByKey(ctx, input.ApplicationKey)
		if err != nil {
			if errors.Is(err, authDomain.ErrApplicationNotFound) {
				return authDomain.ErrInvalidExpiredToken
			}
			return err
		}

		now := h.now()
		if handshake.ApplicationID != app.ID || handshake.IsExpired(now, h.config.HandshakeExpiration) {
			return authDomain.ErrInvalidExpiredToken
		}
		if !handshake.IsApproved() {
			return authDomain.ErrTokenNotAffiliated
		}
		if handshake.ValidatorHash == nil ||
			!h.validatorService.CompareValidator(input.Validator, *handshake.ValidatorHash) {
			return authDomain.ErrInvalidParameter
		}

		payload, err := h.cipher.Open(app.ID, handshake.Token)
		if err != nil {
			return authDomain.ErrInvalidExpiredToken
		}

		user, err := h.userRepo.GetByID(ctx, *handshake.OwnerID)
		if err != nil {
			return err
		}

		rights := payload.Rights & app.DefaultRights & authDomain.DelegableRights
		expiresAt := now.Add(h.config.ApplicationSessionExpiration)
		claims := authDomain.ApplicationClaims{
			UserID:         user.ID,
			ApplicationID:  app.ID,
			KeyFingerprint: h.keyService.Fingerprint(app.Key),
			Rights:         rights,
			JTI:            uuid.NewString(),
			IssuedAt:       now,
			ExpiresAt:      expiresAt,
		}

		credential, err := h.signer.Sign(claims)
		if err != nil {
			return err
		}

		session := &authDomain.Session{
			ID:            uuid.Must(uuid.NewV7()),
			JTI:           claims.JTI,
			UserID:        user.ID,
			ApplicationID: &app.ID,
			Rights:        &rights,
			OpenIP:        input.IP,
			LastIP:        input.IP,
			LastLoginAt:   now,
			ExpiresAt:     expiresAt,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := h.sessionRepo.Create(ctx, session); err != nil {
			return err
		}

		if err := h.handshakeRepo.Delete(ctx, handshake.ID); err != nil {
			if errors.Is(err, authDomain.ErrHandshakeTokenNotFound) {
				return authDomain.ErrInvalidExpiredToken
			}
			return err
		}

		profile := &userDomain.Profile{User: user}
		if rights.Has(authDomain.ReadRelationship) {
			relationships, err := h.userRepo.GetRelationships(ctx, user.ID)
			if err != nil {
				return err
			}
			profile.Relationships = relationships
		}

		output = &authDomain.ExchangeHandshakeOutput{
			Token:     credential,
			ExpiresAt: expiresAt,
			Rights:    rights,
			Profile:   profile,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return output, nil
}

// withQuery appends key=value to the query of rawURL.
func withQuery(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to parse callback url")
	}
	query := u.Query()
	query.Set(key, value)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// NewHandshakeUseCase creates a new HandshakeUseCase with the provided dependencies.
func NewHandshakeUseCase(
	config *config.Config,
	txManager database.TxManager,
	appRepo ApplicationRepository,
	handshakeRepo HandshakeTokenRepository,
	sessionRepo SessionRepository,
	userRepo UserRepository,
	cipher authService.HandshakeCipher,
	signer authService.CredentialSigner,
	keyService authService.KeyService,
	validatorService authService.ValidatorService,
) HandshakeUseCase {
	return &handshakeUseCase{
		config:           config,
		txManager:        txManager,
		appRepo:          appRepo,
		handshakeRepo:    handshakeRepo,
		sessionRepo:      sessionRepo,
		userRepo:         userRepo,
		cipher:           cipher,
		signer:           signer,
		keyService:       keyService,
		validatorService: validatorService,
		now:              func() time.Time { return time.Now().UTC() },
	}
}
