package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/database"
	"github.com/questionit/api/internal/moderation"
	outboxDomain "github.com/questionit/api/internal/outbox/domain"
	"github.com/questionit/api/internal/question/domain"
)

// questionUseCase implements QuestionUseCase.
type questionUseCase struct {
	txManager    database.TxManager
	questionRepo QuestionRepository
	userRepo     UserRepository
	outboxRepo   OutboxEventRepository
	bans         IPBanChecker
	moderator    Moderator
	logger       *slog.Logger
	now          func() time.Time
}

// Ask runs the submission checks in order: rights, emitter identity, receiver, IP ban
// for safe-mode receivers, anonymous policy, self-targeting, then moderation.
func (q *questionUseCase) Ask(
	ctx context.Context,
	auth *authDomain.AuthContext,
	input *domain.AskInput,
) (*domain.AskOutput, error) {
	if err := authDomain.RequireCapabilities(auth, authDomain.SendQuestion); err != nil {
		return nil, err
	}
	if auth.IsAnonymous() && !input.Anonymous {
		return nil, authDomain.ErrBadRequest
	}

	receiver, err := q.userRepo.GetByID(ctx, input.ReceiverID)
	if err != nil {
		return nil, err
	}

	if receiver.SafeMode && q.bans.IsIPBanned(input.IP, true) {
		q.logger.Warn("dropping question from banned ip",
			slog.String("ip", input.IP),
			slog.String("receiver_id", receiver.ID.String()),
		)
		return &domain.AskOutput{Dropped: true}, nil
	}

	if input.Anonymous && !receiver.AllowAnonymous {
		return nil, domain.ErrAnonymousQuestionsNotAllowed
	}
	if !input.Anonymous && auth.User.ID == receiver.ID {
		return nil, domain.ErrCantSendQuestionToYourself
	}

	content := domain.CleanContent(input.Content)
	if content == "" {
		return nil, authDomain.ErrBadRequest
	}

	question := &domain.Question{
		ID:          uuid.Must(uuid.NewV7()),
		ReceiverID:  receiver.ID,
		Content:     content,
		PollOptions: input.PollOptions,
		EmitterIP:   input.IP,
		CreatedAt:   q.now(),
	}
	var emitterID *uuid.UUID
	if !auth.IsAnonymous() {
		id := auth.User.ID
		emitterID = &id
		question.PrivateOwnerID = emitterID
		if !input.Anonymous {
			question.OwnerID = emitterID
		}
	}

	matched, err := q.moderator.Match(ctx, question.Texts(), receiver.BlockedWords, moderation.MatchOptions{
		MatchBlocked:          len(receiver.BlockedWords) > 0,
		MatchGlobalDictionary: receiver.SafeMode,
	})
	if err != nil {
		q.logger.Error("moderation unavailable, treating question as matched", slog.Any("error", err))
	}
	if matched {
		if receiver.DropQuestionsOnBlockedWord {
			q.logger.Warn("dropping question matching muted words",
				slog.String("ip", input.IP),
				slog.String("receiver_id", receiver.ID.String()),
			)
			return &domain.AskOutput{Dropped: true}, nil
		}
		question.Muted = true
	}

	notify := !question.Muted && (emitterID == nil || *emitterID != receiver.ID)

	err = q.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := q.questionRepo.Create(ctx, question); err != nil {
			return err
		}
		if !notify {
			return nil
		}

		payload := outboxDomain.QuestionReceivedPayload{
			QuestionID: question.ID,
			ReceiverID: receiver.ID,
			EmitterID:  question.OwnerID,
			IsPoll:     len(question.PollOptions) > 0,
			CreatedAt:  question.CreatedAt,
		}
		event, err := outboxDomain.NewEvent(outboxDomain.EventTypeQuestionReceived, payload)
		if err != nil {
			return err
		}
		return q.outboxRepo.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return &domain.AskOutput{Question: question}, nil
}

// DeletePendingMuted removes the unanswered questions of the caller whose content or poll
// options contain one of their blocked words.
func (q *questionUseCase) DeletePendingMuted(ctx context.Context, auth *authDomain.AuthContext) (int64, error) {
	if auth.IsAnonymous() {
		return 0, authDomain.ErrInvalidExpiredToken
	}
	if err := authDomain.RequireCapabilities(auth, authDomain.DeleteQuestion); err != nil {
		return 0, err
	}

	pattern := moderation.BlockedWordsPattern(auth.User.BlockedWords)
	if pattern == nil {
		return 0, nil
	}

	var deleted int64
	err := q.txManager.WithTx(ctx, func(ctx context.Context) error {
		pending, err := q.questionRepo.ListPendingByReceiver(ctx, auth.User.ID)
		if err != nil {
			return err
		}

		var ids []uuid.UUID
		for _, question := range pending {
			for _, text := range question.Texts() {
				if pattern.MatchString(text) {
					ids = append(ids, question.ID)
					break
				}
			}
		}

		if len(ids) == 0 {
			return nil
		}
		deleted, err = q.questionRepo.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// NewQuestionUseCase creates a new QuestionUseCase with the provided dependencies.
func NewQuestionUseCase(
	txManager database.TxManager,
	questionRepo QuestionRepository,
	userRepo UserRepository,
	outboxRepo OutboxEventRepository,
	bans IPBanChecker,
	moderator Moderator,
	logger *slog.Logger,
) QuestionUseCase {
	return &questionUseCase{
		txManager:    txManager,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		outboxRepo:   outboxRepo,
		bans:         bans,
		moderator:    moderator,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
