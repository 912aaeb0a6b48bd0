package usecase

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/questionit/api/internal/moderation"
	outboxDomain "github.com/questionit/api/internal/outbox/domain"
	"github.com/questionit/api/internal/question/domain"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// mockTxManager runs the function inline, without a transaction.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

type mockQuestionRepository struct {
	mock.Mock
}

func (m *mockQuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *mockQuestionRepository) ListPendingByReceiver(
	ctx context.Context,
	receiverID uuid.UUID,
) ([]*domain.Question, error) {
	args := m.Called(ctx, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *mockQuestionRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

type mockOutboxRepository struct {
	mock.Mock
}

func (m *mockOutboxRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockBanChecker struct {
	mock.Mock
}

func (m *mockBanChecker) IsIPBanned(ip string, includeTor bool) bool {
	args := m.Called(ip, includeTor)
	return args.Bool(0)
}

type mockModerator struct {
	mock.Mock
}

func (m *mockModerator) Match(
	ctx context.Context,
	texts []string,
	blockedWords []string,
	opts moderation.MatchOptions,
) (bool, error) {
	args := m.Called(ctx, texts, blockedWords, opts)
	return args.Bool(0), args.Error(1)
}

type fixture struct {
	txManager    *mockTxManager
	questionRepo *mockQuestionRepository
	userRepo     *mockUserRepository
	outboxRepo   *mockOutboxRepository
	bans         *mockBanChecker
	moderator    *mockModerator
	useCase      QuestionUseCase
}

func newFixture() *fixture {
	f := &fixture{
		txManager:    &mockTxManager{},
		questionRepo: &mockQuestionRepository{},
		userRepo:     &mockUserRepository{},
		outboxRepo:   &mockOutboxRepository{},
		bans:         &mockBanChecker{},
		moderator:    &mockModerator{},
	}
	f.txManager.On("WithTx", mock.Anything).Return()
	f.useCase = NewQuestionUseCase(
		f.txManager,
		f.questionRepo,
		f.userRepo,
		f.outboxRepo,
		f.bans,
		f.moderator,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}
