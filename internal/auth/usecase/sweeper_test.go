package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/auth/usecase"
	usecaseMocks "github.com/questionit/api/internal/auth/usecase/mocks"
)

func TestSweeper_Start(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("SweepsUntilCancelled", func(t *testing.T) {
		sessions := &usecaseMocks.MockSessionUseCase{}
		swept := make(chan struct{}, 8)
		sessions.On("CleanupExpired", mock.Anything, time.Minute, false).
			Run(func(mock.Arguments) {
				select {
				case swept <- struct{}{}:
				default:
				}
			}).
			Return(&authDomain.CleanupResult{Sessions: 1}, nil)

		sweeper := usecase.NewSweeper(sessions, 5*time.Millisecond, time.Minute, logger)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- sweeper.Start(ctx) }()

		select {
		case <-swept:
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper never ran")
		}
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper did not stop")
		}
	})

	t.Run("KeepsRunningAfterErrors", func(t *testing.T) {
		sessions := &usecaseMocks.MockSessionUseCase{}
		calls := make(chan struct{}, 8)
		sessions.On("CleanupExpired", mock.Anything, time.Minute, false).
			Run(func(mock.Arguments) {
				select {
				case calls <- struct{}{}:
				default:
				}
			}).
			Return(nil, errors.New("database unavailable"))

		sweeper := usecase.NewSweeper(sessions, 5*time.Millisecond, time.Minute, logger)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- sweeper.Start(ctx) }()

		for i := 0; i < 2; i++ {
			select {
			case <-calls:
			case <-time.After(2 * time.Second):
				t.Fatal("sweeper stopped after an error")
			}
		}
		cancel()
		<-done
	})
}
