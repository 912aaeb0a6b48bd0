package app

import (
	"fmt"
	"sync"

	questionHTTP "github.com/questionit/api/internal/question/http"
	questionRepository "github.com/questionit/api/internal/question/repository"
	questionUseCase "github.com/questionit/api/internal/question/usecase"
)

// questionComponents holds the lazily built question context.
type questionComponents struct {
	repo    questionUseCase.QuestionRepository
	useCase questionUseCase.QuestionUseCase

	repoInit    sync.Once
	useCaseInit sync.Once
}

// QuestionRepository returns the question repository for the configured driver.
func (c *Container) QuestionRepository() (questionUseCase.QuestionRepository, error) {
	err := c.once(&c.question.repoInit, "questionRepo", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for question repository: %w", err)
		}

		switch c.config.DBDriver {
		case "postgres":
			c.question.repo = questionRepository.NewPostgreSQLQuestionRepository(db)
		case "mysql":
			c.question.repo = questionRepository.NewMySQLQuestionRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	return c.question.repo, err
}

// QuestionUseCase returns the question intake use case.
func (c *Container) QuestionUseCase() (questionUseCase.QuestionUseCase, error) {
	err := c.once(&c.question.useCaseInit, "questionUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for question use case: %w", err)
		}
		questionRepo, err := c.QuestionRepository()
		if err != nil {
			return err
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			return err
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return err
		}

		baseUseCase := questionUseCase.NewQuestionUseCase(
			txManager,
			questionRepo,
			userRepo,
			outboxRepo,
			c.BanList(),
			c.ModerationEngine(),
			c.Logger(),
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for question use case: %w", err)
			}
			c.question.useCase = questionUseCase.NewQuestionUseCaseWithMetrics(baseUseCase, businessMetrics)
			return nil
		}

		c.question.useCase = baseUseCase
		return nil
	})
	return c.question.useCase, err
}

// QuestionHandler returns the HTTP handler for question intake.
func (c *Container) QuestionHandler() (*questionHTTP.QuestionHandler, error) {
	useCase, err := c.QuestionUseCase()
	if err != nil {
		return nil, err
	}
	return questionHTTP.NewQuestionHandler(useCase, c.Logger()), nil
}
