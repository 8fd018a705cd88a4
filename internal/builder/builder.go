package builder

import (
	"context"
	"fmt"

	"github.com/futig/study-helper/internal/cli"
	chatapi "github.com/futig/study-helper/internal/cli/chat"
	extractorapi "github.com/futig/study-helper/internal/cli/extractor"
	generatorapi "github.com/futig/study-helper/internal/cli/generator"
	"github.com/futig/study-helper/internal/config"
	"github.com/futig/study-helper/internal/integration/llm"
	"github.com/futig/study-helper/internal/integration/pdf"
	"github.com/futig/study-helper/internal/pkg/formatter"
	"github.com/futig/study-helper/internal/pkg/logger"
	"github.com/futig/study-helper/internal/pkg/tokenizer"
	"github.com/futig/study-helper/internal/pkg/validator"
	"github.com/futig/study-helper/internal/usecase/chat"
	"github.com/futig/study-helper/internal/usecase/content"
	"github.com/futig/study-helper/internal/usecase/extraction"
	"github.com/futig/study-helper/internal/usecase/generation"
	"go.uber.org/zap"
)

// BuildExtractor wires the content-extractor binary.
func BuildExtractor(environment string) (*App, error) {
	ctx := context.Background()

	cfg, logger, err := load(config.BinaryExtractor, environment)
	if err != nil {
		return nil, err
	}

	store, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	extractor := pdf.NewExtractor()
	resolver := newResolver(cfg, extractor)

	extractionUC := extraction.NewUsecase(store, extractor, resolver)
	handler := extractorapi.NewHandler(extractionUC)

	router := newRouter(extractorapi.Usage)
	extractorapi.RegisterRoutes(router, handler)

	logger.Debug("content extractor built")

	return newApp(config.BinaryExtractor, cfg, logger, router, store.Close), nil
}

// BuildGenerator wires the study-generator binary.
func BuildGenerator(environment string) (*App, error) {
	ctx := context.Background()

	cfg, logger, err := load(config.BinaryGenerator, environment)
	if err != nil {
		return nil, err
	}

	store, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	var summarizer generation.Summarizer
	var quizLLM generation.Completer

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		mock := llm.NewMockConnector()
		summarizer = mock
		quizLLM = mock
	} else {
		summarizer = llm.NewSummaryConnector(cfg.SummaryLLM, logger)
		quizLLM = llm.NewChatConnector(cfg.QuizLLM, logger)
	}

	resolver := newResolver(cfg, pdf.NewExtractor())

	generationUC := generation.NewUsecase(
		store,
		resolver,
		summarizer,
		quizLLM,
		validator.NewQuizValidator(),
		tokenizer.New(cfg.Generation.TokenEncoding, logger),
		formatter.NewFactory(cfg.ExportFontPath),
		generation.Config{
			MaxInputTokens: cfg.Generation.MaxInputTokens,
			ExportDir:      cfg.ExportDir,
		},
	)
	handler := generatorapi.NewHandler(generationUC)

	router := newRouter(generatorapi.Usage)
	generatorapi.RegisterRoutes(router, handler)

	logger.Debug("study generator built",
		zap.String("summary_model", summarizer.Model()),
		zap.String("quiz_model", quizLLM.Model()),
	)

	return newApp(config.BinaryGenerator, cfg, logger, router, store.Close), nil
}

// BuildChat wires the chat-response binary. The database is optional: when
// configured, stored extractions are used before extracting on demand.
func BuildChat(environment string) (*App, error) {
	ctx := context.Background()

	cfg, logger, err := load(config.BinaryChat, environment)
	if err != nil {
		return nil, err
	}

	templates, err := chat.LoadTemplates(cfg.Chat.PromptTemplatesFile)
	if err != nil {
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	var closers []func() error
	var extractions chat.ExtractionReader

	if cfg.Database.Configured() {
		store, err := setupStore(ctx, cfg, logger)
		if err != nil {
			// Chat answers without stored extractions rather than failing.
			logger.Warn("database unavailable, extracting content on demand", zap.Error(err))
		} else {
			extractions = store
			closers = append(closers, store.Close)
		}
	}

	var completer chat.Completer
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		completer = llm.NewMockConnector()
	} else {
		completer = llm.NewChatConnector(cfg.ChatLLM, logger)
	}

	policy, ok := chat.ParsePolicy(cfg.Chat.Policy)
	if !ok {
		logger.Warn("unknown CHAT_POLICY, using strict", zap.String("policy", cfg.Chat.Policy))
		policy = chat.PolicyStrict
	}

	chatUC := chat.NewUsecase(
		newResolver(cfg, pdf.NewExtractor()),
		chat.NewAssembler(templates, cfg.Chat.HistoryTurns),
		completer,
		extractions,
		tokenizer.New(cfg.Generation.TokenEncoding, logger),
		chat.Config{
			DefaultPolicy:   policy,
			MaxPromptTokens: cfg.ChatLLM.MaxPromptTokens,
		},
	)
	handler := chatapi.NewHandler(chatUC)

	router := newRouter(chatapi.Usage)
	chatapi.RegisterRoutes(router, handler)

	logger.Debug("chat response built",
		zap.String("model", completer.Model()),
		zap.String("policy", string(policy)),
		zap.Bool("stored_extractions", extractions != nil),
	)

	return newApp(config.BinaryChat, cfg, logger, router, closers...), nil
}

func load(binary config.Binary, environment string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(binary, environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := setupLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Debug("Building application",
		zap.String("binary", string(binary)),
		zap.String("environment", cfg.Environment),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	return cfg, log, nil
}

func setupLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.Environment, cfg.LogFile)
}

func newResolver(cfg *config.Config, source content.TextSource) *content.Resolver {
	return content.NewResolver(source, content.Config{
		StorageRoot:     cfg.Content.StorageRoot,
		GroundingChars:  cfg.Content.GroundingChars,
		ChatMaxPages:    cfg.Content.ChatMaxPages,
		ChatStopAtChars: cfg.Content.ChatStopAtChars,
	})
}

func newRouter(usage string) *cli.Router {
	router := cli.NewRouter(usage)
	router.Use(cli.Logger, cli.Recoverer)
	return router
}

func newApp(binary config.Binary, cfg *config.Config, logger *zap.Logger, router *cli.Router, closers ...func() error) *App {
	return &App{
		binary:  string(binary),
		router:  router,
		timeout: cfg.CommandTimeout,
		logger:  logger,
		closers: closers,
	}
}
