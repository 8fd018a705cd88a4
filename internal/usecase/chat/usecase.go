package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/usecase/content"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Config struct {
	DefaultPolicy Policy
	// MaxPromptTokens caps the assembled prompt; 0 disables the check.
	MaxPromptTokens int
}

// ChatUsecase answers one question grounded in a user's document.
type ChatUsecase struct {
	resolver    ContentResolver
	assembler   *Assembler
	llm         Completer
	extractions ExtractionReader
	counter     TokenCounter
	cfg         Config
}

// NewUsecase wires a chat turn. extractions may be nil when no store is
// configured; the cached extraction lookup is then skipped.
func NewUsecase(
	resolver ContentResolver,
	assembler *Assembler,
	llm Completer,
	extractions ExtractionReader,
	counter TokenCounter,
	cfg Config,
) *ChatUsecase {
	if _, ok := ParsePolicy(string(cfg.DefaultPolicy)); !ok {
		cfg.DefaultPolicy = PolicyStrict
	}
	return &ChatUsecase{
		resolver:    resolver,
		assembler:   assembler,
		llm:         llm,
		extractions: extractions,
		counter:     counter,
		cfg:         cfg,
	}
}

// Respond resolves the document, assembles the prompt and asks the model.
func (uc *ChatUsecase) Respond(ctx context.Context, d entity.ContentDescriptor, userMessage string) (*entity.ChatAnswer, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, fmt.Errorf("%w: user message is empty", entity.ErrUsage)
	}

	cached := uc.cachedExtraction(ctx, d)
	resolved := uc.resolver.Resolve(ctx, d, cached, content.ModeChat)

	ctxzap.Info(ctx, "content resolved",
		zap.String("source", string(resolved.Source)),
		zap.Bool("truncated", resolved.Truncated),
		zap.Int("history_turns", len(d.History)),
	)

	in := PromptInput{
		Title:       d.Title,
		Content:     resolved.Render(),
		Truncated:   resolved.Truncated,
		History:     d.History,
		UserMessage: userMessage,
		Policy:      uc.policyFor(ctx, d),
	}

	messages := uc.fitToBudget(ctx, in)

	answer, err := uc.llm.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &entity.ChatAnswer{
		Message: answer,
		Model:   uc.llm.Model(),
	}, nil
}

func (uc *ChatUsecase) cachedExtraction(ctx context.Context, d entity.ContentDescriptor) *entity.ExtractionRecord {
	if uc.extractions == nil || d.NoteID <= 0 || !d.FileType.IsPDF() {
		return nil
	}

	rec, err := uc.extractions.GetExtraction(ctx, d.NoteID)
	if err != nil {
		// A missing or unreadable record only means extracting on demand.
		if !errors.Is(err, entity.ErrNotFound) {
			ctxzap.Warn(ctx, "stored extraction lookup failed", zap.Int64("note_id", d.NoteID), zap.Error(err))
		}
		return nil
	}
	return rec
}

func (uc *ChatUsecase) policyFor(ctx context.Context, d entity.ContentDescriptor) Policy {
	if d.Policy == "" {
		return uc.cfg.DefaultPolicy
	}
	p, ok := ParsePolicy(d.Policy)
	if !ok {
		ctxzap.Warn(ctx, "unknown chat policy, using default",
			zap.String("policy", d.Policy),
			zap.String("default", string(uc.cfg.DefaultPolicy)),
		)
		return uc.cfg.DefaultPolicy
	}
	return p
}

// fitToBudget drops the oldest history turns until the prompt fits, then
// shortens the grounding text if the prompt is still too long. The system
// message and the user message are always sent.
func (uc *ChatUsecase) fitToBudget(ctx context.Context, in PromptInput) []entity.ChatMessage {
	messages := uc.assembler.Assemble(in)
	if uc.counter == nil {
		return messages
	}

	tokens := countMessages(uc.counter, messages)
	ctxzap.Info(ctx, "prompt assembled", zap.Int("messages", len(messages)), zap.Int("prompt_tokens", tokens))

	budget := uc.cfg.MaxPromptTokens
	if budget <= 0 || tokens <= budget {
		return messages
	}

	if len(in.History) > uc.assembler.historyTurns {
		in.History = in.History[len(in.History)-uc.assembler.historyTurns:]
	}

	dropped := 0
	for tokens > budget && len(in.History) > 0 {
		in.History = in.History[1:]
		dropped++
		messages = uc.assembler.Assemble(in)
		tokens = countMessages(uc.counter, messages)
	}

	if tokens > budget {
		over := tokens - budget
		limit := uc.counter.Count(in.Content) - over
		if limit <= 0 {
			in.Content, in.Truncated = "", true
		} else {
			var cut bool
			in.Content, cut = uc.counter.Truncate(in.Content, limit)
			in.Truncated = in.Truncated || cut
		}
		messages = uc.assembler.Assemble(in)
		tokens = countMessages(uc.counter, messages)
	}

	ctxzap.Warn(ctx, "prompt trimmed to token budget",
		zap.Int("budget", budget),
		zap.Int("prompt_tokens", tokens),
		zap.Int("history_dropped", dropped),
	)

	return messages
}

func countMessages(counter TokenCounter, messages []entity.ChatMessage) int {
	total := 0
	for _, m := range messages {
		total += counter.Count(m.Content)
	}
	return total
}
