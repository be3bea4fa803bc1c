// Package orchestrator drives whole-document translation: protection,
// token estimation, single-shot versus chunked translation, progress
// reporting, cooperative cancellation, and restoration.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"doc-translator/internal/api"
	"doc-translator/internal/chunker"
	"doc-translator/internal/config"
	"doc-translator/internal/fileproc"
	"doc-translator/internal/imagestore"
	"doc-translator/internal/logger"
	"doc-translator/internal/protect"
	"doc-translator/internal/token"
	"doc-translator/internal/types"
)

// TranslationClient is the API-layer surface the orchestrator drives.
// *api.Client implements it; tests substitute a stub.
type TranslationClient interface {
	Translate(ctx context.Context, text, targetLanguage string, opts *types.TranslationOptions) (string, error)
	TestConnection(ctx context.Context, apiURL, model string) bool
	FetchAvailableModels(ctx context.Context, apiURL string) []string
}

// Orchestrator runs translations. Only one translation is in flight per
// instance; callers are expected to check IsTranslating before starting
// another.
type Orchestrator struct {
	cfg    *config.Config
	client TranslationClient
	engine *protect.Engine

	mu          sync.Mutex
	cancel      context.CancelFunc
	translating bool
}

// New creates an Orchestrator with the real API client and the shared
// protection counter.
func New(cfg *config.Config) *Orchestrator {
	return NewWithClient(cfg, api.NewClient(cfg))
}

// NewWithClient creates an Orchestrator with an injected client.
func NewWithClient(cfg *config.Config, client TranslationClient) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		client: client,
		engine: protect.NewEngine(),
	}
}

// TranslateText translates text into targetLanguage. Protected spans are
// shielded before the text goes to the backend and restored in every chunk's
// result. Cancellation (via ctx or Abort) surfaces as a single
// translation-cancelled error regardless of which chunk was in flight.
func (o *Orchestrator) TranslateText(ctx context.Context, text, targetLanguage string, opts *types.TranslationOptions) (string, error) {
	if opts == nil {
		opts = &types.TranslationOptions{}
	}
	if strings.TrimSpace(text) == "" {
		return "", types.NewAppError(types.ErrValidation, "nothing to translate: input is empty", nil)
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.mu.Lock()
	o.cancel = cancel
	o.translating = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.cancel = nil
		o.translating = false
		o.mu.Unlock()
	}()

	reportProgress(opts, types.Progress{Percent: 0, Message: "preparing translation"})

	// Inline base64 images never reach the LLM or the token budget.
	images := imagestore.NewManager()
	working := images.ProtectImages(text)
	if n := images.Count(); n > 0 {
		logger.Info("stripped inline images", logger.Int("imageCount", n))
	}

	prot := o.engine.Protect(working)
	logger.Info("protection pass complete",
		logger.Int("patternCount", len(prot.Patterns)),
		logger.Bool("hasProtectedContent", prot.HasProtectedContent))

	budget := o.cfg.API.ChunkMaxTokens
	if opts.MaxChunkTokens > 0 {
		budget = opts.MaxChunkTokens
	}
	estimate := token.Estimate(prot.ProtectedText, targetLanguage)
	logger.Info("token estimate",
		logger.Int("estimatedTokens", estimate),
		logger.Int("chunkBudget", budget))

	var res *types.TranslationResult
	var err error
	if estimate <= budget {
		res, err = o.translateSingleShot(callCtx, prot, targetLanguage, opts)
	} else {
		res, err = o.translateChunked(callCtx, prot, targetLanguage, budget, opts)
	}
	if err != nil {
		return "", err
	}
	res.OriginalText = text
	res.PatternCount = len(prot.Patterns)

	if res.RestoredCount < res.PatternCount {
		logger.Warn("translation lost placeholders",
			logger.Int("expected", res.PatternCount),
			logger.Int("restored", res.RestoredCount))
	}

	res.TranslatedText = images.RestoreImages(res.TranslatedText)
	logger.Info("translation complete",
		logger.Int("chunkCount", res.ChunkCount),
		logger.Int("patternCount", res.PatternCount),
		logger.Int("translatedLength", len(res.TranslatedText)))
	reportProgress(opts, types.Progress{Percent: 100, Message: "translation complete"})
	return res.TranslatedText, nil
}

func (o *Orchestrator) translateSingleShot(ctx context.Context, prot *types.ProtectionResult, targetLanguage string, opts *types.TranslationOptions) (*types.TranslationResult, error) {
	reportProgress(opts, types.Progress{Percent: 10, Message: "translating"})
	out, err := o.client.Translate(ctx, prot.ProtectedText, targetLanguage, opts)
	if err != nil {
		return nil, o.classify(ctx, err)
	}
	restored := protect.Restore(out, prot.Patterns)
	return &types.TranslationResult{
		TranslatedText: restored.RestoredText,
		ChunkCount:     1,
		RestoredCount:  restored.RestoredCount,
	}, nil
}

func (o *Orchestrator) translateChunked(ctx context.Context, prot *types.ProtectionResult, targetLanguage string, budget int, opts *types.TranslationOptions) (*types.TranslationResult, error) {
	chunks := chunker.SplitTextIntoChunks(prot.ProtectedText, budget, targetLanguage)
	total := len(chunks)
	logger.Info("translating in chunks", logger.Int("chunkCount", total))

	restoredTotal := 0
	results := make([]string, 0, total)
	for i, chunk := range chunks {
		// Cooperative cancellation: checked before each network call, never
		// mid-request preemption (in-flight aborts happen via the context
		// handed to the client).
		if ctx.Err() != nil {
			return nil, cancelled(ctx.Err())
		}

		out, err := o.client.Translate(ctx, chunk, targetLanguage, opts)
		if err != nil {
			// Already-completed chunks are lost from the caller's
			// perspective unless captured via OnChunkComplete.
			return nil, o.classify(ctx, err)
		}

		// Patterns are global to the whole document, not re-derived per
		// chunk; each placeholder lives in exactly one chunk.
		restored := protect.Restore(out, prot.Patterns)
		restoredTotal += restored.RestoredCount
		results = append(results, restored.RestoredText)

		if opts.OnChunkComplete != nil {
			opts.OnChunkComplete(i+1, total, restored.RestoredText)
		}
		reportProgress(opts, types.Progress{
			Percent:    (i + 1) * 100 / total,
			Message:    fmt.Sprintf("translated chunk %d/%d", i+1, total),
			ChunkIndex: i + 1,
			ChunkTotal: total,
		})
	}

	return &types.TranslationResult{
		TranslatedText: strings.Join(results, ""),
		ChunkCount:     total,
		RestoredCount:  restoredTotal,
	}, nil
}

// classify maps any cancellation observed during a network step to the
// single translation-cancelled error.
func (o *Orchestrator) classify(ctx context.Context, err error) error {
	if types.CodeOf(err) == types.ErrCancelled || ctx.Err() != nil {
		return cancelled(err)
	}
	return err
}

// TranslateFile extracts plain text from fileContent using the processor
// registered for fileType, then translates it. Extraction failures surface
// as file-read errors.
func (o *Orchestrator) TranslateFile(ctx context.Context, fileContent []byte, fileType, targetLanguage string, opts *types.TranslationOptions) (string, error) {
	text, err := fileproc.Extract(fileContent, fileType)
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrFileRead,
			"failed to read document", err.Error(), err)
	}
	return o.TranslateText(ctx, text, targetLanguage, opts)
}

// Abort cancels the active translation, if any, and clears orchestrator
// state so a fresh call can start. Returns whether a translation was active.
func (o *Orchestrator) Abort() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel == nil {
		return false
	}
	o.cancel()
	o.cancel = nil
	o.translating = false
	logger.Info("translation aborted")
	return true
}

// IsTranslating reports whether a translation is currently in flight.
func (o *Orchestrator) IsTranslating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.translating
}

// TestConnection probes the backend before a full translation run.
func (o *Orchestrator) TestConnection(ctx context.Context, apiURL, model string) bool {
	return o.client.TestConnection(ctx, apiURL, model)
}

// FetchAvailableModels lists the backend's models; failures yield an empty
// list.
func (o *Orchestrator) FetchAvailableModels(ctx context.Context, apiURL string) []string {
	return o.client.FetchAvailableModels(ctx, apiURL)
}

func reportProgress(opts *types.TranslationOptions, p types.Progress) {
	logger.Debug("progress", logger.String("state", p.String()))
	if opts.OnProgress != nil {
		opts.OnProgress(p.Percent, p.Message)
	}
}

func cancelled(cause error) error {
	return types.NewAppError(types.ErrCancelled, "translation cancelled", cause)
}
