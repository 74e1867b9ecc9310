// Package pipeline owns the end-to-end subtitle generation workflow: audio
// extraction, transcription (with caching), sentence-aware translation,
// proofreading, and export. The Engine is stateless across invocations
// aside from the caller-supplied progress callback; it never performs
// terminal I/O itself.
package pipeline

import (
	"log/slog"

	"subgen/internal/cachestore"
	"subgen/internal/components"
	"subgen/internal/credentials"
	"subgen/internal/llm"
	"subgen/internal/transcribe"
)

// Stage names reported to a ProgressFunc, in the order a Run invocation
// visits them.
const (
	StageExtracting   = "extracting"
	StageTranscribing = "transcribing"
	StageTranslating  = "translating"
	StageProofreading = "proofreading"
	StageExporting    = "exporting"
)

// ProgressFunc receives cumulative progress for one stage. Implementations
// MUST observe non-decreasing current values within a stage; the Engine
// never emits per-batch deltas, only running totals.
type ProgressFunc func(stage string, current, total int)

func noopProgress(string, int, int) {}

// Engine owns one pipeline run's collaborators. It holds no per-run
// mutable state: Run, Transcribe, Translate, Proofread, Export, and
// ExportVideo can all be called independently and concurrently on the
// same Engine so long as they operate on distinct Projects.
type Engine struct {
	recognizer transcribe.Recognizer
	llmClient  llm.Client
	components *components.Manager
	credStore  *credentials.Store
	cache      *cachestore.Store
	log        *slog.Logger
}

// New constructs an Engine from its collaborators. recognizer or llmClient
// may be nil when the caller only intends to use stages that don't need
// them (e.g. Export on an already-translated Project); log may be nil, in
// which case slog.Default is used.
func New(recognizer transcribe.Recognizer, llmClient llm.Client, mgr *components.Manager, credStore *credentials.Store, cache *cachestore.Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cache == nil {
		cache = cachestore.NewStore()
	}
	return &Engine{
		recognizer: recognizer,
		llmClient:  llmClient,
		components: mgr,
		credStore:  credStore,
		cache:      cache,
		log:        log,
	}
}
