package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"communerag/internal/ai"
	"communerag/internal/index"
	"communerag/internal/model"
	"communerag/internal/router"
)

// QueryRouter decides whether a question needs the knowledge base.
type QueryRouter interface {
	Route(ctx context.Context, question string) router.Decision
}

// QueryEmbedder turns one question into a vector.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Generator produces the final answer text.
type Generator interface {
	Complete(ctx context.Context, model string, messages []ai.ChatMessage) (string, error)
}

// IndexSource hands out the currently active index, nil when none is loaded.
type IndexSource interface {
	Current() *index.Index
}

// InteractionSink receives the per-query log record. Delivery is best
// effort from the serving path's point of view.
type InteractionSink interface {
	Publish(ctx context.Context, record model.Interaction) error
}

// AnswerStore caches finished answers keyed by question and settings.
type AnswerStore interface {
	Key(question, variant string, topK int, minScore float64, indexFingerprint string) string
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// AskOptions carries the retrieval defaults and model names resolved from
// configuration at startup.
type AskOptions struct {
	OrgName         string
	SmallModel      string
	LargeModel      string
	DefaultVariant  ai.ModelVariant
	DefaultTopK     int
	DefaultMinScore float64
	MaxContextChars int
}

// AskInput is one question with its per-request settings already defaulted
// by the caller where omitted.
type AskInput struct {
	Question string
	Variant  ai.ModelVariant
	TopK     int
	MinScore *float64 // nil means the configured default
}

// SourceRef points a client at the passage an answer was grounded on.
type SourceRef struct {
	ChunkID  string  `json:"chunk_id"`
	SourceID string  `json:"source_id"`
	Sequence int     `json:"sequence"`
	Score    float32 `json:"score"`
}

// AskResult is the answer payload returned to the client and cached.
type AskResult struct {
	InteractionID string      `json:"interaction_id"`
	Question      string      `json:"question"`
	Answer        string      `json:"answer"`
	Routing       string      `json:"routing"`
	Sources       []SourceRef `json:"sources,omitempty"`
	FromCache     bool        `json:"from_cache,omitempty"`
}

// AskService runs one question through routing, retrieval and generation.
// Every question ends in exactly one of two terminal states: an answer for
// the client, or a classified error. Both leave an interaction record.
type AskService struct {
	router   QueryRouter
	embedder QueryEmbedder
	gen      Generator
	indexes  IndexSource
	sink     InteractionSink
	cache    AnswerStore // optional
	opts     AskOptions
}

func NewAskService(qr QueryRouter, qe QueryEmbedder, gen Generator, indexes IndexSource, sink InteractionSink, cache AnswerStore, opts AskOptions) *AskService {
	return &AskService{
		router:   qr,
		embedder: qe,
		gen:      gen,
		indexes:  indexes,
		sink:     sink,
		cache:    cache,
		opts:     opts,
	}
}

// Ask answers one question. Retrieval that finds nothing above the score
// floor is not an error: the question falls back to generation without
// context. Only service failures surface as errors.
func (s *AskService) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	start := time.Now()

	cacheKey := ""
	if s.cache != nil {
		cacheKey = s.cache.Key(in.Question, string(in.Variant), in.TopK, *in.MinScore, s.indexFingerprint())
		var cached AskResult
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			log.Printf("WARN: answer cache read failed: %v", err)
		} else if hit {
			return s.serveCached(ctx, in.Question, &cached, start), nil
		}
	}

	record := model.Interaction{
		InteractionID: uuid.NewString(),
		Question:      in.Question,
	}

	decision := s.router.Route(ctx, in.Question)
	record.RoutingDecision = string(decision)

	var sources []SourceRef
	var contextBlock string
	if decision == router.DecisionRetrieve {
		results, err := s.retrieve(ctx, in)
		if err != nil {
			s.recordFailure(ctx, &record, start, err)
			return nil, err
		}
		sources = toSourceRefs(results)
		contextBlock = s.assembleContext(results)
	}

	answer, err := s.generate(ctx, in, decision, contextBlock)
	if err != nil {
		s.recordFailure(ctx, &record, start, err)
		return nil, err
	}

	record.Answer = answer
	record.Status = model.InteractionStatusAnswered
	record.DurationMS = time.Since(start).Milliseconds()
	record.SetRetrievedChunkIDs(chunkIDs(sources))
	s.publish(ctx, record)

	result := &AskResult{
		InteractionID: record.InteractionID,
		Question:      in.Question,
		Answer:        answer,
		Routing:       string(decision),
		Sources:       sources,
	}
	if s.cache != nil && cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, result); err != nil {
			log.Printf("WARN: answer cache write failed: %v", err)
		}
	}
	return result, nil
}

// serveCached returns a cache hit under a fresh interaction id and logs it
// like any other completed query, so repeated questions stay visible in the
// interaction store and feedback has a record to attach to.
func (s *AskService) serveCached(ctx context.Context, question string, cached *AskResult, start time.Time) *AskResult {
	record := model.Interaction{
		InteractionID:   uuid.NewString(),
		Question:        question,
		RoutingDecision: cached.Routing,
		Answer:          cached.Answer,
		Status:          model.InteractionStatusAnswered,
		DurationMS:      time.Since(start).Milliseconds(),
	}
	record.SetRetrievedChunkIDs(chunkIDs(cached.Sources))
	s.publish(ctx, record)

	cached.InteractionID = record.InteractionID
	cached.FromCache = true
	return cached
}

func (s *AskService) validate(in *AskInput) error {
	in.Question = strings.TrimSpace(in.Question)
	if in.Question == "" {
		return fmt.Errorf("%w: empty question", ErrInvalidInput)
	}
	if in.Variant == "" {
		in.Variant = s.opts.DefaultVariant
	}
	if _, err := ai.ParseModelVariant(string(in.Variant)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.TopK == 0 {
		in.TopK = s.opts.DefaultTopK
	}
	if in.TopK < 1 || in.TopK > 20 {
		return fmt.Errorf("%w: top_k must be in [1, 20], got %d", ErrInvalidInput, in.TopK)
	}
	if in.MinScore == nil {
		v := s.opts.DefaultMinScore
		in.MinScore = &v
	}
	if *in.MinScore < 0 || *in.MinScore > 1 {
		return fmt.Errorf("%w: min_score must be in [0, 1], got %g", ErrInvalidInput, *in.MinScore)
	}
	return nil
}

// retrieve embeds the question, searches the active index, and keeps only
// results at or above the score floor. The floor is inclusive.
func (s *AskService) retrieve(ctx context.Context, in AskInput) ([]index.SearchResult, error) {
	idx := s.indexes.Current()
	if idx == nil {
		return nil, ErrIndexUnavailable
	}
	vec, err := s.embedder.EmbedOne(ctx, in.Question)
	if err != nil {
		return nil, fmt.Errorf("embed question failed: %w", err)
	}
	results, err := idx.Search(vec, in.TopK)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}
	kept := results[:0]
	for _, r := range results {
		if float64(r.Score) >= *in.MinScore {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// assembleContext concatenates retrieved passages with source tags, keeping
// the block within the configured budget. The budget counts runes, like the
// chunking window. A passage that would overflow is dropped rather than
// truncated mid-sentence, except the first one, which is truncated so
// retrieval is never silently empty.
func (s *AskService) assembleContext(results []index.SearchResult) string {
	var b strings.Builder
	used := 0
	for i, r := range results {
		passage := fmt.Sprintf("[Source: %s, passage %d]\n%s\n\n", r.Chunk.SourceID, r.Chunk.Sequence+1, r.Chunk.Text)
		runes := []rune(passage)
		if used+len(runes) > s.opts.MaxContextChars {
			if i == 0 {
				if len(runes) > s.opts.MaxContextChars {
					runes = runes[:s.opts.MaxContextChars]
				}
				b.WriteString(string(runes))
			}
			break
		}
		b.WriteString(passage)
		used += len(runes)
	}
	return strings.TrimRight(b.String(), "\n")
}

// generate picks one of three prompt modes: grounded answer when context
// was retrieved, an honest no-context answer when retrieval came back
// empty, and a plain assistant prompt for direct questions.
func (s *AskService) generate(ctx context.Context, in AskInput, decision router.Decision, contextBlock string) (string, error) {
	var system string
	switch {
	case decision == router.DecisionDirect:
		system = fmt.Sprintf("You are the assistant of %s. Answer the question directly, briefly and politely.", s.opts.OrgName)
	case contextBlock != "":
		system = fmt.Sprintf(
			"You are the assistant of %s. Answer using only the excerpts below. Cite the source of each fact you use. If the excerpts do not contain the answer, say so.\n\n%s",
			s.opts.OrgName, contextBlock)
	default:
		system = fmt.Sprintf(
			"You are the assistant of %s. No relevant document was found for this question. Answer from general knowledge and tell the user the organization's documents do not cover it.",
			s.opts.OrgName)
	}

	messages := []ai.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: in.Question},
	}
	answer, err := s.gen.Complete(ctx, s.modelFor(in.Variant), messages)
	if err != nil {
		return "", fmt.Errorf("generate answer failed: %w", err)
	}
	return answer, nil
}

func (s *AskService) modelFor(v ai.ModelVariant) string {
	if v == ai.ModelLarge {
		return s.opts.LargeModel
	}
	return s.opts.SmallModel
}

func (s *AskService) indexFingerprint() string {
	if idx := s.indexes.Current(); idx != nil {
		return idx.Fingerprint()
	}
	return "none"
}

// recordFailure logs the failed query so unanswered questions stay visible
// to the operators alongside the answered ones.
func (s *AskService) recordFailure(ctx context.Context, record *model.Interaction, start time.Time, cause error) {
	record.Status = model.InteractionStatusFailed
	record.ErrorKind = errorKind(cause)
	record.DurationMS = time.Since(start).Milliseconds()
	s.publish(ctx, *record)
}

func (s *AskService) publish(ctx context.Context, record model.Interaction) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, record); err != nil {
		log.Printf("ERROR: publish interaction %s failed: %v", record.InteractionID, err)
	}
}

func toSourceRefs(results []index.SearchResult) []SourceRef {
	if len(results) == 0 {
		return nil
	}
	refs := make([]SourceRef, len(results))
	for i, r := range results {
		refs[i] = SourceRef{
			ChunkID:  r.Chunk.ID(),
			SourceID: r.Chunk.SourceID,
			Sequence: r.Chunk.Sequence,
			Score:    r.Score,
		}
	}
	return refs
}

func chunkIDs(refs []SourceRef) []string {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ChunkID
	}
	return ids
}
