package router

import (
	"context"
	"log"
	"strings"

	"communerag/internal/ai"
)

// Decision says whether a question needs the knowledge base before
// generation.
type Decision string

const (
	DecisionDirect   Decision = "direct"
	DecisionRetrieve Decision = "retrieve"
)

// Matcher is the pluggable stage-one predicate. The rule source (static
// list, regex set, learned model) can change without touching the router.
type Matcher interface {
	Matches(question string) bool
}

// Generator is the slice of the AI client used for the classification call.
type Generator interface {
	Complete(ctx context.Context, model string, messages []ai.ChatMessage) (string, error)
}

// Router classifies a question in two stages: a cheap keyword check that
// short-circuits to retrieve, then a model-based classification for the
// ambiguous rest. Any failure in stage two falls back to retrieve — an
// unnecessary retrieval is cheaper than a hallucinated direct answer.
type Router struct {
	matcher   Matcher
	generator Generator
	model     string
	orgName   string
}

func New(matcher Matcher, generator Generator, model, orgName string) *Router {
	return &Router{
		matcher:   matcher,
		generator: generator,
		model:     model,
		orgName:   orgName,
	}
}

// Route never fails: classification errors are absorbed by the fail-safe.
func (r *Router) Route(ctx context.Context, question string) Decision {
	if r.matcher != nil && r.matcher.Matches(question) {
		return DecisionRetrieve
	}
	if r.generator == nil {
		return DecisionRetrieve
	}

	messages := []ai.ChatMessage{
		{Role: "system", Content: r.classificationPrompt()},
		{Role: "user", Content: question},
	}
	reply, err := r.generator.Complete(ctx, r.model, messages)
	if err != nil {
		log.Printf("router classification failed, defaulting to retrieve: %v", err)
		return DecisionRetrieve
	}
	return parseDecision(reply)
}

func (r *Router) classificationPrompt() string {
	return "You are a query classifier for the virtual assistant of " + r.orgName + ".\n" +
		"Decide whether answering the question requires searching the organization's private knowledge base.\n\n" +
		"Reply with exactly one word:\n" +
		"- RETRIEVE if the question concerns information specific to " + r.orgName + " (services, opening hours, contacts, events, procedures)\n" +
		"- DIRECT if it is a greeting, small talk, or a general-knowledge question\n\n" +
		"Examples:\n" +
		"Question: \"Hello, how are you?\" -> DIRECT\n" +
		"Question: \"What are the town hall's opening hours?\" -> RETRIEVE\n" +
		"Question: \"Who is the current mayor?\" -> RETRIEVE\n" +
		"Question: \"What is artificial intelligence?\" -> DIRECT"
}

// parseDecision maps the model reply onto the enum. Anything unparseable
// yields retrieve, never direct.
func parseDecision(reply string) Decision {
	normalized := strings.ToUpper(strings.TrimSpace(reply))
	switch {
	case strings.HasPrefix(normalized, "DIRECT"):
		return DecisionDirect
	case strings.HasPrefix(normalized, "RETRIEVE"), strings.HasPrefix(normalized, "RAG"):
		return DecisionRetrieve
	}
	return DecisionRetrieve
}
