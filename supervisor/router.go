package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/logging"
)

var (
	// ErrNoRoute is returned when neither the classified intent nor a
	// default route is present in the table.
	ErrNoRoute = errors.New("no route for intent")
	// ErrUnknownIntent is returned by classifiers whose answer is not one of
	// the offered intents.
	ErrUnknownIntent = errors.New("unknown intent")
)

// Intent labels a class of requests.
type Intent string

const (
	IntentPDF       Intent = "pdf"
	IntentCode      Intent = "code"
	IntentWebSearch Intent = "web_search"
	IntentGeneral   Intent = "general"
)

// Request is the input of a route.
type Request struct {
	Prompt string
	// History is prior conversation handed to the route's first agent.
	History []core.Message
	// ChainTests asks the PDF route to generate a test from the document.
	ChainTests deps.ChainTests
}

// Reply is what a route produced.
type Reply struct {
	Output string
	Usage  core.Usage
}

// Handler serves one route.
type Handler func(ctx context.Context, req Request) (Reply, error)

// Route is a named delegation target.
type Route struct {
	Name        string
	Description string
	Handler     Handler
}

// Outcome reports a dispatch.
type Outcome struct {
	Intent   Intent
	Route    string
	Fallback bool
	Reply
	messages []core.Message
}

// Messages returns the exchange as a user/assistant pair that can be passed
// as history to the next dispatch.
func (o *Outcome) Messages() []core.Message { return core.CloneHistory(o.messages) }

// RouterOptions configure a Router.
type RouterOptions struct {
	// Default is used for intents missing from the table. Empty disables
	// the fallback.
	Default Intent
	Logger  logging.Logger
}

// Router is an explicit intent → route dispatch table.
type Router struct {
	classifier Classifier
	routes     map[Intent]Route
	opts       RouterOptions
}

// NewRouter validates the table and returns a Router.
func NewRouter(classifier Classifier, routes map[Intent]Route, optFns ...func(o *RouterOptions)) (*Router, error) {
	opts := RouterOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if classifier == nil {
		return nil, errors.New("classifier is required")
	}

	if len(routes) == 0 {
		return nil, errors.New("at least one route is required")
	}

	table := make(map[Intent]Route, len(routes))
	for intent, r := range routes {
		if r.Handler == nil {
			return nil, fmt.Errorf("route %q for intent %s has no handler", r.Name, intent)
		}
		if r.Name == "" {
			r.Name = string(intent)
		}
		table[intent] = r
	}

	if opts.Default != "" {
		if _, ok := table[opts.Default]; !ok {
			return nil, fmt.Errorf("default intent %s: %w", opts.Default, ErrNoRoute)
		}
	}

	return &Router{classifier: classifier, routes: table, opts: opts}, nil
}

// Intents returns the table's intents in sorted order.
func (r *Router) Intents() []Intent {
	intents := make([]Intent, 0, len(r.routes))
	for i := range r.routes {
		intents = append(intents, i)
	}
	sort.Slice(intents, func(a, b int) bool { return intents[a] < intents[b] })
	return intents
}

// Dispatch classifies req.Prompt and runs the matching route.
func (r *Router) Dispatch(ctx context.Context, req Request) (*Outcome, error) {
	if req.Prompt == "" {
		return nil, errors.New("prompt is required")
	}

	logger := r.opts.Logger

	intent, err := r.classifier.Classify(ctx, req.Prompt, r.Intents())
	if err != nil && !errors.Is(err, ErrUnknownIntent) {
		return nil, fmt.Errorf("classify: %w", err)
	}

	route, ok := r.routes[intent]
	fallback := false

	if err != nil || !ok {
		if r.opts.Default == "" {
			return nil, fmt.Errorf("%w %q", ErrNoRoute, intent)
		}

		logger.Warn("supervisor.route.fallback", "intent", string(intent), "default", string(r.opts.Default))

		intent, route, fallback = r.opts.Default, r.routes[r.opts.Default], true
	}

	logger.Info("supervisor.route.dispatch", "intent", string(intent), "route", route.Name)

	reply, err := route.Handler(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", route.Name, err)
	}

	return &Outcome{
		Intent:   intent,
		Route:    route.Name,
		Fallback: fallback,
		Reply:    reply,
		messages: []core.Message{
			core.NewUserMessage("", req.Prompt),
			core.NewAssistantMessage("", route.Name, reply.Output),
		},
	}, nil
}
