package supervisor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/model"
)

// Classifier maps a prompt to one of the offered intents.
type Classifier interface {
	Classify(ctx context.Context, prompt string, intents []Intent) (Intent, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, prompt string, intents []Intent) (Intent, error)

// Classify implements Classifier.
func (f ClassifierFunc) Classify(ctx context.Context, prompt string, intents []Intent) (Intent, error) {
	return f(ctx, prompt, intents)
}

// KeywordRule selects Intent when the prompt contains any of Keywords.
type KeywordRule struct {
	Intent   Intent
	Keywords []string
}

// DefaultKeywordRules returns the built-in rules, checked in order.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Intent: IntentPDF, Keywords: []string{"pdf"}},
		{Intent: IntentWebSearch, Keywords: []string{"search", "web", "internet", "resources", "look up"}},
		{Intent: IntentCode, Keywords: []string{"code", "python", "program", "script", "solve", "task"}},
	}
}

// KeywordClassifier is a deterministic classifier: the first rule with a
// matching keyword wins; no match yields IntentGeneral.
type KeywordClassifier struct {
	rules []KeywordRule
}

// NewKeywordClassifier uses DefaultKeywordRules when rules is empty.
func NewKeywordClassifier(rules ...KeywordRule) *KeywordClassifier {
	if len(rules) == 0 {
		rules = DefaultKeywordRules()
	}
	return &KeywordClassifier{rules: rules}
}

// Classify implements Classifier. Rules for intents not offered are skipped.
func (c *KeywordClassifier) Classify(_ context.Context, prompt string, intents []Intent) (Intent, error) {
	offered := make(map[Intent]bool, len(intents))
	for _, i := range intents {
		offered[i] = true
	}

	p := strings.ToLower(prompt)
	for _, rule := range c.rules {
		if !offered[rule.Intent] {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(p, strings.ToLower(kw)) {
				return rule.Intent, nil
			}
		}
	}

	return IntentGeneral, nil
}

const classifierInstruction = "You classify user requests. " +
	"Reply with exactly one label from the given list and nothing else."

// ModelClassifier asks a model for a single label.
type ModelClassifier struct {
	agent *agent.Agent[deps.None]
}

// NewModelClassifier builds the classifying agent on llm.
func NewModelClassifier(llm model.Model, optFns ...func(o *agent.Options)) (*ModelClassifier, error) {
	fns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromText(classifierInstruction)
	}}, optFns...)

	a, err := agent.New[deps.None]("intent_classifier", llm, fns...)
	if err != nil {
		return nil, err
	}

	return &ModelClassifier{agent: a}, nil
}

// Classify implements Classifier. Answers that name none of the intents
// yield ErrUnknownIntent.
func (c *ModelClassifier) Classify(ctx context.Context, prompt string, intents []Intent) (Intent, error) {
	labels := make([]string, 0, len(intents))
	for _, i := range intents {
		labels = append(labels, string(i))
	}

	res, err := c.agent.Run(ctx, fmt.Sprintf("Labels: %s\n\nRequest: %s", strings.Join(labels, ", "), prompt), deps.None{})
	if err != nil {
		return "", err
	}

	return ParseLabel(res.Output, intents)
}

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ParseLabel returns the offered intent named earliest in a model answer.
// Reasoning blocks are ignored and "web search" or "web-search" match
// web_search.
func ParseLabel(answer string, intents []Intent) (Intent, error) {
	s := strings.ToLower(thinkRe.ReplaceAllString(answer, ""))

	best, bestPos := Intent(""), -1
	for _, i := range intents {
		loc := labelPattern(i).FindStringIndex(s)
		if loc != nil && (bestPos < 0 || loc[0] < bestPos) {
			best, bestPos = i, loc[0]
		}
	}

	if bestPos < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, strings.TrimSpace(answer))
	}

	return best, nil
}

// labelPatterns caches one compiled pattern per intent.
var labelPatterns sync.Map

func labelPattern(i Intent) *regexp.Regexp {
	if re, ok := labelPatterns.Load(i); ok {
		return re.(*regexp.Regexp)
	}

	name := strings.ToLower(string(i))
	variants := []string{
		regexp.QuoteMeta(name),
		regexp.QuoteMeta(strings.ReplaceAll(name, "_", " ")),
		regexp.QuoteMeta(strings.ReplaceAll(name, "_", "-")),
	}

	re, _ := labelPatterns.LoadOrStore(i, regexp.MustCompile(`\b(?:`+strings.Join(variants, "|")+`)\b`))
	return re.(*regexp.Regexp)
}
