package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/observability/telemetry"
	"github.com/arialabs/aria/internal/ports"
)

// generalPatterns match imperative commands that are acted on even without
// the assistant's name. Anything else requires addressing the assistant.
var generalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:open|go\s+to|navigate\s+to)\s+`),
	regexp.MustCompile(`^(?:search|google)\b`),
	regexp.MustCompile(`^youtube\b`),
	regexp.MustCompile(`^scroll\b`),
	regexp.MustCompile(`^(?:reload|refresh)\b`),
	regexp.MustCompile(`^go\s+(?:back|forward)$`),
	regexp.MustCompile(`^say\s+`),
	regexp.MustCompile(`^(?:what(?:'s|\s+is)?\s+)?(?:the\s+)?(?:time|date)\b`),
	regexp.MustCompile(`^(?:what(?:'s|\s+is)?\s+)?(?:your\s+name|who\s+are\s+you)\b`),
	regexp.MustCompile(`^introduce\s+yourself\b`),
	regexp.MustCompile(`^tell\s+me\s+about\s+yourself\b`),
	regexp.MustCompile(`^show\s+`),
	regexp.MustCompile(`^access\s+`),
}

// metaPattern matches questions about the assistant itself. These get
// conversational prose instead of a browser command.
var metaPattern = regexp.MustCompile(`^(?:what(?:'s|\s+is)?\s+your\s+name|who\s+are\s+you|introduce\s+yourself|tell\s+me\s+about\s+yourself)\??$`)

// Pipeline carries a finalized utterance from trigger detection through
// interpretation to execution and history recording. One pipeline exists per
// voice session; at most one utterance is processed at a time and later
// utterances arriving while one is in flight are dropped.
type Pipeline struct {
	interpreter ports.Interpreter
	chat        ports.Conversationalist
	persona     ports.PersonaSource
	executor    *Executor
	recorder    ports.HistoryRecorder
	onResponse  func(text string)
	timeout     time.Duration
	inFlight    atomic.Bool
	log         *zap.Logger
}

// PipelineConfig collects the collaborators for NewPipeline. Interpreter,
// Chat and Recorder may be nil; the pipeline then runs rule-table only,
// answers meta questions from a template, and does not persist history.
type PipelineConfig struct {
	Interpreter ports.Interpreter
	Chat        ports.Conversationalist
	Persona     ports.PersonaSource
	Executor    *Executor
	Recorder    ports.HistoryRecorder
	OnResponse  func(text string)
	Timeout     time.Duration
	Logger      *zap.Logger
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &Pipeline{
		interpreter: cfg.Interpreter,
		chat:        cfg.Chat,
		persona:     cfg.Persona,
		executor:    cfg.Executor,
		recorder:    cfg.Recorder,
		onResponse:  cfg.OnResponse,
		timeout:     cfg.Timeout,
		log:         cfg.Logger,
	}
}

// SubmitUtterance runs one finalized utterance through the pipeline. Returns
// false when the utterance was discarded: empty, not addressed to the
// assistant, or a command was already in flight.
func (p *Pipeline) SubmitUtterance(ctx context.Context, raw string) bool {
	persona := p.persona.Persona()
	u := domain.NewUtterance(raw, persona.Locale)
	if u.Normalized == "" {
		return false
	}

	command, ok := p.trigger(u, persona.AssistantName)
	if !ok {
		p.log.Debug("utterance ignored, no trigger", zap.String("text", u.Normalized))
		telemetry.UtterancesDropped.WithLabelValues("no_trigger").Inc()
		return false
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug("utterance dropped, command in flight", zap.String("text", command))
		telemetry.UtterancesDropped.WithLabelValues("busy").Inc()
		return false
	}
	defer p.inFlight.Store(false)

	p.process(ctx, command, persona)
	return true
}

// trigger returns the command portion of the utterance when the user either
// addressed the assistant by name or used an imperative command pattern. The
// returned command keeps the original casing so it can be carried through to
// search queries verbatim.
func (p *Pipeline) trigger(u domain.Utterance, assistantName string) (string, bool) {
	if assistantName != "" {
		name := regexp.QuoteMeta(assistantName)
		re := regexp.MustCompile(`(?i)^` + name + `[:,]?\s+(.+)$`)
		if m := re.FindStringSubmatch(u.Raw); m != nil {
			return strings.TrimSpace(m[1]), true
		}
		if u.Normalized == strings.ToLower(assistantName) {
			// Bare name: treated as a greeting prompt.
			return "who are you", true
		}
	}
	for _, re := range generalPatterns {
		if re.MatchString(u.Normalized) {
			return u.Raw, true
		}
	}
	return "", false
}

func (p *Pipeline) process(ctx context.Context, command string, persona domain.Persona) {
	u := domain.NewUtterance(command, persona.Locale)

	result := p.interpret(ctx, u, persona)
	p.log.Info("utterance interpreted",
		zap.String("command", u.Normalized),
		zap.String("action", string(result.Action.Kind)),
		zap.String("source", string(result.Source)),
		zap.String("rule", result.Rule))

	response, err := p.executor.Execute(result.Action)
	if err != nil {
		p.log.Error("command execution failed", zap.Error(err))
		return
	}
	telemetry.CommandsTotal.WithLabelValues(string(result.Action.Kind), string(result.Source)).Inc()

	if p.onResponse != nil {
		p.onResponse(response)
	}

	if p.recorder != nil {
		go func(cmd, resp string) {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := p.recorder.Record(rctx, cmd, resp); err != nil {
				p.log.Warn("history record failed", zap.Error(err))
				telemetry.HistoryWriteFailures.Inc()
			}
		}(u.Raw, response)
	}
}

// interpret resolves the command to an action: the remote interpreter is
// tried first, then meta questions get conversational prose, then the rule
// table. The rule table always yields an action, so interpretation cannot
// fail.
func (p *Pipeline) interpret(ctx context.Context, u domain.Utterance, persona domain.Persona) domain.InterpretationResult {
	if p.interpreter != nil {
		ictx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		start := time.Now()
		action, err := p.interpreter.Interpret(ictx, u.Normalized, u.Locale)
		telemetry.InterpretLatency.Observe(time.Since(start).Seconds())
		if err == nil && action != nil {
			normalized := p.normalizeRemote(*action)
			if normalized.Valid() {
				return domain.InterpretationResult{Action: normalized, Source: domain.SourceRemote}
			}
			p.log.Warn("remote interpretation invalid, falling through",
				zap.String("action", string(action.Kind)))
		} else if err != nil {
			p.log.Warn("remote interpretation failed, falling through", zap.Error(err))
		}
	}

	if metaPattern.MatchString(u.Normalized) {
		return p.answerMeta(ctx, u, persona)
	}

	return Parse(u)
}

// answerMeta resolves a question about the assistant itself. The
// conversational capability answers in prose when available; otherwise a
// fixed introduction built from the persona.
func (p *Pipeline) answerMeta(ctx context.Context, u domain.Utterance, persona domain.Persona) domain.InterpretationResult {
	if p.chat != nil {
		cctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		reply, err := p.chat.Chat(cctx, u.Raw, u.Locale)
		if err == nil && strings.TrimSpace(reply) != "" {
			return domain.InterpretationResult{
				Action: domain.Action{
					Kind: domain.ActionSay,
					Args: domain.ActionArgs{Text: strings.TrimSpace(reply)},
				},
				Source: domain.SourceRemote,
				Rule:   "chat",
			}
		}
		if err != nil {
			p.log.Warn("chat unavailable, using identity template", zap.Error(err))
		}
	}

	name := persona.AssistantName
	if name == "" {
		name = "Aria"
	}
	return domain.InterpretationResult{
		Action: domain.Action{
			Kind: domain.ActionSay,
			Args: domain.ActionArgs{Text: fmt.Sprintf("I am %s, your personal assistant.", name)},
		},
		Source: domain.SourceLocal,
		Rule:   "identity",
	}
}

// normalizeRemote repairs remote results that are close to valid: route words
// in the navigate path and bare URLs without a scheme.
func (p *Pipeline) normalizeRemote(action domain.Action) domain.Action {
	switch action.Kind {
	case domain.ActionNavigate:
		word := strings.TrimSpace(strings.ToLower(action.Args.Path))
		word = strings.TrimPrefix(word, "/")
		if path, ok := ResolveRoute(word); ok {
			action.Args.Path = path
		} else if resolved, ok := ResolveRoute("/" + word); ok {
			action.Args.Path = resolved
		}
	case domain.ActionOpenURL:
		url := strings.TrimSpace(action.Args.URL)
		if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "https://" + url
		}
		action.Args.URL = url
	case domain.ActionOpenSite:
		action.Args.Site = strings.TrimSpace(strings.ToLower(action.Args.Site))
	case domain.ActionOpenSearch:
		action.Args.Engine = strings.TrimSpace(strings.ToLower(action.Args.Engine))
		if action.Args.Engine == "" {
			action.Args.Engine = domain.EngineGoogle
		}
	}
	return action
}
