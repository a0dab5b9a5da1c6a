package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/mocks"
)

type pipelineHarness struct {
	pipeline    *Pipeline
	dispatcher  *mocks.MockDispatcher
	interpreter *mocks.MockInterpreter
	recorder    *mocks.MockHistoryRecorder

	mu        sync.Mutex
	responses []string
}

func newPipelineHarness(interpreter *mocks.MockInterpreter) *pipelineHarness {
	return newChatPipelineHarness(interpreter, nil)
}

func newChatPipelineHarness(interpreter *mocks.MockInterpreter, chat *mocks.MockConversationalist) *pipelineHarness {
	h := &pipelineHarness{
		dispatcher:  &mocks.MockDispatcher{},
		interpreter: interpreter,
		recorder:    &mocks.MockHistoryRecorder{},
	}

	cfg := PipelineConfig{
		Persona:  &mocks.MockPersonaSource{P: domain.Persona{AssistantName: "Aria", Locale: "en-US"}},
		Executor: NewExecutor(h.dispatcher, zap.NewNop()),
		Recorder: h.recorder,
		OnResponse: func(text string) {
			h.mu.Lock()
			h.responses = append(h.responses, text)
			h.mu.Unlock()
		},
		Timeout: time.Second,
		Logger:  zap.NewNop(),
	}
	if interpreter != nil {
		cfg.Interpreter = interpreter
	}
	if chat != nil {
		cfg.Chat = chat
	}
	h.pipeline = NewPipeline(cfg)
	return h
}

func (h *pipelineHarness) lastResponse() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.responses) == 0 {
		return ""
	}
	return h.responses[len(h.responses)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestPipeline_EmptyUtteranceDiscarded(t *testing.T) {
	h := newPipelineHarness(nil)

	if h.pipeline.SubmitUtterance(context.Background(), "   ") {
		t.Error("whitespace-only utterance must be discarded")
	}
	if len(h.dispatcher.Dispatched) != 0 {
		t.Errorf("nothing should be dispatched, got %v", h.dispatcher.Dispatched)
	}
}

func TestPipeline_UntriggeredUtteranceIgnored(t *testing.T) {
	h := newPipelineHarness(nil)

	if h.pipeline.SubmitUtterance(context.Background(), "just some background chatter") {
		t.Error("utterance without trigger must be ignored")
	}
	if len(h.dispatcher.Dispatched) != 0 {
		t.Errorf("nothing should be dispatched, got %v", h.dispatcher.Dispatched)
	}
}

func TestPipeline_NamePrefixStripsName(t *testing.T) {
	h := newPipelineHarness(nil)

	ok := h.pipeline.SubmitUtterance(context.Background(), "Aria, tell me about whales")
	if !ok {
		t.Fatal("name-addressed utterance must be processed")
	}

	action, found := h.dispatcher.Last()
	if !found {
		t.Fatal("expected a dispatched action")
	}
	if action.Kind != domain.ActionOpenSearch {
		t.Fatalf("expected catch-all search, got %s", action.Kind)
	}
	if action.Args.Query != "tell me about whales" {
		t.Errorf("name must be stripped before interpretation, got query %q", action.Args.Query)
	}
}

func TestPipeline_CatchAllKeepsOriginalCasing(t *testing.T) {
	h := newPipelineHarness(nil)

	ok := h.pipeline.SubmitUtterance(context.Background(), "Aria, Weather in São Paulo")
	if !ok {
		t.Fatal("name-addressed utterance must be processed")
	}

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionOpenSearch {
		t.Fatalf("expected catch-all search, got %s", action.Kind)
	}
	if action.Args.Query != "Weather in São Paulo" {
		t.Errorf("catch-all query must keep the user's casing, got %q", action.Args.Query)
	}
}

func TestPipeline_ImperativeWorksWithoutName(t *testing.T) {
	h := newPipelineHarness(nil)

	ok := h.pipeline.SubmitUtterance(context.Background(), "open youtube")
	if !ok {
		t.Fatal("imperative utterance must be processed without the name")
	}

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionOpenSite || action.Args.Site != "youtube" {
		t.Errorf("expected open_site youtube, got %+v", action)
	}
}

func TestPipeline_IdentityQuestionAnsweredFromPersona(t *testing.T) {
	h := newPipelineHarness(nil)

	ok := h.pipeline.SubmitUtterance(context.Background(), "who are you")
	if !ok {
		t.Fatal("identity question must be processed")
	}

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionSay {
		t.Fatalf("expected say, got %s", action.Kind)
	}
	if action.Args.Text != "I am Aria, your personal assistant." {
		t.Errorf("unexpected identity reply %q", action.Args.Text)
	}
}

func TestPipeline_IntroduceYourselfTriggersWithoutName(t *testing.T) {
	h := newPipelineHarness(nil)

	ok := h.pipeline.SubmitUtterance(context.Background(), "introduce yourself")
	if !ok {
		t.Fatal("introduction request must be processed without the name")
	}

	action, found := h.dispatcher.Last()
	if !found {
		t.Fatal("expected a dispatched action")
	}
	if action.Kind != domain.ActionSay {
		t.Fatalf("expected say, got %s", action.Kind)
	}
}

func TestPipeline_MetaQuestionGetsConversationalReply(t *testing.T) {
	chat := &mocks.MockConversationalist{
		ChatFunc: func(ctx context.Context, message, locale string) (string, error) {
			return "I am Aria. I open sites, search the web, and run your browser by voice.", nil
		},
	}
	h := newChatPipelineHarness(nil, chat)

	ok := h.pipeline.SubmitUtterance(context.Background(), "Aria, tell me about yourself")
	if !ok {
		t.Fatal("meta question must be processed")
	}

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionSay {
		t.Fatalf("meta question must get prose, not %s", action.Kind)
	}
	if action.Args.Text != "I am Aria. I open sites, search the web, and run your browser by voice." {
		t.Errorf("expected the conversational reply, got %q", action.Args.Text)
	}
}

func TestPipeline_MetaQuestionFallsBackToTemplateOnChatError(t *testing.T) {
	chat := &mocks.MockConversationalist{
		ChatFunc: func(ctx context.Context, message, locale string) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	}
	h := newChatPipelineHarness(nil, chat)

	h.pipeline.SubmitUtterance(context.Background(), "what is your name")

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionSay {
		t.Fatalf("expected say, got %s", action.Kind)
	}
	if action.Args.Text != "I am Aria, your personal assistant." {
		t.Errorf("expected identity template, got %q", action.Args.Text)
	}
}

func TestPipeline_RemoteInterpretationPreferred(t *testing.T) {
	interpreter := &mocks.MockInterpreter{
		InterpretFunc: func(ctx context.Context, text, locale string) (*domain.Action, error) {
			return &domain.Action{
				Kind: domain.ActionNavigate,
				Args: domain.ActionArgs{Path: "dashboard"},
			}, nil
		},
	}
	h := newPipelineHarness(interpreter)

	h.pipeline.SubmitUtterance(context.Background(), "aria take me to my dashboard")

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionNavigate {
		t.Fatalf("expected remote navigate, got %s", action.Kind)
	}
	if action.Args.Path != "/dashboard" {
		t.Errorf("remote route word must be normalized to a path, got %q", action.Args.Path)
	}
}

func TestPipeline_RemoteFailureFallsBackToRules(t *testing.T) {
	interpreter := &mocks.MockInterpreter{
		InterpretFunc: func(ctx context.Context, text, locale string) (*domain.Action, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	h := newPipelineHarness(interpreter)

	ok := h.pipeline.SubmitUtterance(context.Background(), "search for cat videos")
	if !ok {
		t.Fatal("utterance must still be processed when remote fails")
	}

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionOpenSearch || action.Args.Query != "cat videos" {
		t.Errorf("expected rule-table search, got %+v", action)
	}
}

func TestPipeline_InvalidRemoteActionFallsBackToRules(t *testing.T) {
	interpreter := &mocks.MockInterpreter{
		InterpretFunc: func(ctx context.Context, text, locale string) (*domain.Action, error) {
			return &domain.Action{Kind: "launch_missiles"}, nil
		},
	}
	h := newPipelineHarness(interpreter)

	h.pipeline.SubmitUtterance(context.Background(), "scroll down")

	action, _ := h.dispatcher.Last()
	if action.Kind != domain.ActionScroll {
		t.Errorf("out-of-vocabulary remote action must be discarded, got %+v", action)
	}
}

func TestPipeline_ResponseDeliveredThenRecorded(t *testing.T) {
	h := newPipelineHarness(nil)

	h.pipeline.SubmitUtterance(context.Background(), "say hello")

	if h.lastResponse() != "hello" {
		t.Errorf("expected response 'hello', got %q", h.lastResponse())
	}

	waitFor(t, func() bool { return h.recorder.Count() == 1 })
	if h.recorder.Records[0][0] != "say hello" {
		t.Errorf("expected recorded command 'say hello', got %q", h.recorder.Records[0][0])
	}
	if h.recorder.Records[0][1] != "hello" {
		t.Errorf("expected recorded response 'hello', got %q", h.recorder.Records[0][1])
	}
}

func TestPipeline_RecorderFailureDoesNotAffectResponse(t *testing.T) {
	h := newPipelineHarness(nil)
	h.recorder.RecordFunc = func(ctx context.Context, command, response string) error {
		return errors.New("queue down")
	}

	ok := h.pipeline.SubmitUtterance(context.Background(), "reload the page")
	if !ok {
		t.Fatal("utterance must be processed despite recorder failure")
	}
	if h.lastResponse() != "Reloading the page" {
		t.Errorf("response must still be delivered, got %q", h.lastResponse())
	}
}

func TestPipeline_BusyDropsSecondUtterance(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	interpreter := &mocks.MockInterpreter{
		InterpretFunc: func(ctx context.Context, text, locale string) (*domain.Action, error) {
			close(started)
			<-release
			return nil, errors.New("slow")
		},
	}
	h := newPipelineHarness(interpreter)

	done := make(chan bool)
	go func() {
		done <- h.pipeline.SubmitUtterance(context.Background(), "search for first command")
	}()
	<-started

	if h.pipeline.SubmitUtterance(context.Background(), "search for second command") {
		t.Error("second utterance must be dropped while one is in flight")
	}

	close(release)
	if !<-done {
		t.Error("first utterance must complete")
	}
}
