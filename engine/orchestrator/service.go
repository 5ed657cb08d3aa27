package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	approvalx "github.com/tanpawarit/Chative-Commerce-Governance/engine/approval"
	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
	commercex "github.com/tanpawarit/Chative-Commerce-Governance/engine/commerce"
	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	conversationx "github.com/tanpawarit/Chative-Commerce-Governance/engine/conversation"
	inflightx "github.com/tanpawarit/Chative-Commerce-Governance/engine/inflight"
	nodex "github.com/tanpawarit/Chative-Commerce-Governance/engine/nodes"
	rulex "github.com/tanpawarit/Chative-Commerce-Governance/engine/rules"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

var (
	ErrInvalidConversation = nodex.ErrInvalidConversation
	ErrInvalidWorkspace    = nodex.ErrInvalidWorkspace
	ErrInvalidMessage      = nodex.ErrInvalidMessage

	// ErrConversationBusy reports that another invocation already holds the
	// in-flight marker; ingress should redeliver later.
	ErrConversationBusy = errors.New("conversation pipeline already in flight")
)

const defaultQuietReply = "Thanks for reaching out! We're currently away, but we'll reply as soon as we're back."

// Deps bundles the collaborators of one engine instance. All of them are
// required except Locker, which defaults to no contention.
type Deps struct {
	Settings   workspacex.Store
	Convs      conversationx.Store
	Commerce   commercex.Store
	Rules      *rulex.Loader
	Tools      contractx.ToolGateway
	Completion contractx.CompletionClient
	Sentiment  contractx.SentimentEstimator
	Sender     contractx.ChannelSender
	Approvals  *approvalx.Service
	Audit      *auditx.Recorder
	Locker     inflightx.Locker
}

// Config holds the engine's tunables.
type Config struct {
	QuietReply string
}

// Engine is the orchestration engine: stateless per invocation, one inbound
// message per run, all cross-invocation state in the backing stores.
type Engine struct {
	deps Deps
	cfg  Config

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(deps Deps, cfg Config) (*Engine, error) {
	switch {
	case deps.Settings == nil:
		return nil, errors.New("settings store is required")
	case deps.Convs == nil:
		return nil, errors.New("conversation store is required")
	case deps.Commerce == nil:
		return nil, errors.New("commerce store is required")
	case deps.Rules == nil:
		return nil, errors.New("rule loader is required")
	case deps.Tools == nil:
		return nil, errors.New("tool gateway is required")
	case deps.Completion == nil:
		return nil, errors.New("completion client is required")
	case deps.Sentiment == nil:
		return nil, errors.New("sentiment estimator is required")
	case deps.Sender == nil:
		return nil, errors.New("channel sender is required")
	case deps.Approvals == nil:
		return nil, errors.New("approval service is required")
	}
	if deps.Locker == nil {
		deps.Locker = inflightx.NoopLocker{}
	}
	if strings.TrimSpace(cfg.QuietReply) == "" {
		cfg.QuietReply = defaultQuietReply
	}

	e := &Engine{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
	}

	graphRunner, err := e.compilePipelineGraph(context.Background())
	if err != nil {
		return nil, err
	}
	e.graphRunner = graphRunner

	return e, nil
}

// HandleInboundMessage runs the full pipeline for one inbound message. Any
// completion, tool-transport, or channel failure aborts the run; the
// message stays unanswered and must be redelivered by ingress.
func (e *Engine) HandleInboundMessage(ctx context.Context, req contractx.OrchestrationRequest) (contractx.OrchestrationResult, error) {
	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		return contractx.OrchestrationResult{}, ErrInvalidConversation
	}

	acquired, err := e.deps.Locker.Acquire(ctx, conversationID)
	if err != nil {
		return contractx.OrchestrationResult{}, fmt.Errorf("acquire in-flight marker: %w", err)
	}
	if !acquired {
		return contractx.OrchestrationResult{}, ErrConversationBusy
	}
	defer func() {
		if err := e.deps.Locker.Release(context.WithoutCancel(ctx), conversationID); err != nil {
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("in-flight marker release failed")
		}
	}()

	out, err := e.graphRunner.Invoke(ctx, req)
	if err != nil {
		return contractx.OrchestrationResult{}, err
	}
	return out, nil
}

// RecordOutbound persists the sent candidate and refreshes the conversation
// preview/timestamp. Implements the dispatch node's OutboundRecorder.
func (e *Engine) RecordOutbound(ctx context.Context, in *nodex.GraphState) error {
	return e.deps.Convs.AppendOutbound(ctx, in.Req.ConversationID, in.Candidate, in.Now)
}
