package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/Chative-Commerce-Governance/engine/nodes"
)

func (e *Engine) compilePipelineGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, e.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadContext(ctx, in, e.deps.Settings, e.deps.Convs, e.deps.Commerce)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_context: %w", err)
	}

	if err := graph.AddLambdaNode("check_quiet_hours",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CheckQuietHours(in, e.cfg.QuietReply)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_quiet_hours: %w", err)
	}

	if err := graph.AddLambdaNode("check_mode",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CheckMode(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_mode: %w", err)
	}

	if err := graph.AddLambdaNode("build_prompt",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BuildPrompt(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_prompt: %w", err)
	}

	if err := graph.AddLambdaNode("run_tool_loop",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunToolLoop(ctx, in, e.deps.Completion, e.deps.Tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_tool_loop: %w", err)
	}

	if err := graph.AddLambdaNode("estimate_sentiment",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.EstimateSentiment(ctx, in, e.deps.Sentiment)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node estimate_sentiment: %w", err)
	}

	if err := graph.AddLambdaNode("inject_compliance",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.InjectCompliance(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node inject_compliance: %w", err)
	}

	if err := graph.AddLambdaNode("score_confidence",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ScoreConfidence(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node score_confidence: %w", err)
	}

	if err := graph.AddLambdaNode("evaluate_rules",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.EvaluateRules(ctx, in, e.deps.Rules)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node evaluate_rules: %w", err)
	}

	if err := graph.AddLambdaNode("decide",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Decide(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Dispatch(ctx, in, e.deps.Sender, e, e.deps.Approvals, e.deps.Audit)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Finalize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_context"},
		{"load_context", "check_quiet_hours"},
		{"check_quiet_hours", "check_mode"},
		{"check_mode", "build_prompt"},
		{"build_prompt", "run_tool_loop"},
		{"run_tool_loop", "estimate_sentiment"},
		{"estimate_sentiment", "inject_compliance"},
		{"inject_compliance", "score_confidence"},
		{"score_confidence", "evaluate_rules"},
		{"evaluate_rules", "decide"},
		{"decide", "dispatch"},
		{"dispatch", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("governance.handle_inbound_message"))
	if err != nil {
		return nil, fmt.Errorf("compile pipeline graph: %w", err)
	}
	return runner, nil
}
