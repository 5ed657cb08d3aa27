package pipelinenode

import (
	"errors"

	timegatex "github.com/tanpawarit/Chative-Commerce-Governance/engine/timegate"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

// CheckQuietHours suppresses the run entirely when the message arrives in an
// enabled quiet-hours window, regardless of mode. The canned acknowledgement
// is returned to ingress; nothing is persisted and no model is called.
func CheckQuietHours(in *GraphState, quietReply string) (*GraphState, error) {
	if in == nil || in.Settings == nil {
		return nil, errors.New("graph state is not loaded")
	}
	if in.Halted {
		return in, nil
	}

	if timegatex.InQuietHours(in.Settings.QuietHours, in.Now) {
		in.Halted = true
		in.Result = GraphOutput{
			Success: true,
			Queued:  true,
			Message: quietReply,
		}
	}
	return in, nil
}

// CheckMode makes manual mode fully passive: no model call, no persistence,
// no side effects, so an operator can leave it on at zero AI cost or risk.
func CheckMode(in *GraphState) (*GraphState, error) {
	if in == nil || in.Settings == nil {
		return nil, errors.New("graph state is not loaded")
	}
	if in.Halted {
		return in, nil
	}

	if in.Settings.Mode == workspacex.ModeManual {
		in.Halted = true
		in.Result = GraphOutput{Success: true}
	}
	return in, nil
}
