package pipelinenode

import (
	"errors"

	promptx "github.com/tanpawarit/Chative-Commerce-Governance/engine/prompt"
)

// BuildPrompt layers the system prompt from core framework, workspace facts,
// brand voice, do/don't lists, and compliance notes.
func BuildPrompt(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}
	if in.Halted {
		return in, nil
	}

	facts := promptx.Facts{}
	if in.Profile != nil {
		facts.BusinessName = in.Profile.BusinessName
		facts.CatalogSize = in.Profile.CatalogSize
	}
	if in.Cart != nil {
		facts.CartItems = len(in.Cart.Items)
		facts.CartTotal = in.Cart.Total()
	}

	in.SystemPrompt = promptx.Build(in.Settings, facts)
	return in, nil
}
