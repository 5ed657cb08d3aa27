package pipelinenode

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	commercex "github.com/tanpawarit/Chative-Commerce-Governance/engine/commerce"
	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	conversationx "github.com/tanpawarit/Chative-Commerce-Governance/engine/conversation"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

// historyLimit caps the transcript sent to the model.
const historyLimit = 20

// LoadContext fans out the context loads concurrently and joins before the
// pipeline proceeds. Any failure aborts the run: governance never operates
// on partial context. A missing cart is the one exception, treated as empty.
func LoadContext(
	ctx context.Context,
	in *GraphState,
	settingsStore workspacex.Store,
	convStore conversationx.Store,
	commerceStore commercex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, errors.New("graph state is nil")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		settings, err := settingsStore.LoadSettings(gctx, in.Req.WorkspaceID)
		if err != nil {
			return fmt.Errorf("%w: automation settings: %v", contractx.ErrConfiguration, err)
		}
		in.Settings = settings
		return nil
	})

	g.Go(func() error {
		profile, err := settingsStore.LoadProfile(gctx, in.Req.WorkspaceID)
		if err != nil {
			return fmt.Errorf("%w: workspace profile: %v", contractx.ErrConfiguration, err)
		}
		in.Profile = profile
		return nil
	})

	g.Go(func() error {
		conv, err := convStore.Get(gctx, in.Req.ConversationID)
		if err != nil {
			return fmt.Errorf("%w: conversation: %v", contractx.ErrConfiguration, err)
		}
		in.Conversation = conv
		return nil
	})

	g.Go(func() error {
		history, err := convStore.RecentMessages(gctx, in.Req.ConversationID, historyLimit)
		if err != nil {
			return fmt.Errorf("%w: message history: %v", contractx.ErrConfiguration, err)
		}
		in.History = history
		return nil
	})

	g.Go(func() error {
		cart, err := commerceStore.GetCart(gctx, in.Req.ConversationID)
		if err != nil {
			if errors.Is(err, commercex.ErrCartNotFound) {
				return nil
			}
			return fmt.Errorf("%w: cart: %v", contractx.ErrConfiguration, err)
		}
		in.Cart = cart
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if in.Conversation.Channel.Destination == "" {
		return nil, fmt.Errorf("%w: conversation has no channel destination", contractx.ErrConfiguration)
	}

	return in, nil
}
