package pipelinenode

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
	conversationx "github.com/tanpawarit/Chative-Commerce-Governance/engine/conversation"
	timegatex "github.com/tanpawarit/Chative-Commerce-Governance/engine/timegate"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
}

func TestValidateRequestTrimsAndSeeds(t *testing.T) {
	t.Parallel()

	st, err := ValidateRequest(GraphInput{
		ConversationID:  "  conv-1 ",
		WorkspaceID:     " ws-1",
		CustomerMessage: " hello ",
	}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if st.Req.ConversationID != "conv-1" || st.Req.WorkspaceID != "ws-1" || st.Req.CustomerMessage != "hello" {
		t.Fatalf("unexpected normalized request: %+v", st.Req)
	}
	if !st.Now.Equal(fixedNow().UTC()) {
		t.Fatalf("Now = %v", st.Now)
	}

	cases := []struct {
		in   GraphInput
		want error
	}{
		{GraphInput{WorkspaceID: "ws", CustomerMessage: "hi"}, ErrInvalidConversation},
		{GraphInput{ConversationID: "c", CustomerMessage: "hi"}, ErrInvalidWorkspace},
		{GraphInput{ConversationID: "c", WorkspaceID: "ws", CustomerMessage: " "}, ErrInvalidMessage},
	}
	for _, tc := range cases {
		if _, err := ValidateRequest(tc.in, fixedNow); !errors.Is(err, tc.want) {
			t.Fatalf("ValidateRequest(%+v) error = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestCheckQuietHoursHalts(t *testing.T) {
	t.Parallel()

	st := &GraphState{
		Now: fixedNow(),
		Settings: &workspacex.AutomationSettings{
			Mode: workspacex.ModeAuto,
			QuietHours: []timegatex.QuietHoursPeriod{
				{Enabled: true, Start: "11:00", End: "13:00", Timezone: "UTC"},
			},
		},
	}

	st, err := CheckQuietHours(st, "back soon")
	if err != nil {
		t.Fatalf("CheckQuietHours() error = %v", err)
	}
	if !st.Halted {
		t.Fatalf("expected halt inside the quiet window")
	}
	if !st.Result.Queued || st.Result.Message != "back soon" {
		t.Fatalf("unexpected result: %+v", st.Result)
	}

	// Downstream nodes must pass a halted state through untouched.
	st2, err := CheckMode(st)
	if err != nil {
		t.Fatalf("CheckMode() error = %v", err)
	}
	if st2.Result != st.Result {
		t.Fatalf("halted state must pass through unchanged")
	}
}

func TestCheckModeManualHalts(t *testing.T) {
	t.Parallel()

	st := &GraphState{
		Now:      fixedNow(),
		Settings: &workspacex.AutomationSettings{Mode: workspacex.ModeManual},
	}
	st, err := CheckMode(st)
	if err != nil {
		t.Fatalf("CheckMode() error = %v", err)
	}
	if !st.Halted || !st.Result.Success {
		t.Fatalf("manual mode must halt with success, got %+v", st.Result)
	}

	active := &GraphState{
		Now:      fixedNow(),
		Settings: &workspacex.AutomationSettings{Mode: workspacex.ModeHITL},
	}
	active, err = CheckMode(active)
	if err != nil {
		t.Fatalf("CheckMode() error = %v", err)
	}
	if active.Halted {
		t.Fatalf("hitl mode must continue")
	}
}

func TestHistoryMessagesAvoidsDuplicateInbound(t *testing.T) {
	t.Parallel()

	history := []conversationx.Message{
		{Sender: conversationx.SenderCustomer, Content: "hi"},
		{Sender: conversationx.SenderAI, Content: "hello!"},
		{Sender: conversationx.SenderCustomer, Content: "price?"},
	}

	msgs := historyMessages(history, "price?")
	if len(msgs) != 3 {
		t.Fatalf("persisted inbound must not be appended twice, got %d messages", len(msgs))
	}

	msgs = historyMessages(history[:2], "price?")
	if len(msgs) != 3 {
		t.Fatalf("missing inbound must be appended, got %d messages", len(msgs))
	}
	last := msgs[len(msgs)-1]
	if last.Role != contractx.RoleUser || last.Content != "price?" {
		t.Fatalf("unexpected final message: %+v", last)
	}

	if msgs[1].Role != contractx.RoleAssistant {
		t.Fatalf("agent history must map to assistant role, got %q", msgs[1].Role)
	}
}

func TestToToolRequests(t *testing.T) {
	t.Parallel()

	reqs, err := toToolRequests([]contractx.ToolCall{
		{ID: "c1", Name: "search_products", Arguments: `{"query":"mouse"}`},
		{ID: "c2", Name: "view_cart", Arguments: ""},
	})
	if err != nil {
		t.Fatalf("toToolRequests() error = %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].Args["query"] != "mouse" {
		t.Fatalf("unexpected args: %+v", reqs[0].Args)
	}

	_, err = toToolRequests([]contractx.ToolCall{
		{ID: "c1", Name: "search_products", Arguments: `{broken`},
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}
