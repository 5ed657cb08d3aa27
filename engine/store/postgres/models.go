package postgres

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	approvalx "github.com/tanpawarit/Chative-Commerce-Governance/engine/approval"
	commercex "github.com/tanpawarit/Chative-Commerce-Governance/engine/commerce"
	conversationx "github.com/tanpawarit/Chative-Commerce-Governance/engine/conversation"
	rulex "github.com/tanpawarit/Chative-Commerce-Governance/engine/rules"
	timegatex "github.com/tanpawarit/Chative-Commerce-Governance/engine/timegate"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

type dbWorkspaceSettings struct {
	bun.BaseModel `bun:"table:workspace_settings"`

	WorkspaceID         string                         `bun:"workspace_id,pk"`
	Mode                string                         `bun:"mode,notnull"`
	ConfidenceThreshold int                            `bun:"confidence_threshold,notnull"`
	AIVoice             string                         `bun:"ai_voice"`
	DoList              []string                       `bun:"do_list,type:jsonb"`
	DontList            []string                       `bun:"dont_list,type:jsonb"`
	EscalationRules     string                         `bun:"escalation_rules"`
	QuietHours          []timegatex.QuietHoursPeriod   `bun:"quiet_hours,type:jsonb"`
	BusinessHours       timegatex.BusinessHoursConfig  `bun:"business_hours,type:jsonb"`
	ComplianceNotes     string                         `bun:"compliance_notes"`
	UpdatedAt           time.Time                      `bun:"updated_at,notnull"`
}

func (m *dbWorkspaceSettings) toDomain() *workspacex.AutomationSettings {
	return &workspacex.AutomationSettings{
		WorkspaceID:         m.WorkspaceID,
		Mode:                workspacex.Mode(m.Mode),
		ConfidenceThreshold: m.ConfidenceThreshold,
		AIVoice:             m.AIVoice,
		DoList:              m.DoList,
		DontList:            m.DontList,
		EscalationRules:     m.EscalationRules,
		QuietHours:          m.QuietHours,
		BusinessHours:       m.BusinessHours,
		ComplianceNotes:     m.ComplianceNotes,
	}
}

func settingsToRow(s *workspacex.AutomationSettings, now time.Time) *dbWorkspaceSettings {
	return &dbWorkspaceSettings{
		WorkspaceID:         s.WorkspaceID,
		Mode:                string(s.Mode),
		ConfidenceThreshold: s.ConfidenceThreshold,
		AIVoice:             s.AIVoice,
		DoList:              s.DoList,
		DontList:            s.DontList,
		EscalationRules:     s.EscalationRules,
		QuietHours:          s.QuietHours,
		BusinessHours:       s.BusinessHours,
		ComplianceNotes:     s.ComplianceNotes,
		UpdatedAt:           now,
	}
}

type dbWorkspaceProfile struct {
	bun.BaseModel `bun:"table:workspace_profiles"`

	WorkspaceID  string `bun:"workspace_id,pk"`
	BusinessName string `bun:"business_name"`
	CatalogSize  int    `bun:"catalog_size"`
}

type dbConversation struct {
	bun.BaseModel `bun:"table:conversations"`

	ID                 string    `bun:"id,pk"`
	WorkspaceID        string    `bun:"workspace_id,notnull"`
	CustomerID         string    `bun:"customer_id,notnull"`
	ChannelProvider    string    `bun:"channel_provider"`
	ChannelDestination string    `bun:"channel_destination"`
	ChannelAccessToken string    `bun:"channel_access_token"`
	LastMessagePreview string    `bun:"last_message_preview"`
	LastMessageAt      time.Time `bun:"last_message_at,nullzero"`
	LastAgentReplyAt   time.Time `bun:"last_agent_reply_at,nullzero"`
}

func (m *dbConversation) toDomain() *conversationx.Conversation {
	return &conversationx.Conversation{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		CustomerID:  m.CustomerID,
		Channel: conversationx.ChannelAccount{
			Provider:    m.ChannelProvider,
			Destination: m.ChannelDestination,
			AccessToken: m.ChannelAccessToken,
		},
		LastMessagePreview: m.LastMessagePreview,
		LastMessageAt:      m.LastMessageAt,
		LastAgentReplyAt:   m.LastAgentReplyAt,
	}
}

type dbMessage struct {
	bun.BaseModel `bun:"table:messages"`

	ID             string    `bun:"id,pk"`
	ConversationID string    `bun:"conversation_id,notnull"`
	Sender         string    `bun:"sender,notnull"`
	Content        string    `bun:"content,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

func (m *dbMessage) toDomain() conversationx.Message {
	return conversationx.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         conversationx.Sender(m.Sender),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

type dbProduct struct {
	bun.BaseModel `bun:"table:products"`

	ID          string  `bun:"id,pk"`
	WorkspaceID string  `bun:"workspace_id,notnull"`
	Name        string  `bun:"name,notnull"`
	Description string  `bun:"description"`
	Category    string  `bun:"category"`
	Price       float64 `bun:"price,notnull"`
	Stock       int     `bun:"stock,notnull"`
}

func (m *dbProduct) toDomain() commercex.Product {
	return commercex.Product{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		Stock:       m.Stock,
	}
}

type dbCart struct {
	bun.BaseModel `bun:"table:carts"`

	ConversationID string               `bun:"conversation_id,pk"`
	WorkspaceID    string               `bun:"workspace_id,notnull"`
	Items          []commercex.CartItem `bun:"items,type:jsonb"`
	UpdatedAt      time.Time            `bun:"updated_at,notnull"`
}

func (m *dbCart) toDomain() *commercex.Cart {
	return &commercex.Cart{
		ConversationID: m.ConversationID,
		WorkspaceID:    m.WorkspaceID,
		Items:          m.Items,
		UpdatedAt:      m.UpdatedAt,
	}
}

type dbOrder struct {
	bun.BaseModel `bun:"table:orders"`

	ID             string               `bun:"id,pk"`
	OrderNumber    string               `bun:"order_number,notnull"`
	ConversationID string               `bun:"conversation_id,notnull"`
	WorkspaceID    string               `bun:"workspace_id,notnull"`
	Items          []commercex.CartItem `bun:"items,type:jsonb"`
	Total          float64              `bun:"total,notnull"`
	Status         string               `bun:"status,notnull"`
	PaymentLink    string               `bun:"payment_link"`
	CreatedAt      time.Time            `bun:"created_at,notnull"`
}

func (m *dbOrder) toDomain() *commercex.Order {
	return &commercex.Order{
		ID:             m.ID,
		OrderNumber:    m.OrderNumber,
		ConversationID: m.ConversationID,
		WorkspaceID:    m.WorkspaceID,
		Items:          m.Items,
		Total:          m.Total,
		Status:         commercex.OrderStatus(m.Status),
		PaymentLink:    m.PaymentLink,
		CreatedAt:      m.CreatedAt,
	}
}

type dbGuardrailRule struct {
	bun.BaseModel `bun:"table:guardrail_rules"`

	ID              string          `bun:"id,pk"`
	WorkspaceID     string          `bun:"workspace_id,notnull"`
	Name            string          `bun:"name,notnull"`
	Type            string          `bun:"type,notnull"`
	Condition       json.RawMessage `bun:"condition,type:jsonb"`
	Enforcement     string          `bun:"enforcement,notnull"`
	FallbackMessage string          `bun:"fallback_message"`
	Priority        int             `bun:"priority,notnull"`
	Enabled         bool            `bun:"enabled,notnull"`
}

func (m *dbGuardrailRule) toDomain() rulex.GuardrailRule {
	return rulex.GuardrailRule{
		ID:              m.ID,
		Name:            m.Name,
		Type:            rulex.GuardrailType(m.Type),
		Condition:       m.Condition,
		Enforcement:     rulex.Enforcement(m.Enforcement),
		FallbackMessage: m.FallbackMessage,
		Priority:        m.Priority,
		Enabled:         m.Enabled,
	}
}

type dbEscalationPolicy struct {
	bun.BaseModel `bun:"table:escalation_policies"`

	ID          string                   `bun:"id,pk"`
	WorkspaceID string                   `bun:"workspace_id,notnull"`
	Name        string                   `bun:"name,notnull"`
	Triggers    rulex.EscalationTriggers `bun:"triggers,type:jsonb"`
	Routing     rulex.EscalationRouting  `bun:"routing,type:jsonb"`
	Behavior    rulex.EscalationBehavior `bun:"behavior,type:jsonb"`
	Priority    int                      `bun:"priority,notnull"`
	Enabled     bool                     `bun:"enabled,notnull"`
}

func (m *dbEscalationPolicy) toDomain() rulex.EscalationPolicy {
	return rulex.EscalationPolicy{
		ID:       m.ID,
		Name:     m.Name,
		Triggers: m.Triggers,
		Routing:  m.Routing,
		Behavior: m.Behavior,
		Priority: m.Priority,
		Enabled:  m.Enabled,
	}
}

type dbComplianceCheck struct {
	bun.BaseModel `bun:"table:compliance_checks"`

	ID             string                      `bun:"id,pk"`
	WorkspaceID    string                      `bun:"workspace_id,notnull"`
	Name           string                      `bun:"name,notnull"`
	CheckType      string                      `bun:"check_type,notnull"`
	Validation     rulex.ComplianceValidation  `bun:"validation,type:jsonb"`
	Trigger        rulex.ComplianceTrigger     `bun:"trigger_conditions,type:jsonb"`
	Enforcement    string                      `bun:"enforcement,notnull"`
	ComplianceText string                      `bun:"compliance_text"`
	Priority       int                         `bun:"priority,notnull"`
	Enabled        bool                        `bun:"enabled,notnull"`
}

func (m *dbComplianceCheck) toDomain() rulex.ComplianceCheck {
	return rulex.ComplianceCheck{
		ID:                m.ID,
		Name:              m.Name,
		CheckType:         rulex.ComplianceType(m.CheckType),
		Validation:        m.Validation,
		TriggerConditions: m.Trigger,
		Enforcement:       rulex.ComplianceEnforcement(m.Enforcement),
		ComplianceText:    m.ComplianceText,
		Priority:          m.Priority,
		Enabled:           m.Enabled,
	}
}

type dbPendingApproval struct {
	bun.BaseModel `bun:"table:pending_approvals"`

	ID              string          `bun:"id,pk"`
	ConversationID  string          `bun:"conversation_id,notnull"`
	WorkspaceID     string          `bun:"workspace_id,notnull"`
	ActionType      string          `bun:"action_type,notnull"`
	ActionPayload   json.RawMessage `bun:"action_payload,type:jsonb"`
	AIReasoning     string          `bun:"ai_reasoning"`
	ConfidenceScore float64         `bun:"confidence_score,notnull"`
	Status          string          `bun:"status,notnull"`
	RejectionReason string          `bun:"rejection_reason"`
	CreatedAt       time.Time       `bun:"created_at,notnull"`
	ResolvedAt      *time.Time      `bun:"resolved_at"`
}

func (m *dbPendingApproval) toDomain() *approvalx.PendingApproval {
	return &approvalx.PendingApproval{
		ID:              m.ID,
		ConversationID:  m.ConversationID,
		WorkspaceID:     m.WorkspaceID,
		ActionType:      approvalx.ActionType(m.ActionType),
		ActionPayload:   m.ActionPayload,
		AIReasoning:     m.AIReasoning,
		ConfidenceScore: m.ConfidenceScore,
		Status:          approvalx.Status(m.Status),
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
		ResolvedAt:      m.ResolvedAt,
	}
}

func approvalToRow(pa *approvalx.PendingApproval) *dbPendingApproval {
	return &dbPendingApproval{
		ID:              pa.ID,
		ConversationID:  pa.ConversationID,
		WorkspaceID:     pa.WorkspaceID,
		ActionType:      string(pa.ActionType),
		ActionPayload:   pa.ActionPayload,
		AIReasoning:     pa.AIReasoning,
		ConfidenceScore: pa.ConfidenceScore,
		Status:          string(pa.Status),
		RejectionReason: pa.RejectionReason,
		CreatedAt:       pa.CreatedAt,
		ResolvedAt:      pa.ResolvedAt,
	}
}

type dbActionLog struct {
	bun.BaseModel `bun:"table:action_logs"`

	ID              string          `bun:"id,pk"`
	WorkspaceID     string          `bun:"workspace_id,notnull"`
	ConversationID  string          `bun:"conversation_id"`
	Action          string          `bun:"action,notnull"`
	Payload         json.RawMessage `bun:"payload,type:jsonb"`
	Confidence      int             `bun:"confidence"`
	Mode            string          `bun:"mode"`
	ExecutionMethod string          `bun:"execution_method"`
	Result          string          `bun:"result"`
	CreatedAt       time.Time       `bun:"created_at,notnull"`
}
