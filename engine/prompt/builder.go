package prompt

import (
	"fmt"
	"strings"

	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
)

// coreFramework is the persona-independent sales and behavior framework.
// Workspace voice is layered on top of it, never substituted for it.
const coreFramework = `You are a sales assistant for an online store, replying to customers on a messaging channel.

Behavior:
- Answer questions about products using the catalog tools; never invent stock, prices, or order details.
- Guide interested customers toward the cart and checkout without being pushy.
- Keep replies short and conversational, suitable for a chat thread.
- If a tool reports an error, acknowledge it honestly and offer the closest alternative.
- If you genuinely cannot help, say so and offer to bring in a human teammate.`

// Facts are the per-conversation context facts layered into the prompt.
type Facts struct {
	BusinessName string
	CatalogSize  int
	CartItems    int
	CartTotal    float64
}

// Build layers the system prompt: core framework, workspace facts, brand
// voice overlay, do/don't lists, compliance notes.
func Build(settings *workspacex.AutomationSettings, facts Facts) string {
	var b strings.Builder
	b.WriteString(coreFramework)

	b.WriteString("\n\nBusiness context:\n")
	name := strings.TrimSpace(facts.BusinessName)
	if name == "" {
		name = "this store"
	}
	fmt.Fprintf(&b, "- You represent %s.\n", name)
	fmt.Fprintf(&b, "- The catalog currently has %d products.\n", facts.CatalogSize)
	if facts.CartItems > 0 {
		fmt.Fprintf(&b, "- The customer's cart has %d items totalling %.2f.\n", facts.CartItems, facts.CartTotal)
	} else {
		b.WriteString("- The customer's cart is empty.\n")
	}

	if settings == nil {
		return b.String()
	}

	if voice := strings.TrimSpace(settings.AIVoice); voice != "" {
		b.WriteString("\nBrand voice (applies on top of the rules above):\n")
		b.WriteString(voice)
		b.WriteString("\n")
	}

	if len(settings.DoList) > 0 {
		b.WriteString("\nAlways:\n")
		for _, item := range settings.DoList {
			if item = strings.TrimSpace(item); item != "" {
				fmt.Fprintf(&b, "- %s\n", item)
			}
		}
	}
	if len(settings.DontList) > 0 {
		b.WriteString("\nNever:\n")
		for _, item := range settings.DontList {
			if item = strings.TrimSpace(item); item != "" {
				fmt.Fprintf(&b, "- %s\n", item)
			}
		}
	}

	if notes := strings.TrimSpace(settings.ComplianceNotes); notes != "" {
		b.WriteString("\nCompliance notes:\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}

	return b.String()
}

// Keywords on the candidate response that trigger verbatim appending of the
// workspace compliance notes.
var complianceKeywords = []string{
	"refund",
	"return",
	"warranty",
	"guarantee",
	"policy",
	"exchange",
}

// InjectComplianceNotes appends the workspace compliance notes verbatim when
// the candidate response touches refund/return/warranty/policy territory.
func InjectComplianceNotes(response string, settings *workspacex.AutomationSettings) string {
	if !settings.HasComplianceNotes() {
		return response
	}
	lower := strings.ToLower(response)
	for _, kw := range complianceKeywords {
		if strings.Contains(lower, kw) {
			return response + "\n\n" + strings.TrimSpace(settings.ComplianceNotes)
		}
	}
	return response
}
