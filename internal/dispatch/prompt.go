package dispatch

import (
	"fmt"
	"strings"
)

// Facts are the structured inputs a prompt is built from.
type Facts struct {
	Description            string
	ProjectType            string
	Blockchain             string
	Network                string
	AdditionalRequirements string
}

// CapabilityFlags describes which optional framework integrations are
// available. It is injected by the startup layer; core logic never
// probes the filesystem to find out.
type CapabilityFlags struct {
	Frameworks []string
}

// Blockchain-specific instructional preambles. Chains without an entry
// get the generic preamble.
var preambles = map[string]string{
	"ethereum": "You are an expert Solidity developer. Generate a complete, production-quality smart contract for the Ethereum ecosystem.",
	"polygon":  "You are an expert Solidity developer targeting Polygon. Generate a complete, production-quality smart contract optimized for low gas costs.",
	"solana":   "You are an expert Rust developer using the Anchor framework. Generate a complete, production-quality Solana program.",
	"sui":      "You are an expert Move developer. Generate a complete, production-quality Sui Move module.",
}

const genericPreamble = "You are an expert blockchain developer. Generate complete, production-quality code for the requested project."

// Closing guidance per chain family.
var closingGuidance = map[string]string{
	"solana": "Follow the Solana account model: every account the program touches must be declared, validated, and rent-exempt where required.",
	"sui":    "Follow the Sui object model: express state as owned or shared objects and prefer object capabilities over global state.",
}

const evmClosingGuidance = "Ensure reentrancy protection on all state-changing external calls, use checked arithmetic, and emit events for every state transition."

// PromptBuilder assembles generation prompts from a base template plus
// structured facts.
type PromptBuilder struct {
	flags CapabilityFlags
}

// NewPromptBuilder creates a builder with the given capability flags.
func NewPromptBuilder(flags CapabilityFlags) *PromptBuilder {
	return &PromptBuilder{flags: flags}
}

// Build constructs the full prompt: preamble, facts block, chain-specific
// closing guidance, and an optional framework-integration notice.
func (b *PromptBuilder) Build(facts Facts) string {
	chain := strings.ToLower(strings.TrimSpace(facts.Blockchain))

	var sb strings.Builder
	if preamble, ok := preambles[chain]; ok {
		sb.WriteString(preamble)
	} else {
		sb.WriteString(genericPreamble)
	}
	sb.WriteString("\n\n")

	sb.WriteString("Project details:\n")
	fmt.Fprintf(&sb, "- Type: %s\n", facts.ProjectType)
	fmt.Fprintf(&sb, "- Blockchain: %s\n", facts.Blockchain)
	fmt.Fprintf(&sb, "- Network: %s\n", facts.Network)
	fmt.Fprintf(&sb, "- Description: %s\n", facts.Description)
	if req := strings.TrimSpace(facts.AdditionalRequirements); req != "" {
		fmt.Fprintf(&sb, "- Additional requirements: %s\n", req)
	}
	sb.WriteString("\n")

	if guidance, ok := closingGuidance[chain]; ok {
		sb.WriteString(guidance)
	} else {
		sb.WriteString(evmClosingGuidance)
	}

	if len(b.flags.Frameworks) > 0 {
		sb.WriteString("\n\nAvailable framework integrations: ")
		sb.WriteString(strings.Join(b.flags.Frameworks, ", "))
		sb.WriteString(". Prefer these over hand-rolled equivalents.")
	}

	return sb.String()
}
