// Package bridge recommends cross-chain messaging protocols for a set of
// target blockchains. Selection is a pure rule table evaluated in fixed
// order; the result is advisory input for prompt construction, so
// degenerate chain sets produce a generic fallback instead of an error.
package bridge

import (
	"fmt"
	"sort"
	"strings"
)

// Protocol names used across the rule table.
const (
	ProtocolWormhole      = "Wormhole"
	ProtocolAxelar        = "Axelar"
	ProtocolLayerZero     = "LayerZero"
	ProtocolHyperlane     = "Hyperlane"
	ProtocolCeler         = "Celer cBridge"
	ProtocolAxelarGMP     = "Axelar GMP"
	ProtocolGenericBridge = "Generic Cross-Chain Bridge"

	ProtocolPolygonPoS     = "Polygon PoS Bridge"
	ProtocolArbitrumBridge = "Arbitrum Bridge"
	ProtocolOptimismBridge = "Optimism Bridge"
	ProtocolBaseBridge     = "Base Bridge"
	ProtocolAvalanche      = "Avalanche Bridge"
)

// Bridge type labels accumulated by the rule table.
const (
	TypeEVMToSolana = "EVM-Solana Bridge"
	TypeEVMToEVM    = "EVM-EVM Bridge"
	TypeCanonical   = "Canonical Bridge"
	TypeGeneric     = ProtocolGenericBridge
)

// Config describes the recommended setup for one unordered chain pair.
type Config struct {
	PrimaryProtocol    string `json:"primaryProtocol"`
	BackupProtocol     string `json:"backupProtocol"`
	GasToken           string `json:"gasToken"`
	EstimatedFee       string `json:"estimatedFee"`
	ConfirmationBlocks int    `json:"confirmationBlocks"`
	TimeEstimate       string `json:"timeEstimate"`
}

// Result is the full advisory output for a chain set.
type Result struct {
	BridgeTypes    []string          `json:"bridgeTypes"`
	Protocols      []string          `json:"protocols"`
	Configurations map[string]Config `json:"bridgeConfigurations"`
}

// Per-chain metadata for the known vocabulary. Solana is the recognized
// non-EVM chain; everything else listed here shares the EVM model.
var chainInfo = map[string]struct {
	evm           bool
	gasToken      string
	confirmations int
}{
	"ethereum":  {evm: true, gasToken: "ETH", confirmations: 12},
	"polygon":   {evm: true, gasToken: "MATIC", confirmations: 128},
	"arbitrum":  {evm: true, gasToken: "ETH", confirmations: 20},
	"optimism":  {evm: true, gasToken: "ETH", confirmations: 20},
	"base":      {evm: true, gasToken: "ETH", confirmations: 20},
	"avalanche": {evm: true, gasToken: "AVAX", confirmations: 15},
	"bsc":       {evm: true, gasToken: "BNB", confirmations: 15},
	"solana":    {evm: false, gasToken: "SOL", confirmations: 32},
}

// Canonical-bridge primary overrides for well-known pairs where a native
// bridge beats the generic protocol.
var canonicalPrimary = map[string]string{
	PairKey("ethereum", "polygon"):  ProtocolPolygonPoS,
	PairKey("ethereum", "arbitrum"): ProtocolArbitrumBridge,
	PairKey("ethereum", "optimism"): ProtocolOptimismBridge,
	PairKey("ethereum", "base"):     ProtocolBaseBridge,
}

// Single-protocol additions for specific chains paired with ethereum.
var chainSpecific = map[string]string{
	"avalanche": ProtocolAvalanche,
}

// IsEVM reports whether chain uses the EVM execution model. Unknown
// chains are not classified as EVM.
func IsEVM(chain string) bool {
	info, ok := chainInfo[normalize(chain)]
	return ok && info.evm
}

// PairKey builds the unordered key for a chain pair.
func PairKey(a, b string) string {
	a, b = normalize(a), normalize(b)
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

func normalize(chain string) string {
	return strings.ToLower(strings.TrimSpace(chain))
}

// Select maps a chain set to recommended bridge types, protocols, and
// per-pair configurations. It is total: any input, including empty or
// single-chain sets, yields at least the generic fallback.
func Select(chains []string) Result {
	set := normalizeSet(chains)

	var evm, nonEVM []string
	for _, chain := range set {
		if info, ok := chainInfo[chain]; ok && !info.evm {
			nonEVM = append(nonEVM, chain)
		} else if ok {
			evm = append(evm, chain)
		}
	}

	res := Result{Configurations: map[string]Config{}}

	// Rule 1: EVM x non-EVM pairs.
	if len(evm) > 0 && len(nonEVM) > 0 {
		res.BridgeTypes = append(res.BridgeTypes, TypeEVMToSolana)
		res.Protocols = append(res.Protocols, ProtocolWormhole, ProtocolAxelar)
		for _, e := range evm {
			for _, n := range nonEVM {
				res.Configurations[PairKey(e, n)] = pairConfig(e, n, ProtocolWormhole, ProtocolAxelar, "10-20 minutes")
			}
		}
	}

	// Rule 2: EVM x EVM pairs, with canonical-bridge overrides.
	if len(evm) >= 2 {
		res.BridgeTypes = append(res.BridgeTypes, TypeEVMToEVM)
		res.Protocols = append(res.Protocols,
			ProtocolLayerZero, ProtocolWormhole, ProtocolHyperlane, ProtocolCeler)
		for i := 0; i < len(evm); i++ {
			for j := i + 1; j < len(evm); j++ {
				key := PairKey(evm[i], evm[j])
				primary, backup := ProtocolLayerZero, ProtocolWormhole
				if canonical, ok := canonicalPrimary[key]; ok {
					primary, backup = canonical, ProtocolLayerZero
					res.BridgeTypes = append(res.BridgeTypes, TypeCanonical)
					res.Protocols = append(res.Protocols, canonical)
				}
				res.Configurations[key] = pairConfig(evm[i], evm[j], primary, backup, "5-15 minutes")
			}
		}
	}

	// Rule 3: chain-specific additions alongside ethereum.
	if contains(set, "ethereum") {
		for chain, protocol := range chainSpecific {
			if contains(set, chain) {
				res.Protocols = append(res.Protocols, protocol)
			}
		}
	}

	// Rule 4: generalized messaging is always available.
	res.Protocols = append(res.Protocols, ProtocolAxelarGMP)

	// Rule 5: fallback when no bridge type was identified.
	if len(res.BridgeTypes) == 0 {
		res.BridgeTypes = []string{TypeGeneric}
		res.Protocols = append(res.Protocols, ProtocolGenericBridge)
		res.Configurations["default"] = Config{
			PrimaryProtocol:    ProtocolGenericBridge,
			BackupProtocol:     ProtocolAxelarGMP,
			GasToken:           "native",
			EstimatedFee:       "varies",
			ConfirmationBlocks: 12,
			TimeEstimate:       "varies",
		}
	}

	// Rule 6: dedup accumulated lists.
	res.BridgeTypes = dedup(res.BridgeTypes)
	res.Protocols = dedup(res.Protocols)
	return res
}

// pairConfig builds the per-pair config. Confirmation count follows the
// slower-finality endpoint.
func pairConfig(a, b, primary, backup, timeEstimate string) Config {
	infoA, infoB := chainInfo[normalize(a)], chainInfo[normalize(b)]
	confirmations := infoA.confirmations
	if infoB.confirmations > confirmations {
		confirmations = infoB.confirmations
	}
	if confirmations == 0 {
		confirmations = 12
	}
	return Config{
		PrimaryProtocol:    primary,
		BackupProtocol:     backup,
		GasToken:           infoA.gasToken,
		EstimatedFee:       fmt.Sprintf("~0.1%% of transfer via %s", primary),
		ConfirmationBlocks: confirmations,
		TimeEstimate:       timeEstimate,
	}
}

func normalizeSet(chains []string) []string {
	seen := make(map[string]bool, len(chains))
	var out []string
	for _, chain := range chains {
		c := normalize(chain)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func contains(set []string, chain string) bool {
	for _, c := range set {
		if c == chain {
			return true
		}
	}
	return false
}

func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
