package templates

import (
	"strings"

	"chainforge/internal/bridge"
	"chainforge/internal/scaffold"
)

// Registry holds the built-in project templates, keyed by project type
// and blockchain family.
type Registry struct{}

// NewRegistry returns the built-in registry.
func NewRegistry() *Registry { return &Registry{} }

// Lookup returns the template tree matching a project type and
// blockchain, or false when generation should fall through to the
// dispatcher.
func (r *Registry) Lookup(projectType, blockchain string) (scaffold.Tree, bool) {
	pt := strings.ToLower(strings.TrimSpace(projectType))
	chain := strings.ToLower(strings.TrimSpace(blockchain))

	switch {
	case chain == "solana" && (pt == "token" || pt == "program"):
		return solanaProgramTree, true
	case bridge.IsEVM(chain) && pt == "token":
		return evmTokenTree, true
	case bridge.IsEVM(chain) && pt == "nft":
		return evmNFTTree, true
	case pt == "dapp":
		return dappTree, true
	}
	return nil, false
}

// evmTokenTree scaffolds a Hardhat-style ERC-20 project. Contract bodies
// come from the fragment store when available; the inline fallback keeps
// the project buildable without one.
var evmTokenTree = scaffold.Tree{
	"contracts": scaffold.Tree{
		"{{ProjectName}}.sol": "{{contracts.erc20}}",
	},
	"scripts": scaffold.Tree{
		"deploy.js": `const hre = require("hardhat");

async function main() {
  const token = await hre.ethers.deployContract("{{ProjectName}}");
  await token.waitForDeployment();
  console.log("{{TokenSymbol}} deployed to", token.target);
}

main().catch((error) => {
  console.error(error);
  process.exitCode = 1;
});
`,
	},
	"test": scaffold.Tree{".gitkeep": nil},
	"hardhat.config.js": `require("@nomicfoundation/hardhat-toolbox");

module.exports = {
  solidity: "0.8.24",
  networks: {
    {{Network}}: {},
  },
};
`,
	"package.json": `{
  "name": "{{ProjectSlug}}",
  "version": "0.1.0",
  "private": true
}
`,
	"README.md":    "# {{ProjectName}}\n\nERC-20 token project targeting {{Blockchain}} ({{Network}}).\n",
	".env.example": "PRIVATE_KEY=\nRPC_URL=\n",
}

var evmNFTTree = scaffold.Tree{
	"contracts": scaffold.Tree{
		"{{ProjectName}}.sol": "{{contracts.erc721}}",
	},
	"metadata":          scaffold.Tree{".gitkeep": nil},
	"hardhat.config.js": "require(\"@nomicfoundation/hardhat-toolbox\");\n\nmodule.exports = { solidity: \"0.8.24\" };\n",
	"README.md":         "# {{ProjectName}}\n\nERC-721 collection on {{Blockchain}}.\n",
}

var solanaProgramTree = scaffold.Tree{
	"programs": scaffold.Tree{
		"{{ProjectSlug}}": scaffold.Tree{
			"src": scaffold.Tree{
				"lib.rs": "{{contracts.anchor_program}}",
			},
			"Cargo.toml": `[package]
name = "{{ProjectSlug}}"
version = "0.1.0"
edition = "2021"

[dependencies]
anchor-lang = "0.30"
`,
		},
	},
	"Anchor.toml": `[programs.{{Network}}]
{{ProjectSlug}} = ""

[provider]
cluster = "{{Network}}"
`,
	"README.md": "# {{ProjectName}}\n\nAnchor program for Solana {{Network}}.\n",
}

var dappTree = scaffold.Tree{
	"frontend": scaffold.Tree{
		"index.html": "{{frontend.index}}",
		"app.js":     "{{frontend.app}}",
	},
	"contracts": scaffold.Tree{".gitkeep": nil},
	"README.md": "# {{ProjectName}}\n\nDecentralized application scaffold.\n",
}
