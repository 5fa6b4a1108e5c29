// Package forge is the generation engine: it selects a matching built-in
// template and materializes it directly, or falls back to prompt-driven
// generation through the dispatcher. The two paths compose linearly;
// nothing here persists beyond a single request.
package forge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainforge/internal/bridge"
	"chainforge/internal/dispatch"
	"chainforge/internal/scaffold"
	"chainforge/internal/structparse"
	"chainforge/internal/templates"

	"go.uber.org/zap"
)

// Request describes one project generation.
type Request struct {
	ProjectName            string   `json:"projectName"`
	Description            string   `json:"description"`
	ProjectType            string   `json:"projectType"`
	Blockchain             string   `json:"blockchain"`
	Network                string   `json:"network"`
	AdditionalRequirements string   `json:"additionalRequirements,omitempty"`
	Chains                 []string `json:"chains,omitempty"`
	ReferenceURLs          []string `json:"referenceUrls,omitempty"`

	// Bindings are extra placeholder values merged over the computed
	// defaults.
	Bindings map[string]string `json:"bindings,omitempty"`

	// Dest is the directory the project is written to.
	Dest string `json:"dest"`
}

// Result summarizes a completed generation.
type Result struct {
	Mode   string         `json:"mode"` // "template" or "generated"
	Dest   string         `json:"dest"`
	Bridge *bridge.Result `json:"bridge,omitempty"`
}

// Engine wires the registry, materializer, and dispatcher together.
type Engine struct {
	registry     *templates.Registry
	materializer *scaffold.Materializer
	dispatcher   *dispatch.Dispatcher
	builder      *dispatch.PromptBuilder
	fetcher      ReferenceFetcher

	maxTokens   int
	temperature float64
	maxRetries  int
	retryDelay  time.Duration

	logger *zap.Logger
}

// ReferenceFetcher downloads auxiliary reference repositories. May be nil.
type ReferenceFetcher interface {
	FetchAll(ctx context.Context, dest string, urls []string) error
}

// Options configure an Engine.
type Options struct {
	Registry     *templates.Registry
	Materializer *scaffold.Materializer
	Dispatcher   *dispatch.Dispatcher
	Builder      *dispatch.PromptBuilder
	Fetcher      ReferenceFetcher
	MaxTokens    int
	Temperature  float64
	MaxRetries   int
	RetryDelay   time.Duration
	Logger       *zap.Logger
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Engine{
		registry:     opts.Registry,
		materializer: opts.Materializer,
		dispatcher:   opts.Dispatcher,
		builder:      opts.Builder,
		fetcher:      opts.Fetcher,
		maxTokens:    opts.MaxTokens,
		temperature:  opts.Temperature,
		maxRetries:   opts.MaxRetries,
		retryDelay:   opts.RetryDelay,
		logger:       logger,
	}
}

// Generate runs one end-to-end generation request.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Dest) == "" {
		return nil, fmt.Errorf("forge: destination directory required")
	}

	bindings := templates.DefaultBindings(req.ProjectName, req.Blockchain, req.Network, req.Bindings)
	res := &Result{Dest: req.Dest}

	if len(req.Chains) >= 2 {
		sel := bridge.Select(req.Chains)
		res.Bridge = &sel
	}

	tree, fromTemplate := e.registry.Lookup(req.ProjectType, req.Blockchain)
	if fromTemplate {
		res.Mode = "template"
		e.logger.Info("materializing built-in template",
			zap.String("projectType", req.ProjectType),
			zap.String("blockchain", req.Blockchain),
			zap.String("dest", req.Dest))
	} else {
		res.Mode = "generated"
		generated, err := e.generateTree(ctx, req, bindings, res.Bridge)
		if err != nil {
			return nil, err
		}
		tree = generated
	}

	if err := e.materializer.Materialize(tree, req.Dest, bindings); err != nil {
		return nil, err
	}

	// Reference repos are advisory; a failed fetch never fails the
	// request.
	if e.fetcher != nil && len(req.ReferenceURLs) > 0 {
		if err := e.fetcher.FetchAll(ctx, req.Dest, req.ReferenceURLs); err != nil {
			e.logger.Warn("reference fetch incomplete", zap.Error(err))
		}
	}

	return res, nil
}

// generateTree obtains project content from the dispatcher: one call for
// the main code file, one best-effort call for the surrounding layout.
func (e *Engine) generateTree(ctx context.Context, req Request, bindings scaffold.Bindings, sel *bridge.Result) (scaffold.Tree, error) {
	facts := dispatch.Facts{
		Description:            req.Description,
		ProjectType:            req.ProjectType,
		Blockchain:             req.Blockchain,
		Network:                req.Network,
		AdditionalRequirements: req.AdditionalRequirements,
	}
	prompt := e.builder.Build(facts)
	if sel != nil {
		prompt += "\n\n" + renderBridgeAdvisory(sel)
	}

	code, err := e.dispatcher.Dispatch(ctx, dispatch.Request{
		Prompt:      prompt,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		MaxRetries:  e.maxRetries,
		RetryDelay:  e.retryDelay,
		ExtractCode: true,
	})
	if err != nil {
		return nil, &dispatch.GenerationError{Stage: "code", Err: err}
	}

	tree := e.layoutTree(ctx, facts)
	insert(tree, mainFilePath(req.Blockchain, bindings), code)
	return tree, nil
}

// layoutTree asks the model for a file layout and parses it; any failure
// falls back to a minimal skeleton.
func (e *Engine) layoutTree(ctx context.Context, facts dispatch.Facts) scaffold.Tree {
	layoutPrompt := fmt.Sprintf(
		"List the file and directory layout for a %s project on %s, one entry per line, "+
			"indented to show nesting, directories ending with '/'. Output only the listing.",
		facts.ProjectType, facts.Blockchain)

	text, err := e.dispatcher.Dispatch(ctx, dispatch.Request{
		Prompt:     layoutPrompt,
		MaxTokens:  1024,
		MaxRetries: 1,
		RetryDelay: e.retryDelay,
	})
	if err != nil {
		e.logger.Warn("layout generation failed, using minimal skeleton", zap.Error(err))
		return minimalTree()
	}

	tree, err := structparse.Parse(dispatch.ExtractCode(text))
	if err != nil {
		var perr *structparse.ParseError
		if errors.As(err, &perr) {
			e.logger.Warn("layout unparseable, using minimal skeleton",
				zap.Int("line", perr.Line),
				zap.String("reason", perr.Msg))
		}
		return minimalTree()
	}
	return tree
}

func minimalTree() scaffold.Tree {
	return scaffold.Tree{
		"README.md": "# {{ProjectName}}\n\n{{Blockchain}} project generated by chainforge.\n",
	}
}

// mainFilePath decides where the generated main code file lives.
func mainFilePath(blockchain string, bindings scaffold.Bindings) []string {
	switch strings.ToLower(strings.TrimSpace(blockchain)) {
	case "solana":
		return []string{"programs", bindings["ProjectSlug"], "src", "lib.rs"}
	case "sui":
		return []string{"sources", bindings["ProjectSlug"] + ".move"}
	default:
		return []string{"contracts", bindings["ProjectName"] + ".sol"}
	}
}

// insert places content at the given path inside tree, creating
// intermediate directories and replacing whatever was there.
func insert(tree scaffold.Tree, path []string, content string) {
	current := tree
	for _, seg := range path[:len(path)-1] {
		next, ok := current[seg].(scaffold.Tree)
		if !ok {
			next = scaffold.Tree{}
			current[seg] = next
		}
		current = next
	}
	current[path[len(path)-1]] = content
}

func renderBridgeAdvisory(sel *bridge.Result) string {
	var sb strings.Builder
	sb.WriteString("Cross-chain bridging advisory:\n")
	sb.WriteString("- Recommended protocols: ")
	sb.WriteString(strings.Join(sel.Protocols, ", "))
	sb.WriteString("\n")
	for pair, cfg := range sel.Configurations {
		fmt.Fprintf(&sb, "- %s: primary %s, backup %s, %d confirmations\n",
			pair, cfg.PrimaryProtocol, cfg.BackupProtocol, cfg.ConfirmationBlocks)
	}
	return sb.String()
}
