package cmd

import (
	"github.com/tlee933/talos/internal/config"
	"github.com/tlee933/talos/internal/facts"
	"github.com/tlee933/talos/internal/llm"
	"github.com/tlee933/talos/internal/logging"
	"github.com/tlee933/talos/internal/tools"
	"github.com/tlee933/talos/internal/vault"
)

// sessionDeps are the shared services behind chat, ask, and do.
type sessionDeps struct {
	client   *llm.Client
	facts    *facts.Store
	vault    *vault.Vault // nil when no vault is configured
	registry *tools.Registry
}

func buildDeps(cfg *config.Config) (sessionDeps, error) {
	deps := sessionDeps{client: llm.NewClient(cfg)}

	factStore, err := facts.OpenStore(config.DataDir())
	if err != nil {
		return deps, err
	}
	deps.facts = factStore

	if cfg.ObsidianVault != "" {
		v, err := vault.Open(cfg.ObsidianVault)
		if err != nil {
			logging.LogError("obsidian vault unavailable", "error", err)
		} else {
			deps.vault = v
		}
	}

	if cfg.ToolUse {
		deps.registry = tools.BuildRegistry(tools.Deps{
			Facts: deps.facts,
			Vault: deps.vault,
		}, cfg.EnabledTools)
	}
	return deps, nil
}
