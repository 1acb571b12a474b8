package tools

import (
	"github.com/ostglass/squire"
)

// RegisterDefaults installs the standard tool set into the registry in
// advertised order. The calc tool is left out; register it explicitly where
// wanted.
func RegisterDefaults(registry *squire.ToolRegistry) {
	squire.RegisterTool(registry, &BashTool{})
	squire.RegisterTool(registry, &ReadTool{})
	squire.RegisterTool(registry, &WriteTool{})
	squire.RegisterTool(registry, &GlobTool{})
	squire.RegisterTool(registry, &GrepTool{})
	squire.RegisterTool(registry, &EditTool{})
	squire.RegisterTool(registry, &WebFetchTool{})
	squire.RegisterTool(registry, &TodoTool{})
}
