package commands

import (
	"strings"

	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

const moduleRoot = "cms.commands"

// Logger returns the logger command handlers of module write to.
func Logger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(logging.ModuleLogger(provider, moduleRoot+"."+name), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
