package logging

import (
	"context"

	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

const (
	rootModule     = "piranha"
	schemaModule   = "piranha.schema"
	factoryModule  = "piranha.factory"
	taxonomyModule = "piranha.taxonomy"
	blocksModule   = "piranha.blocks"
	pagesModule    = "piranha.pages"
	postsModule    = "piranha.posts"
	sitesModule    = "piranha.sites"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SchemaLogger returns the logger namespace reserved for schema registration.
func SchemaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schemaModule)
}

// FactoryLogger returns the logger namespace reserved for the content factory.
func FactoryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, factoryModule)
}

// TaxonomyLogger returns the logger namespace reserved for taxonomy reconciliation.
func TaxonomyLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, taxonomyModule)
}

// BlocksLogger returns the logger namespace reserved for block storage.
func BlocksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, blocksModule)
}

// PagesLogger returns the logger namespace reserved for the page repository.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// PostsLogger returns the logger namespace reserved for the post repository.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// SitesLogger returns the logger namespace reserved for site content.
func SitesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sitesModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
