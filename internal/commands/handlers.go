package commands

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/translations"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

func NewReorderBlocksHandler(svc blocks.Service, logger interfaces.Logger, opts ...HandlerOption[ReorderBlocksCommand]) *Handler[ReorderBlocksCommand] {
	exec := func(ctx context.Context, msg ReorderBlocksCommand) error {
		_, err := svc.Reorder(ctx, blocks.ReorderRequest{PageID: msg.PageID, Moves: msg.Moves, UpdatedBy: msg.UpdatedBy})
		return err
	}
	return NewHandler(exec, withDefaults(logger, "blocks.reorder", opts)...)
}

func NewRestoreBlockVersionHandler(svc blocks.Service, logger interfaces.Logger, opts ...HandlerOption[RestoreBlockVersionCommand]) *Handler[RestoreBlockVersionCommand] {
	exec := func(ctx context.Context, msg RestoreBlockVersionCommand) error {
		_, err := svc.RestoreVersion(ctx, blocks.RestoreVersionRequest{BlockID: msg.BlockID, Version: msg.Version, RestoredBy: msg.RestoredBy})
		return err
	}
	return NewHandler(exec, withDefaults(logger, "blocks.restore_version", opts)...)
}

// NewResyncPageHandler resyncs every translation of a page. Translations
// that fail are recorded on their rows; the command itself still succeeds.
func NewResyncPageHandler(svc translations.Service, logger interfaces.Logger, opts ...HandlerOption[ResyncPageCommand]) *Handler[ResyncPageCommand] {
	log := ensureLogger(logger)
	exec := func(ctx context.Context, msg ResyncPageCommand) error {
		report, err := svc.ResyncPage(ctx, msg.PageID)
		if err != nil {
			return err
		}
		for _, failed := range report.Failed {
			log.Warn("command.resync_page.translation_failed", "page_id", msg.PageID, "block_id", failed.BlockID, "locale", failed.Locale, "error", failed.Err)
		}
		return nil
	}
	return NewHandler(exec, withDefaults(logger, "translations.resync_page", opts)...)
}

func NewResyncBlockLocaleHandler(svc translations.Service, logger interfaces.Logger, opts ...HandlerOption[ResyncBlockLocaleCommand]) *Handler[ResyncBlockLocaleCommand] {
	exec := func(ctx context.Context, msg ResyncBlockLocaleCommand) error {
		_, err := svc.ResyncBlockLocale(ctx, msg.BlockID, msg.Locale)
		return err
	}
	return NewHandler(exec, withDefaults(logger, "translations.resync_block_locale", opts)...)
}

func NewCompactTranslationsHandler(svc translations.Service, logger interfaces.Logger, opts ...HandlerOption[CompactTranslationsCommand]) *Handler[CompactTranslationsCommand] {
	log := ensureLogger(logger)
	exec := func(ctx context.Context, msg CompactTranslationsCommand) error {
		changed, err := svc.CompactBlockTranslations(ctx, msg.PageID)
		if err != nil {
			return err
		}
		log.Info("command.compact.rows", "page_id", msg.PageID, "changed", changed)
		return nil
	}
	return NewHandler(exec, withDefaults(logger, "translations.compact", opts)...)
}

func NewPublishPageHandler(svc pages.Service, logger interfaces.Logger, opts ...HandlerOption[PublishPageCommand]) *Handler[PublishPageCommand] {
	exec := func(ctx context.Context, msg PublishPageCommand) error {
		_, err := svc.Publish(ctx, msg.PageID, msg.Actor)
		return err
	}
	return NewHandler(exec, withDefaults(logger, "pages.publish", opts)...)
}

func NewUnpublishPageHandler(svc pages.Service, logger interfaces.Logger, opts ...HandlerOption[UnpublishPageCommand]) *Handler[UnpublishPageCommand] {
	exec := func(ctx context.Context, msg UnpublishPageCommand) error {
		_, err := svc.Unpublish(ctx, msg.PageID, msg.Actor)
		return err
	}
	return NewHandler(exec, withDefaults(logger, "pages.unpublish", opts)...)
}

// Services are the collaborators Register wires handlers to.
type Services struct {
	Pages        pages.Service
	Blocks       blocks.Service
	Translations translations.Service
}

// Register subscribes every CMS handler on the go-command dispatcher and
// returns a function that removes them again. Failed executions are retried
// maxRetries times.
func Register(svc Services, provider interfaces.LoggerProvider, maxRetries int) func() {
	var subs []func()
	add := func(unsubscribe func()) { subs = append(subs, unsubscribe) }

	if svc.Blocks != nil {
		logger := Logger(provider, "blocks")
		add(dispatcher.SubscribeCommand(NewReorderBlocksHandler(svc.Blocks, logger), runner.WithMaxRetries(maxRetries)).Unsubscribe)
		add(dispatcher.SubscribeCommand(NewRestoreBlockVersionHandler(svc.Blocks, logger), runner.WithMaxRetries(maxRetries)).Unsubscribe)
	}
	if svc.Translations != nil {
		logger := Logger(provider, "translations")
		add(dispatcher.SubscribeCommand(NewResyncPageHandler(svc.Translations, logger), runner.WithMaxRetries(maxRetries)).Unsubscribe)
		add(dispatcher.SubscribeCommand(NewResyncBlockLocaleHandler(svc.Translations, logger), runner.WithMaxRetries(maxRetries)).Unsubscribe)
		add(dispatcher.SubscribeCommand(NewCompactTranslationsHandler(svc.Translations, logger), runner.WithMaxRetries(maxRetries)).Unsubscribe)
	}
	if svc.Pages != nil {
		logger := Logger(provider, "pages")
		add(dispatcher.SubscribeCommand(NewPublishPageHandler(svc.Pages, logger), runner.WithMaxRetries(maxRetries)).Unsubscribe)
		add(dispatcher.SubscribeCommand(NewUnpublishPageHandler(svc.Pages, logger), runner.WithMaxRetries(maxRetries)).Unsubscribe)
	}

	return func() {
		for _, unsubscribe := range subs {
			unsubscribe()
		}
	}
}

func withDefaults[T command.Message](logger interfaces.Logger, operation string, opts []HandlerOption[T]) []HandlerOption[T] {
	return append([]HandlerOption[T]{WithLogger[T](logger), WithOperation[T](operation)}, opts...)
}

func ensureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
