package translationscmd

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/morelab/appcomposer/internal/commands"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

const (
	pushOperation     = "translations.push_bundle"
	fullSyncOperation = "translations.full_sync"
)

var (
	_ command.Commander[PushBundleCommand] = (*PushBundleHandler)(nil)
	_ command.Commander[FullSyncCommand]   = (*FullSyncHandler)(nil)
)

// PushFunc replicates one bundle identified by translation URL, partial
// language code and target group.
type PushFunc func(ctx context.Context, translationURL, language, target string) error

// FullSyncFunc runs one full replication pass.
type FullSyncFunc func(ctx context.Context) error

// PushBundleHandler replicates a single bundle via the shared command handler foundation.
type PushBundleHandler struct {
	inner *commands.Handler[PushBundleCommand]
}

// NewPushBundleHandler creates a handler bound to the supplied push function.
func NewPushBundleHandler(push PushFunc, logger interfaces.Logger, opts ...commands.HandlerOption[PushBundleCommand]) *PushBundleHandler {
	exec := func(ctx context.Context, msg PushBundleCommand) error {
		return push(ctx, msg.TranslationURL, msg.Language, msg.Target)
	}

	handlerOpts := append([]commands.HandlerOption[PushBundleCommand]{
		commands.WithLogger[PushBundleCommand](logger),
		commands.WithOperation[PushBundleCommand](pushOperation),
	}, opts...)

	return &PushBundleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *PushBundleHandler) Execute(ctx context.Context, msg PushBundleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// FullSyncHandler runs the full replication pass via the shared command handler foundation.
type FullSyncHandler struct {
	inner *commands.Handler[FullSyncCommand]
}

// NewFullSyncHandler creates a handler bound to the supplied sync function.
func NewFullSyncHandler(run FullSyncFunc, logger interfaces.Logger, opts ...commands.HandlerOption[FullSyncCommand]) *FullSyncHandler {
	exec := func(ctx context.Context, _ FullSyncCommand) error {
		return run(ctx)
	}

	handlerOpts := append([]commands.HandlerOption[FullSyncCommand]{
		commands.WithLogger[FullSyncCommand](logger),
		commands.WithOperation[FullSyncCommand](fullSyncOperation),
	}, opts...)

	return &FullSyncHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *FullSyncHandler) Execute(ctx context.Context, msg FullSyncCommand) error {
	return h.inner.Execute(ctx, msg)
}
