package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/action"
	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/catalog"
	"github.com/five82/rentme/internal/chat"
	"github.com/five82/rentme/internal/config"
	"github.com/five82/rentme/internal/logging"
	"github.com/five82/rentme/internal/overlay"
	"github.com/five82/rentme/internal/prefs"
	"github.com/five82/rentme/internal/query"
	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/session"
	"github.com/five82/rentme/internal/state"
	"github.com/five82/rentme/internal/ui"
)

// Options configure the rentme application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses the config value
	BaseURL    string // empty uses the config value
	// LogOutput replaces the log file. The TUI leaves it nil so log lines
	// never reach the screen.
	LogOutput io.Writer
	LogLevel  string
}

// Env holds the process-wide services shared by the TUI and the
// one-shot commands.
type Env struct {
	Config  config.Config
	Prefs   prefs.Prefs
	Session *session.Session
	Client  *api.Client
	Auth    *session.Authenticator
	Log     zerolog.Logger

	closeLog func() error
}

// Setup loads configuration, opens the session and builds the API client.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PrefsPath != "" {
		cfg.PrefsPath = config.MustExpand(opts.PrefsPath)
	}
	if opts.BaseURL != "" {
		cfg.APIBaseURL = opts.BaseURL
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	env := &Env{Config: cfg}
	out := opts.LogOutput
	if out == nil {
		f, err := logging.OpenFile(cfg.LogPath)
		if err != nil {
			return nil, err
		}
		out = f
		env.closeLog = f.Close
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: out})
	env.Log = logging.Component("app")

	// Missing or unreadable prefs are not fatal; defaults apply.
	userPrefs, err := prefs.Load(cfg.PrefsPath)
	if err != nil {
		env.Log.Warn().Err(err).Str("path", cfg.PrefsPath).Msg("load prefs failed, using defaults")
	}
	env.Prefs = userPrefs

	sess, err := session.Open(cfg.SessionPath)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}
	env.Session = sess

	client, err := api.NewClient(cfg.APIBaseURL,
		api.WithTokenSource(sess),
		api.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	authLog := logging.Component("session")
	client.OnUnauthorized = func() {
		if !sess.Authenticated() {
			return
		}
		authLog.Info().Msg("server rejected token, signing out")
		if err := sess.Clear(); err != nil {
			authLog.Warn().Err(err).Msg("clear session failed")
		}
	}
	env.Client = client
	env.Auth = session.NewAuthenticator(client, sess, authLog)
	return env, nil
}

// Close releases the log file.
func (e *Env) Close() {
	if e.closeLog != nil {
		_ = e.closeLog()
		e.closeLog = nil
	}
}

// Codec returns the catalog query codec for the configured page size and
// default sort.
func (e *Env) Codec() query.Codec {
	return query.Codec{Limit: e.Config.PageSize, Sort: query.Sort(e.Config.DefaultSort)}
}

// Run boots the rentme TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	if _, err := env.Auth.Restore(ctx); err != nil {
		// Offline start is allowed; the screens report connectivity.
		env.Log.Warn().Err(err).Msg("restore session failed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := catalog.DefaultPath
	if q := env.Prefs.LastCatalogQuery; q != "" {
		start += "?" + q
	}
	r := router.NewMemory(start)

	listings := catalog.New(env.Client, r, catalog.Options{
		Codec:  env.Codec(),
		Logger: logging.Component("catalog"),
	})
	preview := overlay.New(r, env.Client.ListingOverview, overlay.Options{
		Logger: logging.Component("preview"),
	})
	// The preview closes when its listing drops out of the visible page.
	listings.Subscribe(func(snap state.Snapshot[api.ListingCatalog]) {
		if snap.Phase == state.PhaseReady {
			preview.Reconcile(snap.Data.IDs())
		}
	})
	listings.Start(ctx)
	defer listings.Stop()
	detach := preview.Attach(ctx)
	defer detach()

	chatLog := logging.Component("chat")
	inbox := chat.NewInbox(env.Client, env.Config.ChatListInterval, chatLog)
	defer inbox.Disable()
	tracker := chat.NewTracker(env.Client, chatLog, func(string) {
		// Read receipts change unread flags; resync the list now.
		inbox.Refresh()
	})
	openThread := func(id string) *chat.Thread {
		return chat.NewThread(env.Client, id, env.Config.ThreadInterval, tracker, chatLog)
	}

	env.Log.Info().
		Str("api", env.Client.BaseURL()).
		Bool("signed_in", env.Session.Authenticated()).
		Dur("chat_interval", env.Config.ChatListInterval).
		Msg("starting rentme")

	return ui.Run(ui.Options{
		Context:         ctx,
		Router:          r,
		Catalog:         listings,
		Preview:         preview,
		Inbox:           inbox,
		OpenThread:      openThread,
		Actions:         action.NewRunner(r, logging.Component("action")),
		Client:          env.Client,
		Auth:            env.Auth,
		Prefs:           env.Prefs,
		PrefsPath:       env.Config.PrefsPath,
		Logger:          logging.Component("ui"),
		RefreshInterval: 200 * time.Millisecond,
	})
}
