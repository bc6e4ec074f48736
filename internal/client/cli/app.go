package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/geoposts/internal/client/client"
	"github.com/dmitrijs2005/geoposts/internal/client/config"
	"github.com/dmitrijs2005/geoposts/internal/client/models"
	"github.com/dmitrijs2005/geoposts/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/geoposts/internal/client/services"
	"github.com/dmitrijs2005/geoposts/internal/filex"
	"github.com/dmitrijs2005/geoposts/internal/logging"
	"github.com/prometheus/client_golang/prometheus"

	_ "modernc.org/sqlite"
)

// maxImageBytes caps files accepted by addimage.
const maxImageBytes = 10 << 20

type App struct {
	cfg      *config.Config
	log      logging.Logger
	db       *sql.DB
	session  *client.Session
	api      client.API
	registry *prometheus.Registry

	auth    *services.AuthFlow
	mapView *services.MapQueryFlow
	post    *services.PostCreationFlow

	reader      *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewApp opens the local database, restores a saved session and builds the
// gateway and flows. Close releases what NewApp acquired.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	store := metadata.NewSessionStore(db)
	session := client.NewSession()

	token, err := store.Load(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}
	if token != "" {
		session.SetToken(token)
		log.Info(ctx, "session restored")
	}

	reg := prometheus.NewRegistry()
	api, err := client.NewHTTPClient(cfg.ServerBaseURL, session,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RequestsPerSecond),
		client.WithMetrics(client.NewMetrics(reg)),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reader := bufio.NewReader(in)
	oauth := services.OAuthConfig{ClientID: cfg.OAuthClientID, RedirectURI: cfg.OAuthRedirectURI}

	a := &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		session:     session,
		api:         api,
		registry:    reg,
		reader:      reader,
		out:         out,
		interactive: isTerminal(in),
	}
	a.auth = services.NewAuthFlow(api, session, &terminalBrowser{reader: reader, out: out}, oauth, store, log)
	a.mapView = services.NewMapQueryFlow(api, models.Region{}, cfg.DefaultRadiusMeters, log)
	return a, nil
}

// Run blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	stop := a.auth.Subscribe(func(st services.AuthState) {
		switch st.Status {
		case services.AuthAuthenticated:
			fmt.Fprintln(a.out, "Signed in.")
		case services.AuthFailed:
			fmt.Fprintln(a.out, "Sign-in failed.")
		}
	})
	defer stop()

	fmt.Fprintln(a.out, "geoposts client (type 'help' for commands)")
	runREPL(ctx, a.commands(), a.status, a.reader, a.out, a.interactive)
}

func (a *App) Close() error {
	a.mapView.Wait()
	return a.db.Close()
}

func (a *App) status() string {
	parts := []string{a.auth.State().Status.String()}
	if a.post != nil {
		parts = append(parts, "draft "+a.post.State().Status.String())
	}
	return strings.Join(parts, ", ")
}
