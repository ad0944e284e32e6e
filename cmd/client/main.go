package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bidmatch/internal/client/api"
	"github.com/dmitrijs2005/bidmatch/internal/client/cli"
	"github.com/dmitrijs2005/bidmatch/internal/client/config"
	"github.com/dmitrijs2005/bidmatch/internal/client/cookies"
	"github.com/dmitrijs2005/bidmatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bidmatch/internal/client/session"
	"github.com/dmitrijs2005/bidmatch/internal/client/storage"
	"github.com/dmitrijs2005/bidmatch/internal/common"
	"github.com/dmitrijs2005/bidmatch/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}
	log := logging.New(errOut, cfg.LogLevel, cfg.LogFormat)

	db, err := storage.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()
	repo := metadata.NewSQLiteRepository(db)

	jar, err := cookies.NewJar()
	if err != nil {
		return fmt.Errorf("cookie jar: %w", err)
	}
	httpClient := &http.Client{Jar: jar, Timeout: cfg.RequestTimeout}
	nav := cli.NewNavigator(out)
	policy := session.Policy{LeadTime: cfg.RefreshLeadTime}

	newManager := func(actor session.Actor, cookieName string, apiOpts ...api.Option) (*session.Manager, error) {
		apiOpts = append(apiOpts, api.WithHTTPClient(httpClient), api.WithLogger(log))
		client, err := api.NewHTTPClient(cfg.ServerURL, apiOpts...)
		if err != nil {
			return nil, err
		}
		mirror, err := cookies.NewJarMirror(jar, cfg.ServerURL, cookieName, cfg.CookieMaxAge)
		if err != nil {
			return nil, err
		}
		return session.NewManager(actor, client, repo,
			session.WithCookies(mirror),
			session.WithNavigator(nav),
			session.WithLogger(log),
			session.WithPolicy(policy),
		), nil
	}

	clientManager, err := newManager(session.ActorClient, common.AccessTokenCookieName)
	if err != nil {
		return err
	}
	defer clientManager.Close()

	writerManager, err := newManager(session.ActorWriter, "writer_"+common.AccessTokenCookieName,
		api.WithPathPrefix(cfg.WriterPathPrefix))
	if err != nil {
		return err
	}
	defer writerManager.Close()

	log.Info(ctx, "starting", "server", cfg.ServerURL, "database", cfg.DatabaseDSN)
	cli.NewApp(clientManager, writerManager, in, out, log).Run(ctx)
	return nil
}
