package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/draftden/draftden/internal/cache/cachelru"
	"github.com/draftden/draftden/internal/cards"
	"github.com/draftden/draftden/internal/database"
	deckdb "github.com/draftden/draftden/internal/database/deck/database"
	draftdb "github.com/draftden/draftden/internal/database/draft/database"
	userdb "github.com/draftden/draftden/internal/database/user/database"
	"github.com/draftden/draftden/internal/draft"
	"github.com/draftden/draftden/internal/draft/resource"
	"github.com/draftden/draftden/internal/logging"
	"github.com/draftden/draftden/internal/server"
	"github.com/draftden/draftden/internal/shutdown"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, resource.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		resource.GreetingCLI,
		resource.ProjectName,
		resource.ProjectVersion,
		resource.GithubUrl,
	)

	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)
	if err := realMain(ctx); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	config := draft.Config{}
	if err := envconfig.Process("", &config); err != nil {
		logger.Fatalf("processing the config: %v", err)
	}

	ctx = logging.WithLogger(ctx, logging.NewLogger(config.Debug))
	logger = logging.FromContext(ctx)

	db, err := database.NewFromEnv(ctx, &config.Db)
	if err != nil {
		return fmt.Errorf("new database from env: %v", err)
	}
	defer db.Close(ctx)

	userCache, err := cachelru.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %v", err)
	}

	cardCache, err := cachelru.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %v", err)
	}

	cardDB, err := cards.LoadFile(config.CardsFile)
	if err != nil {
		return fmt.Errorf("load cards: %v", err)
	}

	drafts, err := draftdb.New(db)
	if err != nil {
		return fmt.Errorf("draft store: %v", err)
	}

	decks, err := deckdb.New(db)
	if err != nil {
		return fmt.Errorf("deck store: %v", err)
	}

	manager := draft.NewManager(
		&config,
		drafts,
		decks,
		userdb.New(db, userCache),
		cards.NewCached(cardDB, cardCache),
	)

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %v", err)
	}

	mux := server.NewMux(manager, server.HeaderSessions{})
	mux.Handle("/health", server.HandleHealth(ctx))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ServeHTTP(ctx, &http.Server{Handler: mux})
	})

	g.Go(func() error {
		return http.ListenAndServe(":"+config.ProfPort, nil)
	})

	logger.Infof("%s %s up on :%s", resource.ProjectName, resource.ProjectVersion, config.Port)

	return g.Wait()
}
