package commands

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/assistant"
	"github.com/gem-enterprise/gemhub/automation"
	"github.com/gem-enterprise/gemhub/bots"
	"github.com/gem-enterprise/gemhub/config"
	"github.com/gem-enterprise/gemhub/controllers"
	"github.com/gem-enterprise/gemhub/feeds"
	"github.com/gem-enterprise/gemhub/global"
	"github.com/gem-enterprise/gemhub/messenger"
	"github.com/gem-enterprise/gemhub/models"
	"github.com/gem-enterprise/gemhub/repository"
	"github.com/gem-enterprise/gemhub/store"
	"github.com/gem-enterprise/gemhub/utils"
	"github.com/gem-enterprise/gemhub/workflow"
)

// app holds every wired service for one process.
type app struct {
	cfg          *config.Config
	store        *store.Store
	aggregator   *feeds.Aggregator
	orchestrator *workflow.Orchestrator
	publisher    *workflow.Publisher
	bots         *bots.Router
	assistant    *assistant.Assistant
	posts        *repository.PostLog
}

// buildApp connects the optional backends and wires the services on top of them.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	if err := config.InitDB(); err != nil {
		return nil, err
	}
	if err := config.MigrateDB(); err != nil {
		return nil, err
	}
	if err := config.InitRedis(); err != nil {
		return nil, err
	}
	utils.SetJWTSecret(cfg.JWT.Secret, cfg.JWT.TTL)

	a := &app{cfg: cfg, store: store.New()}

	sources, err := loadSources(ctx, cfg)
	if err != nil {
		return nil, err
	}
	feedOpts := []feeds.Option{}
	if cfg.Feeds.FetchTimeout > 0 {
		feedOpts = append(feedOpts, feeds.WithHTTPClient(&http.Client{Timeout: cfg.Feeds.FetchTimeout}))
	}
	if global.DB != nil {
		feedOpts = append(feedOpts, feeds.WithSourceStore(repository.NewSourceRepository(global.DB)))
		a.posts = repository.NewPostLog(global.DB)
	}
	a.aggregator = feeds.New(a.store, sources, logger.Named("feeds"), feedOpts...)

	auto := automation.NewClient(cfg.Automation.WebhookURL, cfg.Integrations(), logger.Named("automation"))
	tg := messenger.NewClient(cfg.Telegram.APIBase, logger.Named("messenger"))

	if cfg.Assistant.APIKey != "" {
		gen, err := assistant.NewGenAIGenerator(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model)
		if err != nil {
			return nil, err
		}
		a.assistant = assistant.New(gen, logger.Named("assistant"))
	} else {
		a.assistant = assistant.New(nil, logger.Named("assistant"))
	}

	trusted := cfg.Feeds.TrustedSources
	if len(trusted) == 0 {
		trusted = feeds.DefaultTrustedSources
	}
	wfOpts := []workflow.Option{workflow.WithEmitter(auto)}
	if cfg.Feeds.ExtractArticles {
		wfOpts = append(wfOpts, workflow.WithExtractor(feeds.NewArticleExtractor()))
	}
	if a.assistant.Configured() {
		wfOpts = append(wfOpts, workflow.WithSummarizer(a.assistant))
	}
	if a.posts != nil {
		wfOpts = append(wfOpts, workflow.WithPostLog(a.posts))
	}
	a.orchestrator = workflow.New(a.aggregator, a.store, trusted, logger.Named("workflow"), wfOpts...)

	personas := bots.Personas(bots.Credentials{
		Shared:            cfg.Telegram.Token,
		GEMAssist:         cfg.Telegram.GEMAssist,
		GemCyberAssist:    cfg.Telegram.GemCyberAssist,
		CyberGEMSecure:    cfg.Telegram.CyberGEMSecure,
		RealEstateChannel: cfg.Telegram.RealEstateChannel,
	})
	a.bots = bots.NewRouter(personas, tg, a.store, logger.Named("bots"),
		bots.WithEvents(a.orchestrator),
		bots.WithIntegrations(auto),
		bots.WithChannels(bots.Channels{
			Security:   cfg.Channels.Security,
			RealEstate: cfg.Channels.RealEstate,
			Client:     cfg.Channels.Client,
		}),
	)

	var recorder workflow.StatusRecorder
	if a.posts != nil {
		recorder = a.posts
	}
	a.publisher = workflow.NewPublisher(tg, destinations(cfg, personas), recorder, logger.Named("publisher"))
	return a, nil
}

// loadSources prefers the database catalogue, then the config file list, then the built-in
// catalogue. Built-in sources are seeded into an empty or partial database.
func loadSources(ctx context.Context, cfg *config.Config) ([]models.FeedSource, error) {
	defaults := feeds.DefaultSources()
	if len(cfg.Feeds.Sources) > 0 {
		defaults = defaults[:0]
		for _, s := range cfg.Feeds.Sources {
			cat, ok := models.ParseCategory(s.Category)
			if !ok {
				return nil, fmt.Errorf("feed %q: %w: %q", s.Name, feeds.ErrUnknownCategory, s.Category)
			}
			defaults = append(defaults, models.FeedSource{
				Name:         s.Name,
				URL:          s.URL,
				Category:     cat,
				Enabled:      true,
				PollInterval: cfg.Feeds.PollInterval,
			})
		}
	}
	if global.DB == nil {
		return defaults, nil
	}

	repo := repository.NewSourceRepository(global.DB)
	if err := repo.EnsureDefaults(ctx, defaults); err != nil {
		return nil, fmt.Errorf("failed to seed feed sources: %w", err)
	}
	return repo.List(ctx)
}

// destinations maps broadcast channel names to their ids and the persona that posts there.
func destinations(cfg *config.Config, personas []bots.Persona) map[string]workflow.Destination {
	cred := func(name bots.PersonaName) string {
		for _, p := range personas {
			if p.Name == name {
				return p.Credential
			}
		}
		return cfg.Telegram.Token
	}
	return map[string]workflow.Destination{
		"security":   {ChannelID: cfg.Channels.Security, Credential: cred(bots.CyberGEMSecure)},
		"client":     {ChannelID: cfg.Channels.Client, Credential: cred(bots.GEMAssist)},
		"realestate": {ChannelID: cfg.Channels.RealEstate, Credential: cred(bots.RealEstateChannel)},
	}
}

func (a *app) controller(logger *zap.Logger) *controllers.Controller {
	ctl := &controllers.Controller{
		Bots:          a.bots,
		Aggregator:    a.aggregator,
		Orchestrator:  a.orchestrator,
		Publisher:     a.publisher,
		Store:         a.store,
		Assistant:     a.assistant,
		WebhookSecret: a.cfg.Telegram.WebhookSecret,
		Logger:        logger.Named("http"),
	}
	if a.posts != nil {
		ctl.Posts = a.posts
	}
	return ctl
}

// close releases the optional backends.
func (a *app) close() {
	if global.DB != nil {
		if sqlDB, err := global.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if global.RedisDB != nil {
		global.RedisDB.Close()
	}
}
