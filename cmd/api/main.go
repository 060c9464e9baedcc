package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"seoforge/internal/common/pagination"
	appconfig "seoforge/internal/config"
	pgRepo "seoforge/internal/infra/adapter/persistence/postgres"
	"seoforge/internal/infra/db"
	"seoforge/internal/infra/expander"
	"seoforge/internal/infra/generator"
	"seoforge/internal/infra/jobs"
	"seoforge/internal/infra/notifier"
	"seoforge/internal/infra/publisher"
	"seoforge/internal/infra/secrets"
	"seoforge/internal/infra/seodata"
	"seoforge/internal/infra/serp"
	"seoforge/internal/observability/logging"
	"seoforge/internal/observability/metrics"
	"seoforge/pkg/config"
	"seoforge/pkg/ratelimit"
	"seoforge/pkg/security/csp"

	artUC "seoforge/internal/usecase/article"
	"seoforge/internal/usecase/keyword"
	settingsUC "seoforge/internal/usecase/settings"

	hhttp "seoforge/internal/handler/http"
	harticle "seoforge/internal/handler/http/article"
	hauth "seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/middleware"
	"seoforge/internal/handler/http/requestid"
	hsettings "seoforge/internal/handler/http/settings"
	authservice "seoforge/internal/service/auth"
)

// @title           SEOForge API
// @version         1.0
// @description     SEO記事自動生成システムの REST API
// @description     キーワード分析、記事生成、CMS への公開機能を提供します。

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT トークンによる認証。ヘッダーに "Bearer {token}" 形式で指定してください。

func main() {
	logger := logging.NewLogger()
	validateJWTSecret(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	a, err := buildApp(database, logger)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	runServer(a, logger)
}

// validateJWTSecret enforces a minimum strength for the signing secret
// before the server accepts any traffic.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	// セキュリティ: 最小32文字（256ビット）を強制
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	// セキュリティ: よくある弱い秘密鍵を拒否
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// app bundles everything runServer needs to start and stop cleanly.
type app struct {
	handler    http.Handler
	runner     *jobs.Runner
	reconciler *jobs.Reconciler
	version    string
}

// buildApp wires repositories, external clients, usecases and the HTTP
// surface. It returns an error for any misconfiguration so main can log
// once and exit.
func buildApp(database *sql.DB, logger *slog.Logger) (*app, error) {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}

	articleRepo := pgRepo.NewArticleRepo(database)
	historyRepo := pgRepo.NewHistoryRepo(database)
	settingRepo := pgRepo.NewSettingRepo(database)

	vault, err := secrets.New(os.Getenv("SETTINGS_ENCRYPTION_KEY"))
	if err != nil {
		return nil, err
	}
	settingsSvc := &settingsUC.Service{Repo: settingRepo, Vault: vault}

	enricher, err := buildEnricher(settingsSvc, logger)
	if err != nil {
		return nil, err
	}
	gen, err := buildGenerator(settingsSvc, logger)
	if err != nil {
		return nil, err
	}

	runner := jobs.NewRunner(jobs.DefaultRunnerConfig(), logger)
	runner.SetNotifier(buildNotifier(logger))

	articleSvc := &artUC.Service{
		Repo:      articleRepo,
		History:   historyRepo,
		Jobs:      runner,
		Enricher:  enricher,
		Generator: gen,
		Publishers: map[string]artUC.Publisher{
			publisher.TargetShopify:   publisher.NewShopify(settingsSvc),
			publisher.TargetWordPress: publisher.NewWordPress(settingsSvc),
		},
		Log: logger,
	}
	runner.Register(artUC.JobKeywordAnalysis, articleSvc.RunAnalysis)
	runner.Register(artUC.JobGeneration, articleSvc.RunGeneration)

	rateLimitCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.NewLimiter(
		ratelimit.NewMemoryStore(rateLimitCfg.MaxKeys),
		ratelimit.WithMetrics(ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer)),
	)

	reconciler := &jobs.Reconciler{
		Articles: articleRepo,
		Queue:    runner,
		Config:   jobs.DefaultReconcilerConfig(),
		Log:      logger,
		Housekeeping: []func(){
			func() { limiter.Cleanup(rateLimitCfg.LongestWindow()) },
			articleCountHook(database, logger),
			hhttp.PublishSLOMetrics,
		},
	}

	users, tokenTTL, err := buildAuth(logger)
	if err != nil {
		return nil, err
	}

	handler := buildHandler(routeDeps{
		db:         database,
		version:    version,
		articles:   articleSvc,
		settings:   settingsSvc,
		users:      users,
		tokenTTL:   tokenTTL,
		limiter:    limiter,
		rateLimits: rateLimitCfg,
		pagination: pagination.LoadFromEnv(),
		log:        logger,
	})

	return &app{handler: handler, runner: runner, reconciler: reconciler, version: version}, nil
}

// buildEnricher assembles the keyword enrichment pipeline: a language model
// for expansion plus the DataForSEO metrics passes. Model keys come from
// each user's stored settings first; OPENAI_API_KEY and ANTHROPIC_API_KEY
// are the shared fallbacks. ANTHROPIC_API_KEY alone selects the Claude
// expander.
func buildEnricher(settingsSvc *settingsUC.Service, logger *slog.Logger) (*keyword.Pipeline, error) {
	var exp keyword.Expander
	if os.Getenv("ANTHROPIC_API_KEY") != "" && os.Getenv("OPENAI_API_KEY") == "" {
		exp = expander.NewClaude(settingsSvc, os.Getenv("ANTHROPIC_API_KEY"), expander.DefaultClaudeConfig())
		logger.Info("keyword expansion: using Claude (OPENAI_API_KEY not set)")
	} else {
		exp = expander.NewOpenAI(settingsSvc, os.Getenv("OPENAI_API_KEY"), expander.DefaultOpenAIConfig())
	}

	seo, err := seoDataClient(settingsSvc)
	if err != nil {
		return nil, err
	}
	return &keyword.Pipeline{Expander: exp, Provider: seo, Log: logger}, nil
}

// buildGenerator assembles the content generation step. The SERP analyzer
// and SEO helper share the DataForSEO client with the enrichment pipeline's
// metrics passes.
func buildGenerator(settingsSvc *settingsUC.Service, logger *slog.Logger) (*generator.Generator, error) {
	seo, err := seoDataClient(settingsSvc)
	if err != nil {
		return nil, err
	}
	return &generator.Generator{
		Model:  generator.NewOpenAIModel(settingsSvc, os.Getenv("OPENAI_API_KEY"), generator.DefaultOpenAIModelConfig()),
		Serp:   serp.NewAnalyzer(seo, serp.DefaultConfig(), logger),
		Helper: seo,
		Log:    logger,
	}, nil
}

// seoDataClient resolves DataForSEO credentials per user through the
// settings vault, with the environment pair as the shared fallback.
func seoDataClient(settingsSvc *settingsUC.Service) (*seodata.Client, error) {
	return seodata.New(settingsSvc, seodata.Credentials{
		Login:    os.Getenv("DATAFORSEO_LOGIN"),
		Password: os.Getenv("DATAFORSEO_PASSWORD"),
	}, seodata.DefaultConfig())
}

// buildNotifier picks the failure notification channel from the
// environment. Slack wins when both webhooks are configured.
func buildNotifier(logger *slog.Logger) notifier.Notifier {
	if url := os.Getenv("SLACK_WEBHOOK_URL"); url != "" {
		logger.Info("job failure notifications: slack")
		return notifier.NewSlackNotifier(notifier.SlackConfig{WebhookURL: url})
	}
	if url := os.Getenv("DISCORD_WEBHOOK_URL"); url != "" {
		logger.Info("job failure notifications: discord")
		return notifier.NewDiscordNotifier(notifier.DiscordConfig{WebhookURL: url})
	}
	logger.Info("job failure notifications: disabled")
	return notifier.NewNoopNotifier()
}

// buildAuth loads the user set and password policy. SECURITY_CONFIG_PATH
// optionally names a YAML file overriding the built-in policy and token
// lifetime.
func buildAuth(logger *slog.Logger) (*authservice.Service, time.Duration, error) {
	req := authservice.DefaultRequirements()
	ttl := hauth.DefaultTokenTTL

	if path := os.Getenv("SECURITY_CONFIG_PATH"); path != "" {
		secCfg, err := appconfig.LoadSecurityConfig(path)
		if err != nil {
			return nil, 0, err
		}
		req.MinPasswordLength = secCfg.GetMinPasswordLength()
		req.WeakPasswords = secCfg.GetWeakPasswords()
		ttl = time.Duration(secCfg.GetJWTExpiryHours()) * time.Hour
		logger.Info("security policy loaded",
			slog.String("path", path),
			slog.Int("min_password_length", req.MinPasswordLength),
			slog.Duration("token_ttl", ttl))
	}

	users, err := authservice.FromEnv(req)
	if err != nil {
		return nil, 0, err
	}
	return users, ttl, nil
}

type routeDeps struct {
	db         *sql.DB
	version    string
	articles   *artUC.Service
	settings   *settingsUC.Service
	users      *authservice.Service
	tokenTTL   time.Duration
	limiter    *ratelimit.Limiter
	rateLimits *config.RateLimitConfig
	pagination pagination.Config
	log        *slog.Logger
}

// buildHandler registers all routes and wraps them in the middleware chain.
func buildHandler(d routeDeps) http.Handler {
	proxyCfg, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		d.log.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	var ips middleware.IPExtractor
	if proxyCfg.Enabled {
		ips = middleware.NewTrustedProxyExtractor(*proxyCfg)
		d.log.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyCfg.AllowedCIDRs)))
	} else {
		ips = &middleware.RemoteAddrExtractor{}
		d.log.Info("rate limiting: using RemoteAddr (proxy headers ignored)")
	}
	rl := middleware.NewRateLimit(d.limiter, d.rateLimits, ips, d.log)

	publicMux := http.NewServeMux()
	publicMux.Handle("POST   /auth/token",
		rl.Endpoint(config.EndpointAuthToken)(hauth.TokenHandlerWithTTL(d.users, d.tokenTTL)))

	// ヘルスチェックエンドポイント（認証不要）
	publicMux.Handle("/health", &hhttp.HealthHandler{DB: d.db, Version: d.version, Limiter: d.limiter})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: d.db})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())

	// Swagger UI（認証不要）
	publicMux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Register applies auth per route, so the private mux needs no outer
	// wrapper.
	privateMux := http.NewServeMux()
	harticle.Register(privateMux, d.articles, d.pagination, rl, d.log)
	hsettings.Register(privateMux, d.settings, rl)

	rootMux := http.NewServeMux()
	rootMux.Handle("/auth/token", publicMux)
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/swagger/", publicMux)
	rootMux.Handle("/", privateMux)

	return applyMiddleware(rootMux, d.log)
}

// applyMiddleware wraps the handler in the outer chain, innermost first:
// CORS → Request ID → Recovery → Logging → Body Limit → Security Headers →
// Timeout → Input Validation → Metrics.
func applyMiddleware(handler http.Handler, logger *slog.Logger) http.Handler {
	corsCfg := middleware.LoadCORSConfig()
	logger.Info("CORS configured",
		slog.Any("allowed_origins", corsCfg.AllowedOrigins),
		slog.Any("allowed_methods", corsCfg.AllowedMethods))

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Timeout(30 * time.Second)(chain)
	chain = securityHeaders(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)
	chain = middleware.CORS(corsCfg)(chain)
	return chain
}

// securityHeaders sets a strict Content-Security-Policy everywhere except
// the Swagger UI, which needs inline scripts and styles to render.
func securityHeaders(next http.Handler) http.Handler {
	strict := csp.StrictPolicy()
	swagger := csp.SwaggerUIPolicy()
	strictValue := strict.Build()
	swaggerValue := swagger.Build()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			w.Header().Set(swagger.HeaderName(), swaggerValue)
		} else {
			w.Header().Set(strict.HeaderName(), strictValue)
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// articleCountHook refreshes the articles_total gauge from the database.
func articleCountHook(database *sql.DB, logger *slog.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var n int64
		if err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
			logger.Warn("article count refresh failed", slog.Any("error", err))
			return
		}
		metrics.UpdateArticlesTotal(n)
	}
}

// runServer starts the background runner, the reconciler and the HTTP
// server, then blocks until SIGINT/SIGTERM and shuts everything down in
// reverse order.
func runServer(a *app, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.runner.Start()
	if err := a.reconciler.Start(); err != nil {
		logger.Error("failed to start reconciler", slog.Any("error", err))
		os.Exit(1)
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris 対策
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", a.version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// Stop accepting new jobs before draining the queue so in-flight
	// article work finishes or fails cleanly.
	a.reconciler.Stop()
	a.runner.Stop()
	cancel()
	logger.Info("server stopped")
}
