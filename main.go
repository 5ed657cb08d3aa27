package main

import (
	"context"

	"github.com/rs/zerolog/log"

	approvalx "github.com/tanpawarit/Chative-Commerce-Governance/engine/approval"
	auditx "github.com/tanpawarit/Chative-Commerce-Governance/engine/audit"
	commercex "github.com/tanpawarit/Chative-Commerce-Governance/engine/commerce"
	completionx "github.com/tanpawarit/Chative-Commerce-Governance/engine/completion"
	inflightx "github.com/tanpawarit/Chative-Commerce-Governance/engine/inflight"
	orchestratorx "github.com/tanpawarit/Chative-Commerce-Governance/engine/orchestrator"
	rulex "github.com/tanpawarit/Chative-Commerce-Governance/engine/rules"
	sentimentx "github.com/tanpawarit/Chative-Commerce-Governance/engine/sentiment"
	postgresx "github.com/tanpawarit/Chative-Commerce-Governance/engine/store/postgres"
	workspacex "github.com/tanpawarit/Chative-Commerce-Governance/engine/workspace"
	channelx "github.com/tanpawarit/Chative-Commerce-Governance/pkg/channel"
	configx "github.com/tanpawarit/Chative-Commerce-Governance/pkg/config"
	_ "github.com/tanpawarit/Chative-Commerce-Governance/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Chative-Commerce-Governance/pkg/openrouter"
	redisxx "github.com/tanpawarit/Chative-Commerce-Governance/pkg/redisx"
)

type AppConfig struct {
	SentimentModel string `envconfig:"SENTIMENT_MODEL" required:"true"`
	PaymentBaseURL string `envconfig:"PAYMENT_BASE_URL" required:"true"`
	QuietReply     string `envconfig:"QUIET_REPLY"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	pgCfg := configx.MustNew[postgresx.Config]("")
	db, err := postgresx.Connect(ctx, *pgCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer db.Close()

	redisCfg := configx.MustNew[redisxx.Config]("REDIS")
	redisClient, err := redisxx.NewClient(ctx, *redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("chat model init failed")
	}
	completionClient, err := completionx.NewClient(chatModel)
	if err != nil {
		log.Fatal().Err(err).Msg("completion client init failed")
	}

	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		log.Fatal().Msg("openrouter client init failed")
	}
	estimator, err := sentimentx.NewEstimator(openRouterClient, appCfg.SentimentModel)
	if err != nil {
		log.Fatal().Err(err).Msg("sentiment estimator init failed")
	}

	channelCfg := configx.MustNew[channelx.Config]("CHANNEL")
	sender := channelx.MustNew(*channelCfg)

	settingsStore := postgresx.NewWorkspaceStore(db)
	convStore := postgresx.NewConversationStore(db)
	commerceStore := postgresx.NewCommerceStore(db)
	ruleStore := postgresx.NewRuleStore(db)
	approvalStore := postgresx.NewApprovalStore(db)
	auditStore := postgresx.NewAuditStore(db)

	ruleLoader, err := rulex.NewLoader(ruleStore, rulex.WithCache(redisClient, 0))
	if err != nil {
		log.Fatal().Err(err).Msg("rule loader init failed")
	}

	auditRecorder := auditx.NewRecorder(auditStore)
	approvalSvc, err := approvalx.NewService(approvalStore, sender, auditRecorder)
	if err != nil {
		log.Fatal().Err(err).Msg("approval service init failed")
	}

	workspaceSvc, err := workspacex.NewService(settingsStore, approvalSvc, auditRecorder)
	if err != nil {
		log.Fatal().Err(err).Msg("workspace service init failed")
	}
	_ = workspaceSvc

	toolGateway, err := commercex.NewGateway(commerceStore, appCfg.PaymentBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("tool gateway init failed")
	}
	locker, err := inflightx.NewRedisLocker(redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("inflight locker init failed")
	}

	engine, err := orchestratorx.New(orchestratorx.Deps{
		Settings:   settingsStore,
		Convs:      convStore,
		Commerce:   commerceStore,
		Rules:      ruleLoader,
		Tools:      toolGateway,
		Completion: completionClient,
		Sentiment:  estimator,
		Sender:     sender,
		Approvals:  approvalSvc,
		Audit:      auditRecorder,
		Locker:     locker,
	}, orchestratorx.Config{
		QuietReply: appCfg.QuietReply,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}
	_ = engine

	log.Info().Msg("governance engine ready")
}
