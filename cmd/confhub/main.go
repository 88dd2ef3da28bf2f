package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/confhub/confhub/internal/confhub/conf"
	"github.com/confhub/confhub/internal/confhub/logic"
	"github.com/confhub/confhub/internal/confhub/repo"
	"github.com/confhub/confhub/internal/confhub/router"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/confhub/confhub/pkg/cache"
	"github.com/confhub/confhub/pkg/ctx"
	"github.com/confhub/confhub/pkg/http"
	"github.com/confhub/confhub/pkg/log"
	"github.com/confhub/confhub/pkg/runner"
)

var (
	configFile string
)

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf ./conf.d/config.toml")
}

func main() {
	flag.Parse()
	printRunner()

	appConf := conf.NewConf(configFile)

	log.MustInit(&appConf.Log)
	defer log.GetLogger().Sync()

	// redis is optional, API key validation degrades to store lookups
	var iCache cache.ICache
	redis, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		log.Warnw("redis unavailable, continuing without cache", "error", err)
	} else {
		iCache = cache.NewRedisCache(redis)
	}

	// warehouse session, fatal when unreachable at startup
	session := store.NewSession(appConf.Snowflake)
	if err := session.Connect(context.Background()); err != nil {
		log.Fatalf("failed to connect to warehouse: %v", err)
	}
	defer session.Disconnect()

	schema := store.NewSchemaManager(session)
	if err := schema.Initialize(context.Background()); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}

	Ctx := ctx.NewContext(context.Background(), iCache, log.GetLogger())

	repos := repo.NewRepositories(session, iCache)

	solutionLogic := logic.NewSolutionLogic(Ctx, repos.Solution, repos.Parameter)
	parameterLogic := logic.NewParameterLogic(Ctx, repos.Parameter)
	tagLogic := logic.NewTagLogic(Ctx, repos.Tag)
	apiKeyLogic := logic.NewAPIKeyLogic(Ctx, repos.APIKey, repos.Solution, repos.Parameter)

	route := router.NewRouter(&appConf.Http, Ctx, session,
		solutionLogic, parameterLogic, tagLogic, apiKeyLogic)

	httpClean := http.NewHttp(appConf.Http, route.Router())
	httpClean()
}

func printRunner() {
	fmt.Println("runner.pwd:", runner.Pwd)
	fmt.Println("runner.hostname:", runner.Hostname)
}
