package main

import (
	"log"
	"log/slog"
	"os"

	"smartbill/internal/api"
	"smartbill/internal/api/controller"
	"smartbill/internal/config"
	"smartbill/internal/infrastructure/database"
	"smartbill/internal/infrastructure/llm"
	"smartbill/internal/repository"
	"smartbill/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. 初始化 Logger
	// JSON 格式输出方便采集，AddSource 会带上文件名和行号
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("smartbill 系统启动中...")

	// .env 不存在也没关系，本地开发用它喂环境变量
	_ = godotenv.Load()

	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	slog.Info("配置加载成功")

	// 2. Infra Initialization
	llmClient := llm.NewDeepSeekClient(conf.DeepSeek.APIKey, conf.DeepSeek.BaseURL, conf.DeepSeek.Model)
	db := database.NewMySQLConnection(conf.Database.DSN) // 这里会自动建表

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. Layer Wiring (依赖注入)
	billRepo := repository.NewBillRepo(db)
	userRepo := repository.NewUserRepository(db)

	billSvc := service.NewBillService(billRepo)
	extractSvc := service.NewExtractService(llmClient, billRepo)
	analyzeSvc := service.NewAnalyzeService(llmClient)
	authSvc := service.NewAuthService(userRepo)

	// 4. Server Start
	r := gin.Default()
	api.RegisterRoutes(r,
		controller.NewAuthController(authSvc),
		controller.NewBillController(billSvc),
		controller.NewAIController(extractSvc, analyzeSvc),
	)

	slog.Info("smartbill Web Server 启动中", "port", conf.Server.Port)
	if err := r.Run(conf.Server.Port); err != nil {
		slog.Error("服务器启动失败", "error", err)
	}
}
