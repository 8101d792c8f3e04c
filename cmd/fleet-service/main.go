package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/FleetLink/FleetLink/internal/common/config"
	"github.com/FleetLink/FleetLink/internal/common/db"
	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/common/server"
	"github.com/FleetLink/FleetLink/internal/common/tracing"
	"github.com/FleetLink/FleetLink/internal/maintenance"
	"github.com/FleetLink/FleetLink/internal/part"
	"github.com/FleetLink/FleetLink/internal/vehicle"
	"google.golang.org/grpc"
)

var (
	configPath = flag.String("config", "configs/fleet-service.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&vehicle.Vehicle{},
		&part.Part{},
		&maintenance.Job{},
		&maintenance.PartUsage{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 组装维保工作流
	lockWait := time.Duration(cfg.Database.LockWaitSeconds) * time.Second
	workflow := maintenance.NewService(maintenance.NewGormBackend(gormDB, lockWait), log)

	// 启动巡检：上报当前进行中的维保数量
	if _, total, err := workflow.ListJobs(context.Background(), 0, maintenance.StatusOngoing, 0, 1); err != nil {
		log.Warnf("failed to count ongoing maintenance jobs: %v", err)
	} else {
		log.Infof("ongoing maintenance jobs at startup: %d", total)
	}

	// 启动统一的 gRPC 服务模板。
	// 业务 proto 尚未补齐（与 api-gateway 的阶段规划一致），当前仅暴露
	// health / reflection；workflow 的操作面先由进程内调用方使用。
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		return nil
	}); err != nil {
		log.Fatalf("fleet-service exited with error: %v", err)
	}
}
