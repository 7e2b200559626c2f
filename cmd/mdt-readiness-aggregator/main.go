package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/logger"
	"mdt-readiness-aggregator/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "mdt-readiness-aggregator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting mdt-readiness-aggregator service")

	// 创建服务
	svc, err := service.NewService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create readiness service", zap.Error(err))
	}

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 启动服务（在 goroutine 中）
	// once 模式下 Start 正常返回 nil，同样经由 errChan 通知主循环退出
	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start(ctx)
	}()

	exitCode := 0

	// 等待信号、错误或正常完成
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Error("Service error", zap.Error(err))
			exitCode = 1
		}
		cancel()
	}

	// 停止服务
	if err := svc.Stop(ctx); err != nil {
		log.Error("Error stopping service", zap.Error(err))
	}

	log.Info("Service stopped")

	if exitCode != 0 {
		log.Sync()
		os.Exit(exitCode)
	}
}
