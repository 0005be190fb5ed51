package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gigbook/internal/config"
	"gigbook/internal/handler"
	"gigbook/internal/infrastructure/cache"
	"gigbook/internal/infrastructure/database"
	"gigbook/internal/infrastructure/mq"
	"gigbook/internal/infrastructure/sms"
	"gigbook/internal/job"
	"gigbook/internal/repository"
	"gigbook/internal/service"
	"gigbook/pkg/idgen"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig("config/config.yaml")

	// 初始化 ID 生成器
	idgen.Init(1)

	// 初始化 MySQL
	db := database.InitMySQL(&cfg.MySQL)

	// 初始化 Redis
	redisClient := cache.InitRedis(&cfg.Redis)

	// 初始化 Kafka
	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	// 组装存储层
	store := repository.NewStore(db)
	users := repository.NewUserRepository(db)
	audits := repository.NewAuditRepository(db)
	notifications := repository.NewNotificationRepository(db)
	denylist := repository.NewDenylistRepository(db)

	// 组装业务层，Twilio 未配置时降级为纯站内通知
	var transport service.Transport
	if cfg.Twilio.AccountSID != "" {
		transport = sms.NewTwilioTransport(&cfg.Twilio)
	}
	auditSvc := service.NewAuditService(audits)
	notifySvc := service.NewNotifyService(notifications, users, transport)
	denylistSvc := service.NewDenylistService(denylist)
	bookingSvc := service.NewBookingService(cfg, store, users, denylistSvc, auditSvc, notifySvc)
	authSvc := service.NewAuthService(cfg, users, denylistSvc, auditSvc)

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	outboxSender := job.NewOutboxSender(db, cfg)
	go outboxSender.Start(ctx)

	staleSweep := job.NewStaleSweepJob(bookingSvc, redisClient, cfg)
	retention := job.NewRetentionJob(audits, notifications, redisClient, cfg)
	scheduler := job.StartScheduler(staleSweep, retention)

	// 设置路由
	h := handler.NewHandler(authSvc, bookingSvc, notifications)
	router := handler.SetupRouter(h, cfg, redisClient)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 停止定时任务与后台任务
	schedCtx := scheduler.Stop()
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	// 等待进行中的定时任务收尾
	select {
	case <-schedCtx.Done():
	case <-time.After(5 * time.Second):
		log.Println("定时任务未在限期内结束")
	}

	log.Println("服务已退出")
}
