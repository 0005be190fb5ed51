package job

import (
	"context"
	"log"
	"time"

	"gigbook/internal/config"
	"gigbook/internal/infrastructure/lock"
	"gigbook/internal/repository"

	"github.com/go-redis/redis/v8"
)

// RetentionJob 保留期清理
// 由 cron 每天触发：删除已读且超过 30 天的通知、超过 90 天的非安全类审计记录。
// 零行删除不是错误；两类清理相互独立，一类失败不影响另一类。
type RetentionJob struct {
	audit         repository.AuditStore
	notifications repository.NotificationStore
	rdb           *redis.Client
	cfg           *config.Config
}

func NewRetentionJob(audit repository.AuditStore, notifications repository.NotificationStore, rdb *redis.Client, cfg *config.Config) *RetentionJob {
	return &RetentionJob{audit: audit, notifications: notifications, rdb: rdb, cfg: cfg}
}

// Run 实现 cron.Job
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if j.rdb != nil {
		sweepLock := lock.NewSweepLock(j.rdb, "retention", 10*time.Minute)
		ok, err := sweepLock.TryLock(ctx)
		if err != nil {
			log.Printf("[RetentionJob] 获取咨询锁失败: %v", err)
			return
		}
		if !ok {
			log.Println("[RetentionJob] 其他实例正在执行，本轮跳过")
			return
		}
		defer sweepLock.Unlock(ctx)
	}

	notifDeleted, notifErr := j.CleanNotifications(ctx)
	auditDeleted, auditErr := j.CleanAuditLogs(ctx)

	log.Printf("[RetentionJob] 清理完成: 通知 %d 条, 审计 %d 条", notifDeleted, auditDeleted)
	if notifErr != nil {
		log.Printf("[RetentionJob] 清理通知失败: %v", notifErr)
	}
	if auditErr != nil {
		log.Printf("[RetentionJob] 清理审计记录失败: %v", auditErr)
	}
}

// CleanNotifications 删除已读且超期的通知，返回删除行数
func (j *RetentionJob) CleanNotifications(ctx context.Context) (int64, error) {
	before := time.Now().AddDate(0, 0, -j.cfg.Business.NotificationRetentionDays)
	return j.notifications.DeleteReadNotificationsBefore(ctx, before)
}

// CleanAuditLogs 删除超期的非安全类审计记录，返回删除行数
func (j *RetentionJob) CleanAuditLogs(ctx context.Context) (int64, error) {
	before := time.Now().AddDate(0, 0, -j.cfg.Business.AuditRetentionDays)
	return j.audit.DeleteExpiredAuditLogs(ctx, before)
}
