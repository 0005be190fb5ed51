package job

import (
	"context"
	"log"
	"time"

	"gigbook/internal/config"
	"gigbook/internal/infrastructure/lock"
	"gigbook/internal/service"

	"github.com/go-redis/redis/v8"
)

// StaleSweepJob 超期预约扫描
// 由 cron 每小时触发，找出创建超过阈值仍未上传定金凭证的预约并逐条取消。
// 多实例部署时通过 Redis 咨询锁保证同一轮只有一个实例执行：
// 本轮跳过无害，重复执行才有害。
type StaleSweepJob struct {
	bookings *service.BookingService
	rdb      *redis.Client // 为 nil 时不加咨询锁（单实例 / 测试）
	cfg      *config.Config
}

func NewStaleSweepJob(bookings *service.BookingService, rdb *redis.Client, cfg *config.Config) *StaleSweepJob {
	return &StaleSweepJob{bookings: bookings, rdb: rdb, cfg: cfg}
}

// Run 实现 cron.Job
func (j *StaleSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if j.rdb != nil {
		sweepLock := lock.NewSweepLock(j.rdb, "stale_booking", 10*time.Minute)
		ok, err := sweepLock.TryLock(ctx)
		if err != nil {
			log.Printf("[StaleSweepJob] 获取咨询锁失败: %v", err)
			return
		}
		if !ok {
			log.Println("[StaleSweepJob] 其他实例正在执行，本轮跳过")
			return
		}
		defer sweepLock.Unlock(ctx)
	}

	cancelled, failures := j.bookings.SweepStaleBookings(ctx, j.cfg.Business.StaleAfterHours)

	if cancelled == 0 && len(failures) == 0 {
		return
	}

	log.Printf("[StaleSweepJob] 本轮取消 %d 个超期预约，失败 %d 个", cancelled, len(failures))
	for _, err := range failures {
		log.Printf("[StaleSweepJob] %v", err)
	}
}
