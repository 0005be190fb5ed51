package job

import (
	"log"

	"github.com/robfig/cron/v3"
)

// StartScheduler 注册并启动定时任务
// 超期扫描每小时跑一次，保留期清理每天跑一次
func StartScheduler(staleSweep *StaleSweepJob, retention *RetentionJob) *cron.Cron {
	c := cron.New()

	if _, err := c.AddJob("@hourly", staleSweep); err != nil {
		log.Fatalf("注册超期扫描任务失败: %v", err)
	}
	if _, err := c.AddJob("@daily", retention); err != nil {
		log.Fatalf("注册保留期清理任务失败: %v", err)
	}

	c.Start()
	log.Println("[Scheduler] 定时任务已启动")
	return c
}
