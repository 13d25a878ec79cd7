package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"collabtrack/internal/pkg/config"
)

const defaultCleanupSchedule = "0 */5 * * * *" // 每5分钟

// Sweeper 可按空闲时长清理的内存状态, 例如登录限流器
type Sweeper interface {
	Cleanup(idle time.Duration) int
}

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	limiter       Sweeper
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(logger *zap.Logger, limiter Sweeper) *Scheduler {
	// 创建 cron 实例（带秒级支持）
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		limiter:       limiter,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start(cfg *config.RateLimitConfig) error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	if s.limiter != nil {
		// cron 表达式格式: 秒 分 时 日 月 周
		cronExpr := cfg.CleanupSchedule
		if cronExpr == "" {
			cronExpr = defaultCleanupSchedule
			log.Warnf("未配置auth.rate_limit.cleanup_schedule，使用默认值 %s", cronExpr)
		}
		idle := time.Duration(cfg.IdleTTL) * time.Second

		entryID, err := s.cron.AddFunc(cronExpr, func() {
			s.CleanupLimiter(idle)
		})
		if err != nil {
			log.Errorf("注册限流清理任务 %s 失败: %v", cronExpr, err)
			return err
		}

		s.cronSchedules["limiter_cleanup"] = entryID
		log.Infof("限流清理任务已注册: %s entry_id=%d", cronExpr, entryID)
	}

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// CleanupLimiter 清理空闲的限流记录, 也可手动触发
func (s *Scheduler) CleanupLimiter(idle time.Duration) int {
	if s.limiter == nil {
		return 0
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	removed := s.limiter.Cleanup(idle)
	if removed > 0 {
		s.logger.Debug("清理空闲限流记录", zap.Int("removed", removed))
	}
	return removed
}

// Entries 已注册的任务
func (s *Scheduler) Entries() map[string]cron.EntryID {
	return s.cronSchedules
}
