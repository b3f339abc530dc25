package worker

import (
	"context"
	"errors"
	"time"

	"wechat_gateway/internal/wechat"
	"wechat_gateway/pkg/logger"

	"go.uber.org/zap"
)

// WatchTask 待确认支付结果的订单
type WatchTask struct {
	OutTradeNo string
	Attempt    int // 已查询次数
}

// OrderChecker 订单状态查询依赖
type OrderChecker interface {
	QueryOrder(ctx context.Context, outTradeNo, transactionID string) error
}

// WatcherPool 订单状态轮询池
// 统一下单后由前端完成确认支付，服务端只能轮询 orderquery 获知终态
type WatcherPool struct {
	TaskQueue   chan WatchTask
	RetryQueue  chan WatchTask // 重试队列
	Checker     OrderChecker
	WorkerNum   int
	MaxAttempts int           // 单笔订单最多查询次数
	Interval    time.Duration // 两次查询的间隔
}

func NewWatcherPool(checker OrderChecker, workerNum, bufferSize int) *WatcherPool {
	return &WatcherPool{
		TaskQueue:   make(chan WatchTask, bufferSize),
		RetryQueue:  make(chan WatchTask, bufferSize/2),
		Checker:     checker,
		WorkerNum:   workerNum,
		MaxAttempts: 6,
		Interval:    10 * time.Second,
	}
}

func (p *WatcherPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	logger.L().Info("order watcher pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WatcherPool) worker(id int) {
	for task := range p.TaskQueue {
		// 给用户留出确认支付的时间窗
		time.Sleep(p.Interval)

		if err := p.check(task); err != nil {
			var verr *wechat.ValidationError
			if errors.As(err, &verr) {
				// 参数类错误重试也不会成功
				p.logAbandoned(task, err)
				continue
			}

			// 未达到最大查询次数，加入重试队列
			if task.Attempt < p.MaxAttempts {
				task.Attempt++
				select {
				case p.RetryQueue <- task:
				default:
					logger.L().Warn("retry queue full, watch task dropped",
						zap.String("out_trade_no", task.OutTradeNo))
					p.logAbandoned(task, err)
				}
			} else {
				p.logAbandoned(task, err)
			}
		}
	}
}

func (p *WatcherPool) retryWorker() {
	for task := range p.RetryQueue {
		// 重新加入主队列
		select {
		case p.TaskQueue <- task:
		default:
			logger.L().Warn("watch queue full, task dropped",
				zap.String("out_trade_no", task.OutTradeNo))
			p.logAbandoned(task, nil)
		}
	}
}

func (p *WatcherPool) check(task WatchTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := p.Checker.QueryOrder(ctx, task.OutTradeNo, ""); err != nil {
		return err
	}

	logger.L().Info("order paid",
		zap.String("out_trade_no", task.OutTradeNo),
		zap.Int("attempt", task.Attempt))
	return nil
}

func (p *WatcherPool) logAbandoned(task WatchTask, err error) {
	// 到此为止仍未支付的订单交由对账/回调兜底
	logger.L().Info("order watch finished without payment",
		zap.String("out_trade_no", task.OutTradeNo),
		zap.Int("attempts", task.Attempt),
		zap.Error(err))
}

// Watch 登记一笔待确认订单
func (p *WatcherPool) Watch(outTradeNo string) {
	select {
	case p.TaskQueue <- WatchTask{OutTradeNo: outTradeNo}:
		// 任务入队成功
	default:
		logger.L().Warn("watch queue full, order not tracked",
			zap.String("out_trade_no", outTradeNo))
	}
}
