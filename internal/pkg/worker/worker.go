package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrPoolClosed 工作池已停止接收任务
var ErrPoolClosed = errors.New("worker pool closed")

// Task 异步任务。Run 失败后按 backoff 重试，最多 MaxRetry 次
type Task struct {
	Name string
	Run  func(ctx context.Context) error
	// Done 最终结果回调（成功、重试耗尽或被丢弃），可为 nil
	Done func(err error)

	retry int
}

// Options 工作池参数
type Options struct {
	Workers     int
	QueueSize   int
	MaxRetry    int
	Backoff     time.Duration
	TaskTimeout time.Duration
}

// Stats 工作池统计
type Stats struct {
	Queued    int   `json:"queued"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Retried   int64 `json:"retried"`
}

// Pool 固定数量 worker 的任务池，带延迟重试
type Pool struct {
	opts  Options
	log   *zap.Logger
	tasks chan Task

	mu      sync.Mutex
	closed  bool
	started bool
	pending sync.WaitGroup
	workers sync.WaitGroup

	pendingN  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

func NewPool(opts Options, log *zap.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxRetry < 0 {
		opts.MaxRetry = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		opts:  opts,
		log:   log,
		tasks: make(chan Task, opts.QueueSize),
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	for i := 0; i < p.opts.Workers; i++ {
		p.workers.Add(1)
		go p.worker(i)
	}
	p.log.Info("worker pool started", zap.Int("workers", p.opts.Workers), zap.Int("queue_size", p.opts.QueueSize))
}

// Submit 非阻塞入队；队列已满或已停止时返回 false，调用方自行处理
func (p *Pool) Submit(task Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.tasks <- task:
		p.pending.Add(1)
		p.pendingN.Add(1)
		return true
	default:
		p.log.Warn("worker pool queue full", zap.String("task", task.Name))
		return false
	}
}

func (p *Pool) worker(id int) {
	defer p.workers.Done()
	for task := range p.tasks {
		p.process(id, task)
	}
}

func (p *Pool) process(id int, task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.TaskTimeout)
	err := task.Run(ctx)
	cancel()

	if err == nil {
		p.completed.Add(1)
		p.finish(task, nil)
		return
	}

	if task.retry < p.opts.MaxRetry {
		task.retry++
		p.retried.Add(1)
		delay := p.opts.Backoff * time.Duration(task.retry)
		p.log.Warn("task failed, retrying",
			zap.Int("worker", id),
			zap.String("task", task.Name),
			zap.Int("retry", task.retry),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		// 任务仍计入 pending，Stop 会等它结束后才关闭队列
		time.AfterFunc(delay, func() { p.tasks <- task })
		return
	}

	p.failed.Add(1)
	p.log.Error("task failed permanently",
		zap.Int("worker", id),
		zap.String("task", task.Name),
		zap.Int("retry", task.retry),
		zap.Error(err),
	)
	p.finish(task, err)
}

func (p *Pool) finish(task Task, err error) {
	if task.Done != nil {
		task.Done(err)
	}
	p.pendingN.Add(-1)
	p.pending.Done()
}

// Stop 停止接收新任务，等待已入队任务（含重试）全部结束
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true
	started := p.started
	p.mu.Unlock()

	if !started {
		p.Start()
	}

	drained := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(p.tasks)
		p.workers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.log.Info("worker pool stopped", zap.Int64("completed", p.completed.Load()), zap.Int64("failed", p.failed.Load()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) Stats() Stats {
	return Stats{
		Queued:    len(p.tasks),
		Pending:   p.pendingN.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Retried:   p.retried.Load(),
	}
}
