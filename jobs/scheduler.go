// Package jobs, periyodik arka plan temizlik işleri.
//
// Zamanlama robfig/cron ile yapılır; her iş config'teki cron ifadesiyle
// ("@hourly", "*/15 * * * *") kaydedilir. Aynı iş hâlâ çalışıyorsa yeni tetikleme
// atlanır, panic iş goroutine'inde yakalanır — scheduler ayakta kalır.
//
// Goroutine yaşam döngüsü: main.go'da Start, graceful shutdown'da Stop.
package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// runTimeout, tek bir iş çalıştırmasının üst süresi.
const runTimeout = 2 * time.Minute

// Task, zamanlanmış bir iş. Run, etkilenen kayıt sayısını döner (log için).
type Task struct {
	Name string
	Spec string
	Run  func(ctx context.Context) (int64, error)
}

// Scheduler, Task'ları cron üzerinde çalıştırır.
type Scheduler struct {
	cron  *cron.Cron
	tasks map[string]Task
}

// specParser, 5 alanlı standart ifadeler + "@hourly" / "@every 10m" descriptor'ları.
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewScheduler, task'ları kaydeder. Geçersiz cron ifadesi veya tekrar eden
// isim varsa hata döner — yanlış config sessizce yutulmaz.
func NewScheduler(tasks ...Task) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.New(os.Stderr, "[jobs] ", log.LstdFlags))

	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(specParser),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		tasks: make(map[string]Task, len(tasks)),
	}

	for _, t := range tasks {
		if _, dup := s.tasks[t.Name]; dup {
			return nil, fmt.Errorf("duplicate job name %q", t.Name)
		}
		if _, err := s.cron.AddFunc(t.Spec, func() { s.execute(t) }); err != nil {
			return nil, fmt.Errorf("invalid schedule %q for job %s: %w", t.Spec, t.Name, err)
		}
		s.tasks[t.Name] = t
	}

	return s, nil
}

// Start, cron goroutine'ini başlatır.
func (s *Scheduler) Start() {
	log.Printf("[jobs] starting %d job(s)", len(s.tasks))
	s.cron.Start()
}

// Stop, yeni tetiklemeleri durdurur ve çalışan işlerin bitmesini ctx süresince bekler.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Println("[jobs] stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs did not finish: %w", ctx.Err())
	}
}

// RunNow, işi zamanlamayı beklemeden senkron çalıştırır (CLI ve testler için).
func (s *Scheduler) RunNow(ctx context.Context, name string) (int64, error) {
	t, ok := s.tasks[name]
	if !ok {
		return 0, fmt.Errorf("unknown job %q", name)
	}
	return t.Run(ctx)
}

func (s *Scheduler) execute(t Task) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	n, err := t.Run(ctx)
	if err != nil {
		log.Printf("[jobs] %s failed: %v", t.Name, err)
		return
	}
	if n > 0 {
		log.Printf("[jobs] %s affected %d row(s) in %s", t.Name, n, time.Since(start).Round(time.Millisecond))
	}
}
