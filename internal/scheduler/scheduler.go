package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Job is a scheduled task bound to a cron expression.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler runs housekeeping jobs in the background.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	jobs   []Job
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.Local)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job. Jobs with an empty spec or nil function are ignored.
func (s *Scheduler) Add(job Job) {
	if job.Spec == "" || job.Run == nil {
		log.Printf("⚠️ Job %q has no schedule or function, skipping", job.Name)
		return
	}
	s.jobs = append(s.jobs, job)
}

func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		log.Println("⚠️ No jobs registered, scheduler will stay idle")
		return nil
	}
	for _, j := range s.jobs {
		job := j
		_, err := s.cron.AddFunc(job.Spec, func() {
			log.Printf("🕘 Triggered %s", job.Name)
			if err := job.Run(s.ctx); err != nil {
				log.Printf("❌ %s failed: %v", job.Name, err)
			}
		})
		if err != nil {
			return err
		}
		log.Printf("📅 Scheduled %s at %q", job.Name, job.Spec)
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
