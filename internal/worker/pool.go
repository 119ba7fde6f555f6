package worker

import (
	"log/slog"

	"github.com/cuongbtq/video-downloader/internal/domain"
)

// run announces the pending job, waits for a free slot if downloads are capped
// and then processes the job
func (l *Launcher) run(job domain.Job, url string) {
	defer l.wg.Done()

	l.publish(job)

	if !l.acquire() {
		l.logger.Warn("Launcher stopped before job started",
			slog.String("job_id", job.ID),
		)
		l.fail(job.ID, "service shutting down")
		return
	}
	defer l.release()

	l.processJob(l.ctx, job.ID, url)
}

// acquire blocks until a download slot is free. It returns false once the
// launcher context is canceled.
func (l *Launcher) acquire() bool {
	if l.slots == nil {
		return l.ctx.Err() == nil
	}

	select {
	case l.slots <- struct{}{}:
		return true
	case <-l.ctx.Done():
		return false
	}
}

func (l *Launcher) release() {
	if l.slots != nil {
		<-l.slots
	}
}
