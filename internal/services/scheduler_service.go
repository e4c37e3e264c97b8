package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"todoboard/internal/models"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleDaily registers a job at the given HH:MM.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

func (s *SchedulerService) Entries() int {
	return len(s.cron.Entries())
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

const digestListLimit = 10

// DigestMessage summarizes the board: counts plus the open tasks, oldest first.
func DigestMessage(tasks []models.Task, now time.Time) Message {
	sum := models.Summarize(tasks)

	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d | To do: %d | Doing: %d | Done: %d\n", sum.Total, sum.Todo, sum.Doing, sum.Done)

	open := make([]models.Task, 0, sum.Todo+sum.Doing)
	for _, t := range tasks {
		if t.Status != models.StatusDone {
			open = append(open, t)
		}
	}
	NewListViewBuilder("en").Sort(open, SortCreatedAsc)

	if len(open) == 0 {
		b.WriteString("\nNothing open. Nice work!")
	} else {
		b.WriteString("\nOpen tasks:\n")
		for i, t := range open {
			if i == digestListLimit {
				fmt.Fprintf(&b, "... and %d more\n", len(open)-digestListLimit)
				break
			}
			fmt.Fprintf(&b, "- [%s] %s\n", t.Status.Label(), t.Title)
		}
	}

	return Message{
		Subject: "Daily digest " + now.Format("2006/01/02"),
		Body:    strings.TrimRight(b.String(), "\n"),
	}
}

// NewDigestJob builds the cron callback that sends the digest.
func NewDigestJob(tasks TaskService, n Notifier, now func() time.Time) func() {
	if now == nil {
		now = time.Now
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*notifyTimeout)
		defer cancel()

		list, err := tasks.List(ctx)
		if err != nil {
			log.Printf("[digest][err] list: %v", err)
			return
		}
		if err := n.Notify(ctx, DigestMessage(list, now())); err != nil {
			log.Printf("[digest][err] notify: %v", err)
			return
		}
		log.Printf("[digest] sent tasks=%d", len(list))
	}
}
