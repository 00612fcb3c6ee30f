// Package scheduler runs the weekly professor digest. Every tick it
// aggregates cohort analytics and queues one summary email per professor.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/helix-ai/backend/internal/analytics"
	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/jobs"
	"github.com/helix-ai/backend/internal/store"
	"github.com/helix-ai/backend/internal/worker"
)

const digestWorkers = 4

// Mailer is the slice of the job queue the scheduler needs.
type Mailer interface {
	EnqueueEmail(p jobs.EmailPayload, queue string) error
}

type Scheduler struct {
	scheduler  *gocron.Scheduler
	store      store.Store
	aggregator *analytics.Aggregator
	mailer     Mailer
	logger     *slog.Logger
}

func New(s store.Store, aggregator *analytics.Aggregator, mailer Mailer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		store:      s,
		aggregator: aggregator,
		mailer:     mailer,
		logger:     logger,
	}
}

// Start schedules the digest with the given cron expression and runs the
// scheduler in the background.
func (s *Scheduler) Start(cronExpr string) error {
	if _, err := s.scheduler.Cron(cronExpr).Do(s.runDigest); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("digest scheduler started", "cron", cronExpr)
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runDigest() {
	if err := s.RunDigestOnce(context.Background()); err != nil {
		s.logger.Error("weekly digest failed", "error", err)
	}
}

// RunDigestOnce builds and queues the digest immediately. Exposed so the
// admin API can trigger it outside the schedule.
func (s *Scheduler) RunDigestOnce(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var students, professors []*auth.User
	for _, u := range users {
		switch u.Role {
		case auth.RoleProfessor, auth.RoleAdmin:
			professors = append(professors, u)
		case auth.RoleStudent:
			students = append(students, u)
		}
	}
	if len(professors) == 0 {
		s.logger.Info("digest skipped, no professor accounts")
		return nil
	}

	now := time.Now().UTC()

	// Aggregate each student's history concurrently; analytics over a
	// semester of submissions is the slow part of the digest.
	tasks := make(map[string]worker.Task[analytics.UserStats], len(students))
	for _, student := range students {
		userID := student.ID
		tasks[userID] = func() analytics.UserStats {
			subs, err := s.store.ListSubmissionsByUser(ctx, userID)
			if err != nil {
				s.logger.Error("digest aggregation failed for user", "user_id", userID, "error", err)
				return analytics.UserStats{UserID: userID}
			}
			return s.aggregator.UserStats(userID, subs, now)
		}
	}
	statsByUser := worker.Collect(digestWorkers, tasks)

	body := s.buildBody(students, statsByUser, now)
	for _, prof := range professors {
		err := s.mailer.EnqueueEmail(jobs.EmailPayload{
			To:      prof.Email,
			Subject: fmt.Sprintf("Resumo semanal da turma — %s", now.Format("02/01/2006")),
			Body:    body,
			Kind:    "digest",
		}, jobs.QueueDefault)
		if err != nil {
			s.logger.Error("failed to queue digest email", "to", prof.Email, "error", err)
		}
	}

	// Flagged students also get their own alert on the critical queue so
	// the notice survives even when the digest is skimmed.
	if attention := attentionNames(students, statsByUser); len(attention) > 0 {
		alert := fmt.Sprintf("Alunos com baixo aproveitamento ou pouca prática nesta semana: %s.\n",
			strings.Join(attention, ", "))
		for _, prof := range professors {
			err := s.mailer.EnqueueEmail(jobs.EmailPayload{
				To:      prof.Email,
				Subject: "Alunos precisando de atenção",
				Body:    alert,
				Kind:    "alert",
			}, jobs.QueueCritical)
			if err != nil {
				s.logger.Error("failed to queue attention alert", "to", prof.Email, "error", err)
			}
		}
	}
	return nil
}

// rankedStats sorts stats by points, ties broken by user ID for a stable
// ordering between runs.
func rankedStats(statsByUser map[string]analytics.UserStats) []analytics.UserStats {
	ranked := make([]analytics.UserStats, 0, len(statsByUser))
	for _, st := range statsByUser {
		ranked = append(ranked, st)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	return ranked
}

// attentionNames lists students flagged for low accuracy or too little
// practice, in ranking order.
func attentionNames(students []*auth.User, statsByUser map[string]analytics.UserStats) []string {
	nameOf := make(map[string]string, len(students))
	for _, st := range students {
		nameOf[st.ID] = st.Name
	}
	var names []string
	for _, st := range rankedStats(statsByUser) {
		if st.AccuracyPercent < 50 || st.GradedSubmissions < 3 {
			names = append(names, nameOf[st.UserID])
		}
	}
	return names
}

func (s *Scheduler) buildBody(students []*auth.User, statsByUser map[string]analytics.UserStats, now time.Time) string {
	nameOf := make(map[string]string, len(students))
	for _, st := range students {
		nameOf[st.ID] = st.Name
	}

	ranked := rankedStats(statsByUser)

	var b strings.Builder
	fmt.Fprintf(&b, "Resumo semanal — %s\n\n", now.Format("02/01/2006"))
	fmt.Fprintf(&b, "Alunos ativos: %d\n\n", len(ranked))
	b.WriteString("Ranking por pontos:\n")
	for i, st := range ranked {
		fmt.Fprintf(&b, "%2d. %s — %.1f pontos, %.0f%% de acerto (%d respostas)\n",
			i+1, nameOf[st.UserID], st.TotalPoints, st.AccuracyPercent, st.GradedSubmissions)
	}

	if attention := attentionNames(students, statsByUser); len(attention) > 0 {
		b.WriteString("\nPrecisam de atenção: ")
		b.WriteString(strings.Join(attention, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
