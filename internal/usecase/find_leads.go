package usecase

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/classifier"
	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/metrics"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

// Progress floors reached at the end of each stage.
const (
	progressStarted    = 10
	progressExtracted  = 40
	progressClassified = 60
	progressMapped     = 80
	progressPersisted  = 90
)

// LeadFinder runs the lead pipeline once for a polled job.
type LeadFinder interface {
	Run(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict
}

// LeadScanner runs the lead pipeline once without a job record and reports
// the outcome to the caller.
type LeadScanner interface {
	Scan(ctx context.Context, query string, sources []string) (map[string]domain.Verdict, error)
}

var (
	_ LeadFinder  = (*FindLeadsUsecase)(nil)
	_ LeadScanner = (*FindLeadsUsecase)(nil)
)

// FindLeadsUsecase orchestrates extract → classify → map → persist and keeps
// the job record (when there is one) in step with the stages.
type FindLeadsUsecase struct {
	extractor  repository.Extractor
	classifier repository.Classifier
	leads      repository.LeadRepository
	sources    repository.SourceRepository
	logger     *zap.Logger
}

// NewFindLeadsUsecase creates a new FindLeadsUsecase.
func NewFindLeadsUsecase(
	extractor repository.Extractor,
	classifier repository.Classifier,
	leads repository.LeadRepository,
	sources repository.SourceRepository,
	logger *zap.Logger,
) *FindLeadsUsecase {
	return &FindLeadsUsecase{
		extractor:  extractor,
		classifier: classifier,
		leads:      leads,
		sources:    sources,
		logger:     logger,
	}
}

// Run executes the pipeline and returns the verdicts keyed by item id.
// It never returns an error: a failure is recorded on job and an empty map is returned.
func (uc *FindLeadsUsecase) Run(ctx context.Context, job *domain.SearchJob, query string, sources []string) map[string]domain.Verdict {
	verdicts, err := uc.execute(ctx, job, query, sources)
	if err != nil {
		return map[string]domain.Verdict{}
	}
	return verdicts
}

// Scan executes the pipeline for a run nobody polls. A cancelled run returns
// an error wrapping domain.ErrScanCancelled.
func (uc *FindLeadsUsecase) Scan(ctx context.Context, query string, sources []string) (map[string]domain.Verdict, error) {
	return uc.execute(ctx, nil, query, sources)
}

func (uc *FindLeadsUsecase) execute(ctx context.Context, job *domain.SearchJob, query string, sources []string) (verdicts map[string]domain.Verdict, err error) {
	trigger := "manual"
	jobID := ""
	if job == nil {
		trigger = "scheduled"
	} else {
		jobID = job.ID()
	}
	log := uc.logger.With(zap.String("job_id", jobID), zap.Strings("subreddits", sources))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Lead pipeline panic recovered", zap.Any("panic", r))
			uc.fail(job, fmt.Sprintf("internal error: %v", r))
			metrics.PipelineRunsTotal.WithLabelValues(trigger, "failed").Inc()
			verdicts, err = nil, fmt.Errorf("lead pipeline panic: %v", r)
		}
	}()

	verdicts, err = uc.run(ctx, job, query, sources, log)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Info("Lead pipeline cancelled", zap.Error(err))
			metrics.PipelineRunsTotal.WithLabelValues(trigger, "cancelled").Inc()
			return nil, fmt.Errorf("%w: %w", domain.ErrScanCancelled, ctxErr)
		}
		log.Error("Lead pipeline failed", zap.Error(err))
		uc.fail(job, err.Error())
		metrics.PipelineRunsTotal.WithLabelValues(trigger, "failed").Inc()
		return nil, err
	}

	metrics.PipelineRunsTotal.WithLabelValues(trigger, "completed").Inc()
	log.Info("Lead pipeline completed", zap.Int("leads", len(verdicts)))
	return verdicts, nil
}

func (uc *FindLeadsUsecase) run(ctx context.Context, job *domain.SearchJob, query string, sources []string, log *zap.Logger) (map[string]domain.Verdict, error) {
	if job != nil {
		job.UpdateStatus(domain.StatusProcessing)
		job.UpdateProgress(progressStarted)
	}

	// Stage 1: extraction
	var reporter repository.ProgressReporter
	if job != nil {
		reporter = job
	}
	start := time.Now()
	posts, comments, err := uc.extractor.Extract(ctx, sources, reporter)
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	log.Info("Extracted Reddit content", zap.Int("posts", len(posts)), zap.Int("comments", len(comments)))
	advance(job, progressExtracted, len(posts), len(comments), 0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: classification
	start = time.Now()
	result, err := uc.classifier.Classify(ctx, query, posts, comments)
	metrics.StageDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if result.Kind == domain.ClassificationError {
		return nil, fmt.Errorf("%w: %s", domain.ErrClassificationFailed, result.Reason)
	}
	if result.Kind == domain.ClassificationPlainText {
		log.Info("Model found no leads", zap.String("message", result.Text))
	}
	advance(job, progressClassified, 0, 0, 0)

	// Stage 3: mapping
	verdicts := classifier.MapLeads(result)
	for _, v := range verdicts {
		metrics.LeadsFound.WithLabelValues(string(v.Category)).Inc()
	}
	advance(job, progressMapped, 0, 0, len(verdicts))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: persistence
	start = time.Now()
	if err := uc.persist(ctx, verdicts, posts, comments, sources, log); err != nil {
		return nil, err
	}
	metrics.StageDuration.WithLabelValues("persist").Observe(time.Since(start).Seconds())
	advance(job, progressPersisted, 0, 0, 0)

	if job != nil {
		job.MarkCompleted()
	}
	return verdicts, nil
}

func (uc *FindLeadsUsecase) persist(
	ctx context.Context,
	verdicts map[string]domain.Verdict,
	posts []domain.Post,
	comments []domain.Comment,
	sources []string,
	log *zap.Logger,
) error {
	fallback := "unknown"
	if len(sources) > 0 {
		fallback = sources[0]
	}
	sc := domain.NewSourceContext(posts, comments, fallback)

	grouped := make(map[domain.Category][]*domain.Lead)
	for _, id := range slices.Sorted(maps.Keys(verdicts)) {
		lead := sc.BuildLead(id, verdicts[id])
		grouped[lead.Category] = append(grouped[lead.Category], lead)
	}

	for _, category := range domain.Categories {
		leads := grouped[category]
		if len(leads) == 0 {
			continue
		}
		inserted, err := uc.leads.UpsertLeads(ctx, leads, category)
		if err != nil {
			return fmt.Errorf("save %s leads: %w", category, err)
		}
		metrics.LeadsStored.Add(float64(inserted))
		log.Info("Saved leads",
			zap.String("category", string(category)),
			zap.Int("leads", len(leads)),
			zap.Int("inserted", inserted),
		)
	}

	for _, source := range sources {
		if err := uc.sources.Upsert(ctx, source); err != nil {
			return fmt.Errorf("save scanned subreddit %s: %w", source, err)
		}
	}
	return nil
}

// fail records msg on job unless it already completed.
func (uc *FindLeadsUsecase) fail(job *domain.SearchJob, msg string) {
	if job == nil || job.Status() == domain.StatusCompleted {
		return
	}
	job.SetError(msg)
}

// advance accumulates counters and raises progress to at least floor.
func advance(job *domain.SearchJob, floor, posts, comments, leads int) {
	if job == nil {
		return
	}
	if posts > 0 || comments > 0 || leads > 0 {
		job.AddResults(posts, comments, leads)
	}
	if job.Progress() < floor {
		job.UpdateProgress(floor)
	}
}
