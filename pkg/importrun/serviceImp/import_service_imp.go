package serviceImp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskdata/entities"
	fieldsvc "taskdata/pkg/field/service"
	repo "taskdata/pkg/importrun/repository"
	"taskdata/pkg/importrun/service"
	"taskdata/pkg/logging"
	"taskdata/pkg/merge"
	"taskdata/pkg/metrics"
	pointsvc "taskdata/pkg/point/service"
	tasksvc "taskdata/pkg/task/service"
)

type ImportSvc struct {
	runs    repo.ImportRunRepository
	fields  fieldsvc.FieldService
	tasks   tasksvc.Service
	points  pointsvc.PointService
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewImportService(
	runs repo.ImportRunRepository,
	fields fieldsvc.FieldService,
	tasks tasksvc.Service,
	points pointsvc.PointService,
	m *metrics.Metrics,
	log *zap.Logger,
) *ImportSvc {
	return &ImportSvc{runs: runs, fields: fields, tasks: tasks, points: points, metrics: m, log: logging.OrNop(log)}
}

var _ service.ImportService = (*ImportSvc)(nil)

func (s *ImportSvc) Import(ix *merge.Index) (*entities.ImportRun, error) {
	run := &entities.ImportRun{
		ID:        uuid.New(),
		Sources:   []string{},
		Status:    service.StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	for _, src := range ix.Sources() {
		run.Sources = append(run.Sources, src.Tag)
	}
	if err := s.runs.Create(run); err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}
	log := s.log.With(zap.String("run", run.ID.String()))

	err := s.store(ix, run)
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = service.StatusDone
	if err != nil {
		run.Status = service.StatusFailed
		run.Error = err.Error()
	}
	if saveErr := s.runs.Save(run); saveErr != nil && err == nil {
		err = fmt.Errorf("save import run: %w", saveErr)
	}
	if err != nil {
		log.Error("import failed", zap.Error(err))
		return run, err
	}
	log.Info("import done",
		zap.Strings("sources", run.Sources),
		zap.Int("fields", run.Fields),
		zap.Int("tasks", run.Tasks),
		zap.Int("logs", run.Logs),
		zap.Int("points", run.Points),
		zap.Int("warnings", run.Warnings),
		zap.Int("truncated", run.Truncated),
		zap.Int("failed", run.Failed),
	)
	return run, nil
}

func (s *ImportSvc) store(ix *merge.Index, run *entities.ImportRun) error {
	n, err := s.fields.Save(ix, run.ID)
	if err != nil {
		return fmt.Errorf("store fields: %w", err)
	}
	run.Fields = n
	s.metrics.Stored("fields", n)

	if n, err = s.tasks.Save(ix, run.ID); err != nil {
		return fmt.Errorf("store tasks: %w", err)
	}
	run.Tasks = n
	s.metrics.Stored("tasks", n)

	st, err := s.points.Load(ix, run.ID)
	run.Logs, run.Points = st.Logs, st.Points
	run.Warnings, run.Truncated, run.Failed = st.Warnings, st.Truncated, st.Failed
	s.metrics.Stored("points", st.Points)
	if err != nil {
		return fmt.Errorf("store points: %w", err)
	}
	return nil
}

func (s *ImportSvc) Run(id uuid.UUID) (*entities.ImportRun, error) { return s.runs.FindByID(id) }

func (s *ImportSvc) Recent(limit int) ([]entities.ImportRun, error) { return s.runs.Recent(limit) }
