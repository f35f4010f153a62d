// Package service ties the project store to the valuation engine.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carllingstrom/AI-Delning-sub001/internal/config"
	"github.com/carllingstrom/AI-Delning-sub001/internal/metrics"
	"github.com/carllingstrom/AI-Delning-sub001/internal/project"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/finance"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/roi"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/scaling"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/validation"
	"go.uber.org/zap"
)

// ScaledImpactKey is the effects_data key a saved projection is stored under.
const ScaledImpactKey = "scaledImpact"

// ErrInvalidInput is returned for requests that fail boundary validation.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError carries per-field messages. It matches ErrInvalidInput
// with errors.Is.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Message)
	}
	return fmt.Sprintf("%s: %s (%d fields)", ErrInvalidInput, e.Message, len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

// Store is the subset of the project store the service needs.
type Store interface {
	Create(ctx context.Context, p *project.Project) error
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, limit, offset int) ([]project.Project, error)
	UpdateEffectsData(ctx context.Context, id string, fn func(current []byte) ([]byte, error)) error
}

// Service computes and persists valuations.
type Service struct {
	store      Store
	aggregator *roi.Aggregator
	engine     *scaling.Engine
	metrics    *metrics.Metrics
	logger     *zap.Logger
	strict     bool
	now        func() time.Time
}

// New creates a valuation service. metrics may be nil.
// If logger is nil, it will use a no-op logger to prevent panics.
func New(store Store, cfg config.ValuationConfig, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		aggregator: roi.NewAggregator(logger, cfg.StrictROI),
		engine: scaling.NewEngine(logger, scaling.Defaults{
			MaxROI:        cfg.MaxROI,
			MinCostPerOrg: cfg.MinCostPerOrg,
		}),
		metrics: m,
		logger:  logger,
		strict:  cfg.StrictROI,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewProject is the payload for creating a project.
type NewProject struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Budget      json.RawMessage `json:"budget,omitempty"`
	CostData    json.RawMessage `json:"costData,omitempty"`
	EffectsData json.RawMessage `json:"effectsData,omitempty"`
}

// CreateProject validates and stores a new project.
func (s *Service) CreateProject(ctx context.Context, in NewProject) (*project.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, invalid("project", validation.FieldErrors(err))
	}
	if _, err := model.DecodeCostEntries(in.CostData); err != nil {
		return nil, invalid("costData", map[string]string{"costData": err.Error()})
	}
	if _, err := model.DecodeEffectEntries(in.EffectsData); err != nil {
		return nil, invalid("effectsData", map[string]string{"effectsData": err.Error()})
	}

	p := &project.Project{
		Title:       in.Title,
		Budget:      budgetString(in.Budget),
		CostData:    compact(in.CostData),
		EffectsData: compact(in.EffectsData),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject returns one stored project.
func (s *Service) GetProject(ctx context.Context, id string) (*project.Project, error) {
	return s.store.Get(ctx, id)
}

// ListProjects returns a page of stored projects.
func (s *Service) ListProjects(ctx context.Context, limit, offset int) ([]project.Project, error) {
	return s.store.List(ctx, limit, offset)
}

// ComputeROI aggregates the stored effects of a project against its
// total investment.
func (s *Service) ComputeROI(ctx context.Context, projectID string) (roi.Metrics, error) {
	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return roi.Empty(), err
	}

	costs, effects, err := s.decode(p)
	if err != nil {
		s.metrics.ObserveValuation("roi", err)
		return roi.Empty(), err
	}

	m, err := s.aggregator.Aggregate(effects, finance.TotalInvestment(costs, p.Budget))
	s.metrics.ObserveValuation("roi", err)
	return m, err
}

// ComputeScaledImpact projects a project's ROI onto several organizations.
func (s *Service) ComputeScaledImpact(ctx context.Context, projectID string, input scaling.Input) (scaling.Result, error) {
	if err := validateScaling(input); err != nil {
		s.metrics.ObserveValuation("scaling", err)
		return scaling.Result{}, err
	}

	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return scaling.Result{}, err
	}

	costs, effects, err := s.decode(p)
	if err != nil {
		s.metrics.ObserveValuation("scaling", err)
		return scaling.Result{}, err
	}

	result, err := s.scale(costs, effects, p.Budget, input)
	s.metrics.ObserveValuation("scaling", err)
	if err != nil {
		return scaling.Result{}, err
	}

	s.logger.Debug("scaled impact computed for project",
		zap.String("op", "service.ComputeScaledImpact"),
		zap.String("projectId", projectID),
		zap.Int("warnings", len(result.Validation.Warnings)),
	)
	return result, nil
}

// SavedScaledImpact is the record merged into effects_data.
type SavedScaledImpact struct {
	Input   scaling.Input   `json:"input"`
	Result  json.RawMessage `json:"result"`
	SavedAt time.Time       `json:"savedAt"`
}

// SaveScaledImpact stores input and result under ScaledImpactKey in the
// project's effects_data. Every other key keeps its stored encoding.
func (s *Service) SaveScaledImpact(ctx context.Context, projectID string, input scaling.Input, result json.RawMessage) (SavedScaledImpact, error) {
	if err := validateScaling(input); err != nil {
		return SavedScaledImpact{}, err
	}
	trimmed := bytes.TrimSpace(result)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return SavedScaledImpact{}, invalid("result must be a JSON object", map[string]string{"result": "must be a JSON object"})
	}

	record := SavedScaledImpact{
		Input:   input,
		Result:  json.RawMessage(trimmed),
		SavedAt: s.now(),
	}

	err := s.store.UpdateEffectsData(ctx, projectID, func(current []byte) ([]byte, error) {
		return model.MergeMetadata(current, ScaledImpactKey, record)
	})
	if err != nil {
		return SavedScaledImpact{}, fmt.Errorf("failed to save scaled impact: %w", err)
	}

	s.logger.Info("scaled impact saved",
		zap.String("op", "service.SaveScaledImpact"),
		zap.String("projectId", projectID),
	)
	return record, nil
}

// CalculationRequest values a project that is not stored.
type CalculationRequest struct {
	Budget      interface{}         `json:"budget" yaml:"budget"`
	CostEntries []model.CostEntry   `json:"costEntries" yaml:"costEntries"`
	Effects     []model.EffectEntry `json:"effects" yaml:"effects"`
	Scaling     *scaling.Input      `json:"scaling,omitempty" yaml:"scaling"`
}

// CalculationResult is the ROI report and, when scaling was requested, the
// scaled projection.
type CalculationResult struct {
	TotalInvestment float64         `json:"totalInvestment"`
	ROI             roi.Metrics     `json:"roi"`
	Scaled          *scaling.Result `json:"scaled,omitempty"`
}

// CalculateStateless runs the full valuation without a project lookup.
func (s *Service) CalculateStateless(ctx context.Context, req CalculationRequest) (CalculationResult, error) {
	if err := ctx.Err(); err != nil {
		return CalculationResult{}, err
	}
	if req.Scaling != nil {
		if err := validateScaling(*req.Scaling); err != nil {
			return CalculationResult{}, err
		}
	}

	investment := finance.TotalInvestment(req.CostEntries, req.Budget)
	base, err := s.aggregator.Aggregate(req.Effects, investment)
	s.metrics.ObserveValuation("roi", err)
	if err != nil {
		return CalculationResult{}, err
	}

	out := CalculationResult{TotalInvestment: investment, ROI: base}
	if req.Scaling != nil {
		result := s.engine.Compute(base, req.CostEntries, req.Budget, *req.Scaling)
		s.metrics.ObserveValuation("scaling", nil)
		s.metrics.AddScalingWarnings(len(result.Validation.Warnings))
		out.Scaled = &result
	}
	return out, nil
}

func (s *Service) scale(costs []model.CostEntry, effects []model.EffectEntry, budget string, input scaling.Input) (scaling.Result, error) {
	base, err := s.aggregator.Aggregate(effects, finance.TotalInvestment(costs, budget))
	if err != nil {
		return scaling.Result{}, err
	}
	result := s.engine.Compute(base, costs, budget, input)
	s.metrics.AddScalingWarnings(len(result.Validation.Warnings))
	return result, nil
}

// decode reads the stored reports. Undecodable data is an error in strict
// mode and an empty report otherwise.
func (s *Service) decode(p *project.Project) ([]model.CostEntry, []model.EffectEntry, error) {
	costs, costErr := p.CostEntries()
	effects, effectErr := p.EffectEntries()
	err := errors.Join(costErr, effectErr)
	if err == nil {
		return costs, effects, nil
	}

	s.logger.Warn("stored project data could not be decoded",
		zap.String("op", "service.decode"),
		zap.String("projectId", p.ID),
		zap.Bool("strict", s.strict),
		zap.Error(err),
	)
	if s.strict {
		return nil, nil, fmt.Errorf("%w: %w", roi.ErrAggregation, err)
	}
	if costErr != nil {
		costs = nil
	}
	if effectErr != nil {
		effects = nil
	}
	return costs, effects, nil
}

func validateScaling(input scaling.Input) error {
	if err := validation.Struct(input); err != nil {
		return invalid("scaling input", validation.FieldErrors(err))
	}
	return nil
}

// budgetString keeps a JSON string budget verbatim and stores numbers in
// their literal form.
func budgetString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func compact(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
