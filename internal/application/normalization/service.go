// Package normalization is the application service behind every surface of
// the patent normalizer: it owns the sealed schema registry and the claim
// parser, and adds batching, metrics and logging around them.
package normalization

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/patent-normalizer/internal/domain/claims"
	"github.com/turtacn/patent-normalizer/internal/domain/publicsearch"
	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/htmltext"
	"github.com/turtacn/patent-normalizer/pkg/matchguard"
	"github.com/turtacn/patent-normalizer/pkg/types/common"
)

// Config tunes the service.
type Config struct {
	// DefaultSchema is used when a caller names no schema.
	DefaultSchema string
	// Workers bounds concurrent record normalization within one batch.
	Workers int
	// Guard bounds every regex evaluation.
	Guard matchguard.Guard
	// FailFast aborts a batch on the first record error.
	FailFast bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		DefaultSchema: publicsearch.Document,
		Workers:       4,
		Guard:         matchguard.Default,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Result types
// ─────────────────────────────────────────────────────────────────────────────

// BatchItemError is the failure of one record in a batch.
type BatchItemError struct {
	Index int
	Err   error
}

// BatchResult holds index-aligned results; failed records are nil in
// Results and listed in Errors.
type BatchResult struct {
	BatchID string
	Results []*schema.Result
	Errors  []BatchItemError
}

// ClaimsResult is the output of ParseClaims.
type ClaimsResult struct {
	Claims      []claims.Claim         `json:"claims"`
	Diagnostics []claims.Diagnostic    `json:"diagnostics,omitempty"`
	Tree        *claims.DependencyTree `json:"tree"`
}

// SchemaInfo describes one registered schema.
type SchemaInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Fields  []string `json:"fields,omitempty"`
	Default bool     `json:"default,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service normalizes records and parses claims.  It is safe for concurrent
// use.
type Service struct {
	cfg      Config
	registry *schema.Registry
	parser   *claims.Parser
	logger   logging.Logger
	metrics  *prometheus.AppMetrics

	schemasOnce sync.Once
	schemas     []SchemaInfo
}

// NewService builds the built-in registry (the public-search document
// schemas), seals it and returns a ready service.  metrics may be nil.
func NewService(cfg Config, logger logging.Logger, metrics *prometheus.AppMetrics) (*Service, error) {
	cfg = withDefaults(cfg)
	parser := claims.NewParser(claims.WithGuard(cfg.Guard))

	reg := schema.NewRegistry()
	if err := publicsearch.Register(reg, parser); err != nil {
		return nil, err
	}
	if err := reg.Seal(); err != nil {
		return nil, err
	}
	return NewServiceFromRegistry(reg, parser, cfg, logger, metrics)
}

// NewServiceFromRegistry wraps an already sealed registry.
func NewServiceFromRegistry(reg *schema.Registry, parser *claims.Parser, cfg Config, logger logging.Logger, metrics *prometheus.AppMetrics) (*Service, error) {
	cfg = withDefaults(cfg)
	if reg == nil || !reg.Sealed() {
		return nil, errors.Internal("schema registry must be sealed")
	}
	if _, err := reg.Composite(cfg.DefaultSchema); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "default schema is not a registered composite").
			WithDetail(cfg.DefaultSchema)
	}
	if parser == nil {
		parser = claims.NewParser(claims.WithGuard(cfg.Guard))
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &Service{
		cfg:      cfg,
		registry: reg,
		parser:   parser,
		logger:   logger.Named("normalization"),
		metrics:  metrics,
	}
	if metrics != nil {
		metrics.SchemasRegistered.WithLabelValues().Set(float64(len(reg.Names())))
	}
	s.logger.Info("normalization service ready",
		logging.Int("schemas", len(reg.Names())),
		logging.String("default_schema", cfg.DefaultSchema),
		logging.Int("workers", cfg.Workers))
	return s, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.DefaultSchema == "" {
		cfg.DefaultSchema = def.DefaultSchema
	}
	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}
	if cfg.Guard.Timeout <= 0 {
		cfg.Guard.Timeout = def.Guard.Timeout
	}
	if cfg.Guard.MaxInput <= 0 {
		cfg.Guard.MaxInput = def.Guard.MaxInput
	}
	if cfg.Guard.TimedFrom <= 0 {
		cfg.Guard.TimedFrom = def.Guard.TimedFrom
	}
	return cfg
}

// DefaultSchema returns the name used when a caller names no schema.
func (s *Service) DefaultSchema() string { return s.cfg.DefaultSchema }

// Registry exposes the sealed registry.
func (s *Service) Registry() *schema.Registry { return s.registry }

func (s *Service) resolve(name string) (string, *schema.Composite, error) {
	if name == "" {
		name = s.cfg.DefaultSchema
	}
	c, err := s.registry.Composite(name)
	return name, c, err
}

// Normalize parses one decoded record with the named composite schema; an
// empty name selects the default.  Field-level failures are in the
// Result's Issues; the error covers unknown schemas, non-mapping input and
// cancellation.
func (s *Service) Normalize(ctx context.Context, schemaName string, raw any) (*schema.Result, error) {
	name, c, err := s.resolve(schemaName)
	if err != nil {
		prometheus.RecordError(s.metrics, "normalize", errors.GetCode(err).String())
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "normalization cancelled")
	}

	start := time.Now()
	res, err := c.Parse(raw, schema.WithMatchGuard(s.cfg.Guard))
	d := time.Since(start)

	var counts map[string]int
	issues := 0
	if res != nil {
		issues = len(res.Issues)
		if issues > 0 {
			counts = make(map[string]int)
			for kind, n := range res.IssueCounts() {
				counts[string(kind)] = n
			}
		}
	}
	prometheus.RecordNormalization(s.metrics, name, d, counts, err)
	logging.LogNormalization(s.logger.WithContext(ctx), name, d, issues, err)
	if err != nil {
		prometheus.RecordError(s.metrics, "normalize", errors.GetCode(err).String())
		return nil, err
	}
	return res, nil
}

// NormalizeJSON decodes data and normalizes it.
func (s *Service) NormalizeJSON(ctx context.Context, schemaName string, data []byte) (*schema.Result, error) {
	raw, err := DecodeRecord(data)
	if err != nil {
		prometheus.RecordError(s.metrics, "decode", errors.GetCode(err).String())
		return nil, err
	}
	return s.Normalize(ctx, schemaName, raw)
}

// NormalizeBatch normalizes records concurrently, at most Workers at a
// time.  Results keep the input order.  Without FailFast a failing record
// is reported in BatchResult.Errors and the rest of the batch still runs;
// with FailFast the first failure cancels the batch and is returned.
func (s *Service) NormalizeBatch(ctx context.Context, schemaName string, records []any) (*BatchResult, error) {
	name, _, err := s.resolve(schemaName)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		BatchID: common.GenerateID("batch"),
		Results: make([]*schema.Result, len(records)),
	}
	prometheus.RecordBatch(s.metrics, name, len(records))
	start := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range records {
		i := i
		g.Go(func() error {
			res, err := s.Normalize(gctx, name, records[i])
			if err == nil {
				batch.Results[i] = res
				return nil
			}
			if s.cfg.FailFast {
				return errors.Wrap(err, errors.CodeBatchFailed, "batch normalization failed").
					WithDetail(fmt.Sprintf("batch=%s index=%d", batch.BatchID, i))
			}
			mu.Lock()
			batch.Errors = append(batch.Errors, BatchItemError{Index: i, Err: err})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("batch aborted",
			logging.String("batch_id", batch.BatchID),
			logging.String(logging.FieldSchema, name),
			logging.Err(err))
		return nil, err
	}
	sort.Slice(batch.Errors, func(a, b int) bool { return batch.Errors[a].Index < batch.Errors[b].Index })

	logging.LogOperationDuration(s.logger.WithContext(ctx), "normalize_batch", start,
		logging.String("batch_id", batch.BatchID),
		logging.String(logging.FieldSchema, name),
		logging.Int("records", len(records)),
		logging.Int("failed", len(batch.Errors)))
	return batch, nil
}

// ParseClaims parses claim text.  HTML input is rendered to text first.
func (s *Service) ParseClaims(ctx context.Context, text string) (*ClaimsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "claim parsing cancelled")
	}
	if htmltext.LooksLikeHTML(text) {
		text = htmltext.ToText(text)
	}

	res, err := s.parser.Parse(text)
	if err != nil {
		prometheus.RecordClaimsParse(s.metrics, 0, 0, err)
		s.logger.WithContext(ctx).Warn("claim parsing failed", logging.Err(err))
		return nil, err
	}
	prometheus.RecordClaimsParse(s.metrics, len(res.Claims), len(res.Diagnostics), nil)
	if len(res.Diagnostics) > 0 {
		s.logger.WithContext(ctx).Debug("claims parsed with diagnostics",
			logging.Int("claims", len(res.Claims)),
			logging.Int("diagnostics", len(res.Diagnostics)))
	}
	return &ClaimsResult{
		Claims:      res.Claims,
		Diagnostics: res.Diagnostics,
		Tree:        res.Tree(),
	}, nil
}

// Schemas lists the registered schemas in name order.
func (s *Service) Schemas() []SchemaInfo {
	s.schemasOnce.Do(func() {
		for _, name := range s.registry.Names() {
			sc, err := s.registry.Lookup(name)
			if err != nil {
				continue
			}
			info := SchemaInfo{
				Name:    name,
				Kind:    schema.KindOf(sc),
				Default: name == s.cfg.DefaultSchema,
			}
			if c, ok := sc.(*schema.Composite); ok {
				info.Fields = c.Keys()
			}
			s.schemas = append(s.schemas, info)
		}
	})
	return append([]SchemaInfo(nil), s.schemas...)
}

//Personal.AI order the ending
