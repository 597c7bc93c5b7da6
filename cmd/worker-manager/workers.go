package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"cotiza-workers/internal/catalog"
	awsclients "cotiza-workers/internal/common/aws"
	"cotiza-workers/internal/common/camunda"
	"cotiza-workers/internal/common/config"
	"cotiza-workers/internal/common/database"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"

	// Catalog Workers (3)
	lic "cotiza-workers/internal/workers/catalog/load-insurance-quotes"
	lvc "cotiza-workers/internal/workers/catalog/load-vehicle-catalog"
	sv "cotiza-workers/internal/workers/catalog/search-vehicles"

	// Lead Workers (2)
	cl "cotiza-workers/internal/workers/leads/create-lead"
	sln "cotiza-workers/internal/workers/leads/send-lead-notification"

	// Recommendation Workers (2)
	ri "cotiza-workers/internal/workers/recommendation/rank-insurance"
	rv "cotiza-workers/internal/workers/recommendation/rank-vehicles"

	// Valuation & Wizard Workers (2)
	evv "cotiza-workers/internal/workers/valuation/estimate-vehicle-value"
	va "cotiza-workers/internal/workers/wizard/validate-answers"
)

// dependencies are the shared clients every handler is built from.
type dependencies struct {
	cfg     *config.Config
	pg      *database.PostgresClient
	redis   *database.RedisClient
	es      *database.ElasticsearchClient
	catalog *catalog.Store
	ses     *ses.Client
	sns     *sns.Client
	obs     *observability.Observability
	log     logger.Logger
}

func newNotificationClients(ctx context.Context, cfg *config.Config) (*ses.Client, *sns.Client, error) {
	return awsclients.NewNotificationClients(ctx, cfg.Notifications.AWS.Region)
}

// timeout is the configured job timeout of taskType, or def when unset.
func (d *dependencies) timeout(taskType string, def time.Duration) time.Duration {
	if ms := config.GetWorkerConfig(d.cfg, taskType).Timeout; ms > 0 {
		return config.GetDuration(ms)
	}
	return def
}

func orDefault(ms int, def time.Duration) time.Duration {
	if ms > 0 {
		return config.GetDuration(ms)
	}
	return def
}

// handlers builds every worker handler keyed by task type. Only enabled task
// types are built, so disabled workers need none of their clients.
func (d *dependencies) handlers() map[string]worker.JobHandler {
	cfg := d.cfg
	out := make(map[string]worker.JobHandler)
	enabled := func(taskType string) bool { return config.IsWorkerEnabled(cfg, taskType) }

	// --- 1. Wizard ---
	if enabled(va.TaskType) {
		c := va.LoadConfig()
		c.Timeout = d.timeout(va.TaskType, c.Timeout)
		out[va.TaskType] = va.NewHandler(c, d.obs, d.log).Handle
	}

	// --- 2. Recommendation ---
	if enabled(rv.TaskType) {
		c := rv.LoadConfig()
		c.Timeout = d.timeout(rv.TaskType, c.Timeout)
		c.Ranker = cfg.Ranking.VehicleRanker()
		if cfg.Ranking.MaxResults > 0 {
			c.MaxResults = cfg.Ranking.MaxResults
		}
		c.CacheTTL = orDefault(cfg.Ranking.CacheTTL, c.CacheTTL)
		c.SlowThreshold = orDefault(cfg.Ranking.SlowThreshold, c.SlowThreshold)
		out[rv.TaskType] = rv.NewHandler(c, d.catalog, d.redis.Client, d.obs, d.log).Handle
	}

	if enabled(ri.TaskType) {
		c := ri.LoadConfig()
		c.Timeout = d.timeout(ri.TaskType, c.Timeout)
		c.Ranker = cfg.Ranking.InsuranceRanker()
		if cfg.Ranking.MaxResults > 0 {
			c.MaxResults = cfg.Ranking.MaxResults
		}
		c.CacheTTL = orDefault(cfg.Ranking.CacheTTL, c.CacheTTL)
		c.SlowThreshold = orDefault(cfg.Ranking.SlowThreshold, c.SlowThreshold)
		out[ri.TaskType] = ri.NewHandler(c, d.catalog, d.redis.Client, d.obs, d.log).Handle
	}

	// --- 3. Catalog ---
	if enabled(lvc.TaskType) {
		c := lvc.LoadConfig()
		c.Timeout = d.timeout(lvc.TaskType, c.Timeout)
		out[lvc.TaskType] = lvc.NewHandler(c, d.catalog, d.obs, d.log).Handle
	}

	if enabled(lic.TaskType) {
		c := lic.LoadConfig()
		c.Timeout = d.timeout(lic.TaskType, c.Timeout)
		out[lic.TaskType] = lic.NewHandler(c, d.catalog, d.obs, d.log).Handle
	}

	if enabled(sv.TaskType) && d.es != nil {
		c := sv.LoadConfig()
		c.Timeout = d.timeout(sv.TaskType, c.Timeout)
		if d.es.Index != "" {
			c.Index = d.es.Index
		}
		out[sv.TaskType] = sv.NewHandler(c, d.es.Client, d.obs, d.log).Handle
	}

	// --- 4. Valuation ---
	if enabled(evv.TaskType) {
		c := evv.LoadConfig()
		c.Timeout = d.timeout(evv.TaskType, c.Timeout)
		if cfg.APIs.Valuation.BaseURL != "" {
			c.BaseURL = cfg.APIs.Valuation.BaseURL
		}
		c.APIKey = cfg.APIs.Valuation.APIKey
		c.RequestTimeout = orDefault(cfg.APIs.Valuation.Timeout, c.RequestTimeout)
		c.CacheTTL = orDefault(cfg.APIs.Valuation.CacheTTL, c.CacheTTL)
		out[evv.TaskType] = evv.NewHandler(c, d.catalog, d.redis.Client, d.obs, d.log).Handle
	}

	// --- 5. Leads ---
	if enabled(cl.TaskType) {
		c := cl.LoadConfig()
		c.Timeout = d.timeout(cl.TaskType, c.Timeout)
		out[cl.TaskType] = cl.NewHandler(c, d.pg.DB, d.obs, d.log).Handle
	}

	if enabled(sln.TaskType) && d.ses != nil && d.sns != nil {
		c := sln.LoadConfig()
		c.Timeout = d.timeout(sln.TaskType, c.Timeout)
		n := cfg.Notifications
		c.EmailEnabled = n.Email.Enabled
		c.SMSEnabled = n.SMS.Enabled
		if n.Email.FromEmail != "" {
			c.FromEmail = n.Email.FromEmail
		}
		c.SalesTeam = n.Email.SalesTeam
		if n.SMS.MinScore > 0 {
			c.SMSMinScore = n.SMS.MinScore
		}
		out[sln.TaskType] = sln.NewHandler(c, d.pg.DB, d.ses, d.sns, d.obs, d.log).Handle
	}

	return out
}

func startWorkers(client zbc.Client, d *dependencies) []*camunda.Worker {
	var workers []*camunda.Worker
	for taskType, handle := range d.handlers() {
		w := camunda.StartWorker(client, taskType, config.GetWorkerConfig(d.cfg, taskType), handle, d.log)
		if w != nil {
			workers = append(workers, w)
		}
	}
	return workers
}
