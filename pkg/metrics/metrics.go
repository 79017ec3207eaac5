// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsEngine holds the process-wide Prometheus metrics for the engine.
type metricsEngine struct {
	once sync.Once

	// Build
	buildModulesProcessed prometheus.Counter
	buildFunctionsFound   prometheus.Counter
	buildClassesFound     prometheus.Counter
	buildParseErrors      prometheus.Counter
	buildCallsResolved    prometheus.Counter
	buildCallsUnresolved  prometheus.Counter

	// Checks
	checksRun         prometheus.Counter
	diagnosticsEmitted prometheus.Counter

	// Query
	queriesRun prometheus.Counter

	// Embedding
	embedComputed prometheus.Counter
	embedSkipped  prometheus.Counter
	embedErrors   prometheus.Counter
	embedRetries  prometheus.Counter

	// Search
	searchesRun prometheus.Counter

	// Patch plan
	patchPlansBuilt       prometheus.Counter
	patchOperationsApplied prometheus.Counter
	patchValidationErrors prometheus.Counter

	// Durations
	buildDuration  prometheus.Histogram
	checkDuration  prometheus.Histogram
	embedDuration  prometheus.Histogram
	searchDuration prometheus.Histogram
	patchDuration  prometheus.Histogram
}

var engine metricsEngine

func (m *metricsEngine) init() {
	m.once.Do(func() {
		m.buildModulesProcessed = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_build_modules_processed_total", Help: "Modules processed while building the repository IR"})
		m.buildFunctionsFound = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_build_functions_found_total", Help: "Functions discovered while building the repository IR"})
		m.buildClassesFound = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_build_classes_found_total", Help: "Classes discovered while building the repository IR"})
		m.buildParseErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_build_parse_errors_total", Help: "Source files that failed to parse"})
		m.buildCallsResolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_build_calls_resolved_total", Help: "Call sites resolved to a known function"})
		m.buildCallsUnresolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_build_calls_unresolved_total", Help: "Call sites left unresolved"})

		m.checksRun = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_checks_run_total", Help: "Structural check passes executed"})
		m.diagnosticsEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_diagnostics_emitted_total", Help: "Diagnostics emitted by structural checks"})

		m.queriesRun = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_queries_run_total", Help: "Graph queries executed"})

		m.embedComputed = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_embeddings_computed_total", Help: "Embeddings computed"})
		m.embedSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_embeddings_skipped_total", Help: "Embeddings skipped (already present or unembeddable)"})
		m.embedErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_embeddings_errors_total", Help: "Embedding provider errors"})
		m.embedRetries = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_embeddings_retries_total", Help: "Embedding provider retries"})

		m.searchesRun = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_searches_run_total", Help: "Semantic searches executed"})

		m.patchPlansBuilt = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_patch_plans_built_total", Help: "Patch plan bundles built"})
		m.patchOperationsApplied = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_patch_operations_applied_total", Help: "Patch operations applied to disk"})
		m.patchValidationErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "neurocode_patch_validation_errors_total", Help: "Patch plan operations rejected by schema validation"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.buildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "neurocode_build_seconds", Help: "Duration of a full repository build", Buckets: buckets})
		m.checkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "neurocode_check_seconds", Help: "Duration of a structural check pass", Buckets: buckets})
		m.embedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "neurocode_embed_seconds", Help: "Duration of an embedding generation pass", Buckets: buckets})
		m.searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "neurocode_search_seconds", Help: "Duration of a semantic search", Buckets: buckets})
		m.patchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "neurocode_patch_seconds", Help: "Duration of a patch plan build or apply", Buckets: buckets})

		prometheus.MustRegister(
			m.buildModulesProcessed, m.buildFunctionsFound, m.buildClassesFound,
			m.buildParseErrors, m.buildCallsResolved, m.buildCallsUnresolved,
			m.checksRun, m.diagnosticsEmitted,
			m.queriesRun,
			m.embedComputed, m.embedSkipped, m.embedErrors, m.embedRetries,
			m.searchesRun,
			m.patchPlansBuilt, m.patchOperationsApplied, m.patchValidationErrors,
			m.buildDuration, m.checkDuration, m.embedDuration, m.searchDuration, m.patchDuration,
		)
	})
}

// RecordBuild updates the build counters and duration histogram for one
// repository build pass.
func RecordBuild(modules, functions, classes, parseErrors, resolved, unresolved int, seconds float64) {
	engine.init()
	engine.buildModulesProcessed.Add(float64(modules))
	engine.buildFunctionsFound.Add(float64(functions))
	engine.buildClassesFound.Add(float64(classes))
	engine.buildParseErrors.Add(float64(parseErrors))
	engine.buildCallsResolved.Add(float64(resolved))
	engine.buildCallsUnresolved.Add(float64(unresolved))
	engine.buildDuration.Observe(seconds)
}

// RecordCheck updates check counters and the check duration histogram.
func RecordCheck(diagnostics int, seconds float64) {
	engine.init()
	engine.checksRun.Inc()
	engine.diagnosticsEmitted.Add(float64(diagnostics))
	engine.checkDuration.Observe(seconds)
}

// RecordQuery increments the query counter.
func RecordQuery() {
	engine.init()
	engine.queriesRun.Inc()
}

// RecordEmbedBatch updates embedding counters and the embed duration
// histogram for one embedding generation pass.
func RecordEmbedBatch(computed, skipped, errors, retries int, seconds float64) {
	engine.init()
	engine.embedComputed.Add(float64(computed))
	engine.embedSkipped.Add(float64(skipped))
	engine.embedErrors.Add(float64(errors))
	engine.embedRetries.Add(float64(retries))
	engine.embedDuration.Observe(seconds)
}

// RecordSearch updates the search counter and duration histogram.
func RecordSearch(seconds float64) {
	engine.init()
	engine.searchesRun.Inc()
	engine.searchDuration.Observe(seconds)
}

// RecordPatchPlanBuilt increments the patch plan counter.
func RecordPatchPlanBuilt(seconds float64) {
	engine.init()
	engine.patchPlansBuilt.Inc()
	engine.patchDuration.Observe(seconds)
}

// RecordPatchApplied increments the applied-operation counter.
func RecordPatchApplied(seconds float64) {
	engine.init()
	engine.patchOperationsApplied.Inc()
	engine.patchDuration.Observe(seconds)
}

// RecordPatchValidationErrors adds n to the validation error counter.
func RecordPatchValidationErrors(n int) {
	engine.init()
	engine.patchValidationErrors.Add(float64(n))
}
