package server

import (
	"net/http"
	"time"

	"medsafe-rl/internal/dataset"
	"medsafe-rl/internal/evaluation"
	"medsafe-rl/internal/judge"
	"medsafe-rl/internal/reward"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type API struct {
	auth       *Auth
	engine     *reward.Engine
	judgeCache *judge.Cache
	obs        *Observability
	scoreLimit *ipRateLimiter
	started    time.Time
}

// NewAPI wires the scoring surface. judgeCache may be nil when no judge endpoint
// is configured; judge-dependent routes then answer 503 instead of failing at
// startup.
func NewAPI(cfg ServerConfig, auth *Auth, engine *reward.Engine, judgeCache *judge.Cache, obs *Observability) *API {
	return &API{
		auth:       auth,
		engine:     engine,
		judgeCache: judgeCache,
		obs:        obs,
		scoreLimit: newIPRateLimiter(cfg.Limits.ScoreRPM),
		started:    time.Now(),
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)

	mux.HandleFunc("POST /api/v1/score", a.handleScore)
	mux.HandleFunc("POST /api/v1/judge", a.handleJudge)
	mux.HandleFunc("POST /api/v1/evaluate", a.handleEvaluate)

	mux.Handle("GET /api/v1/admin/cache/stats", a.auth.RequireAdmin(http.HandlerFunc(a.handleCacheStats)))
	mux.Handle("GET /api/v1/admin/metrics/overview", a.auth.RequireAdmin(http.HandlerFunc(a.handleOverview)))

	wrapped := otelhttp.NewHandler(mux, "medsafe-api-http")
	return withCORS(wrapped)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": nowRFC3339(),
	})
}

type scoreRequest struct {
	Prompt      string `json:"prompt"`
	Completion  string `json:"completion"`
	WithTeacher bool   `json:"with_teacher"`
}

type scoreResponse struct {
	Breakdown    reward.Breakdown `json:"breakdown"`
	TeacherScore *float64         `json:"teacher_score,omitempty"`
	Reward       *float64         `json:"reward,omitempty"`
}

func (a *API) handleScore(w http.ResponseWriter, r *http.Request) {
	if !a.scoreLimit.Allow(clientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "score rate limit exceeded")
		return
	}
	var req scoreRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Completion == "" {
		writeError(w, http.StatusBadRequest, "completion is required")
		return
	}

	start := time.Now()
	ctx := r.Context()
	breakdown := a.engine.Score(req.Prompt, req.Completion)
	for _, violation := range breakdown.Violations {
		a.obs.MarkRuleHit(ctx, violation.RuleID)
	}

	resp := scoreResponse{Breakdown: breakdown}
	if req.WithTeacher {
		if a.judgeCache == nil {
			writeError(w, http.StatusServiceUnavailable, "teacher judge not configured")
			return
		}
		judgement, err := a.judgeCache.Judge(ctx, req.Prompt, req.Completion)
		if err != nil {
			writeError(w, http.StatusBadGateway, "judge failed: "+err.Error())
			return
		}
		teacher := judgement.Result.OverallScore
		combined := a.engine.Combine(breakdown.Total, teacher)
		resp.TeacherScore = &teacher
		resp.Reward = &combined
	}
	a.obs.MarkScore(ctx, time.Since(start).Milliseconds())
	writeJSON(w, http.StatusOK, resp)
}

type judgeRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (a *API) handleJudge(w http.ResponseWriter, r *http.Request) {
	if a.judgeCache == nil {
		writeError(w, http.StatusServiceUnavailable, "teacher judge not configured")
		return
	}
	var req judgeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" || req.Answer == "" {
		writeError(w, http.StatusBadRequest, "question and answer are required")
		return
	}

	hitsBefore, _, _ := a.judgeCache.Stats()
	judgement, err := a.judgeCache.Judge(r.Context(), req.Question, req.Answer)
	if err != nil {
		writeError(w, http.StatusBadGateway, "judge failed: "+err.Error())
		return
	}
	hitsAfter, _, _ := a.judgeCache.Stats()
	a.obs.MarkJudge(r.Context(), hitsAfter > hitsBefore)
	writeJSON(w, http.StatusOK, judgement)
}

type evaluateRequest struct {
	Records []dataset.Record `json:"records"`
}

func (a *API) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	metrics, rows := evaluation.Evaluate(req.Records)
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics,
		"rows":    rows,
	})
}

func (a *API) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if a.judgeCache == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"configured": false,
		})
		return
	}
	hits, liveCalls, indexed := a.judgeCache.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"configured": true,
		"cache_hits": hits,
		"live_calls": liveCalls,
		"indexed":    indexed,
	})
}

func (a *API) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview := map[string]any{
		"uptime_sec":        int64(time.Since(a.started).Seconds()),
		"safety_rules":      len(reward.SafetyRules()),
		"positive_catalogs": len(reward.PositiveCategories()),
		"judge_configured":  a.judgeCache != nil,
		"score_rpm_per_ip":  a.scoreLimit.rpm,
	}
	if a.judgeCache != nil {
		hits, liveCalls, indexed := a.judgeCache.Stats()
		overview["cache_hits"] = hits
		overview["live_calls"] = liveCalls
		overview["indexed"] = indexed
	}
	writeJSON(w, http.StatusOK, overview)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
