package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/JaimeStill/invoicer/internal/api"
	"github.com/JaimeStill/invoicer/internal/config"
	"github.com/JaimeStill/invoicer/internal/infrastructure"
	"github.com/JaimeStill/invoicer/pkg/module"
)

const readinessTimeout = 3 * time.Second

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "starting"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failures := infra.Lifecycle.Check(ctx)
		if len(failures) > 0 {
			detail := make(map[string]string, len(failures))
			for name, err := range failures {
				detail[name] = err.Error()
			}
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status":   "not ready",
				"failures": detail,
			})
			return
		}

		writeStatus(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	return router
}

func writeStatus(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
