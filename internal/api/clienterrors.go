package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/invoicer/pkg/handlers"
	"github.com/JaimeStill/invoicer/pkg/routes"
)

const maxClientErrorSize = 16 << 10

var errInvalidReport = errors.New("invalid client error report")

// ClientError is an error reported by the browser upload client.
type ClientError struct {
	Filename  string `json:"filename"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

type clientErrorHandler struct {
	logger *slog.Logger
}

func newClientErrorHandler(logger *slog.Logger) *clientErrorHandler {
	return &clientErrorHandler{
		logger: logger.With("handler", "client-errors"),
	}
}

func (h *clientErrorHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/client-errors",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.report},
		},
	}
}

func (h *clientErrorHandler) report(w http.ResponseWriter, r *http.Request) {
	var ce ClientError
	body := io.LimitReader(r.Body, maxClientErrorSize)
	if err := json.NewDecoder(body).Decode(&ce); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidReport)
		return
	}

	h.logger.Error("client error",
		"filename", orUnknown(ce.Filename),
		"stage", orUnknown(ce.Stage),
		"error", orDefault(ce.Error, "no details"),
		"timestamp", orUnknown(ce.Timestamp),
	)

	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func orUnknown(s string) string {
	return orDefault(s, "unknown")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
