package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/starchart/internal/proxy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StarChartPath is the proxied chart endpoint.
const StarChartPath = "/api/star-chart"

type Service interface {
	GenerateChart(ctx context.Context, body []byte) proxy.Reply
}

type starChartInput struct {
	RawBody []byte
}

type starChartOutput struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type healthOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(corsHandler())
	router.Use(emptyChartBody)

	cfg := huma.DefaultConfig("Star Chart Proxy API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerChartHandlers(api, svc)
	registerHealthHandlers(api)

	return router
}

func registerChartHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-star-chart",
		Method:      http.MethodPost,
		Path:        StarChartPath,
		Summary:     "Generate a star chart",
		Description: "Forwards the JSON payload to AstronomyAPI with server-held credentials and relays the upstream status and body unchanged.",
		Tags:        []string{"Star Chart"},
	}, func(ctx context.Context, input *starChartInput) (*starChartOutput, error) {
		reply := svc.GenerateChart(ctx, input.RawBody)
		out := &starChartOutput{
			Status:      reply.Status,
			ContentType: reply.ContentType,
			Body:        reply.Body,
		}
		if out.ContentType == "" {
			out.ContentType = "application/json; charset=utf-8"
		}
		return out, nil
	})
}

func registerHealthHandlers(api huma.API) {
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}
