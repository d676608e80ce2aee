package handler

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nmburu/supportprobe/internal/handler/chat"
	middlewarePkg "github.com/nmburu/supportprobe/internal/middleware"
	"github.com/nmburu/supportprobe/internal/model/faq"
	convoservice "github.com/nmburu/supportprobe/internal/service/convo"
)

//go:embed web/index.html
var indexPage []byte

// NewRouter wires HTTP routes to the conversation service.
func NewRouter(faqs faq.Store, convoSvc *convoservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(convoSvc, faqs)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexPage)
	})

	return r
}
