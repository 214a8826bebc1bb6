package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ybakhan/flakyping/internal/ping"
	"github.com/ybakhan/flakyping/internal/server"
)

const (
	MainPagePath = "/"
	DataPath     = "/data"

	mainPageMessage = "server main page"
	acceptMessage   = "OK"
	rejectMessage   = "we are broken"
)

type Handlers struct {
	classifier *ping.Classifier
	logger     *slog.Logger
}

func New(classifier *ping.Classifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{classifier: classifier, logger: logger}
}

// Routes returns the server's route table.
func (h *Handlers) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodGet, Path: MainPagePath, Handler: h.MainPage},
		{Method: http.MethodPost, Path: DataPath, Handler: h.Data},
	}
}

func (h *Handlers) MainPage(any) server.Reply {
	return server.Respond(http.StatusOK, mainPageMessage)
}

// Data classifies a submitted ping record and answers accordingly, or not at all.
func (h *Handlers) Data(payload any) server.Reply {
	outcome, err := h.classifier.Classify(payload)
	if err != nil {
		h.logger.Warn("invalid ping record", "err", err)
		return server.ErrorReply(err)
	}

	switch outcome {
	case ping.Accept:
		return server.Respond(http.StatusOK, acceptMessage)
	case ping.Reject:
		return server.Respond(http.StatusInternalServerError, rejectMessage)
	default:
		return server.NoReply()
	}
}
