package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/newschat/internal/handlers"
	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var logger = logger_i.NewLogger("middleware")

var ChatHandler = Wrap(handlers.ChatHandler)
var SummarizeHandler = Wrap(handlers.SummarizeHandler)
var FollowupHandler = Wrap(handlers.FollowupHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var HistoryHandler = Wrap(handlers.HistoryHandler)
var DeleteChatHandler = Wrap(handlers.DeleteChatHandler)

// Wrap runs trace, auth and rate limiting before next and counts the response by route pattern.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := metrics.NewHttpStatusRecorder(w)
		re := processRequest(requestResponseStruct{req: r, writer: rec, logger: logger})

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	for _, step := range []func(requestResponseStruct) requestResponseStruct{injectTrace, authenticate, rateLimiter} {
		re = step(re)
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return re
		}
	}
	re.logger.Debug("Request accepted", "method", re.req.Method, "path", re.req.URL.Path)
	return re
}

// routePattern keeps the metrics label cardinality bounded by ids in the path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
