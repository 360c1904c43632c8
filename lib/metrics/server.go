package metrics

import (
	"context"
	"net/http"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Logger = logger.GetLogger(common.LoggerCli)

// Handler serves the prometheus collectors followed by the wire level
// metrics of the client (commands per opcode, transport bytes).
func Handler() http.Handler {
	prom := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{DisableCompression: true})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prom.ServeHTTP(w, r)
		vm.WritePrometheus(w, false)
	})
}

// StartServer serves /metrics on addr in the background
func StartServer(addr string) (shutdown func(context.Context) error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		Logger.Infof("metrics server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger.Errorf("metrics server error: %v", err)
		}
	}()

	return server.Shutdown
}
