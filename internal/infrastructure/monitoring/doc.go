/*
Package monitoring provides Prometheus metrics for the studio backend.

# Overview

Metrics cover the HTTP API, action flow execution, structural schema edits,
persistence, AI completions, render sessions and WebSocket streams. A small
snapshot of headline counters is kept alongside for the JSON stats endpoint.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer(metrics, "bolt", "save")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
