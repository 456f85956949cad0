// Package metrics counts what the API client does on the wire.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	OutcomeOK           = "ok"
	OutcomeConnectivity = "connectivity"
	OutcomeAuthRejected = "auth_rejected"
	OutcomeValidation   = "validation"
	OutcomeServer       = "server"
)

// Refresh results
const (
	RefreshSuccess     = "success"
	RefreshRejected    = "rejected"
	RefreshUnreachable = "unreachable"
	RefreshSkipped     = "no_refresh_token"
)

// Client holds the counters of one api.Client on a private registry, so
// several clients in one process do not collide.
type Client struct {
	registry  *prometheus.Registry
	Requests  *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Replays   prometheus.Counter
}

func New() *Client {
	c := &Client{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finclient",
			Name:      "requests_total",
			Help:      "API calls by method and outcome.",
		}, []string{"method", "outcome"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finclient",
			Name:      "token_refreshes_total",
			Help:      "Silent token refresh attempts triggered by a 401.",
		}, []string{"result"}),
		Replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finclient",
			Name:      "request_replays_total",
			Help:      "Requests replayed after a successful refresh.",
		}),
	}
	c.registry.MustRegister(c.Requests, c.Refreshes, c.Replays)
	return c
}

func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText dumps every non-zero series as "name{labels} value" lines.
func (c *Client) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			if _, err := fmt.Fprintf(w, "%s %g\n", name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
