package service

import "github.com/prometheus/client_golang/prometheus"

// Result label values.
const (
	ResultSuccess             = "success"
	ResultInvalidCredentials  = "invalid_credentials"
	ResultInvalidRefreshToken = "invalid_refresh_token"
	ResultUnauthenticated     = "unauthenticated"
	ResultForbidden           = "forbidden"
	ResultError               = "error"
)

var (
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoserver_auth_logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoserver_auth_refreshes_total",
			Help: "Total number of token refresh attempts by result",
		},
		[]string{"result"},
	)
	AuthorizationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoserver_auth_authorizations_total",
			Help: "Total number of request authorization decisions by result",
		},
		[]string{"result"},
	)
)

// RegisterMetrics registers the auth counters. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginsTotal, RefreshesTotal, AuthorizationsTotal)
}
