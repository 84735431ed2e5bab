package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sign-in outcomes are counted by internal cause. Clients never see these
// distinctions; the metric exists for operators watching for replay storms.
var signinAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "commerce",
	Subsystem: "auth",
	Name:      "signin_attempts_total",
	Help:      "Sign-in attempts by outcome.",
}, []string{"outcome"})

var noncesIssued = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "commerce",
	Subsystem: "auth",
	Name:      "nonces_issued_total",
	Help:      "Nonces issued to clients.",
})

const (
	outcomeOK          = "ok"
	outcomeBadNonce    = "bad_nonce"
	outcomeBadPassword = "bad_credentials"
	outcomeError       = "error"
)
