package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoomsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rooms_created_total",
			Help: "Total multiplayer rooms created",
		},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Total games recorded, by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RoomsCreated)
	prometheus.MustRegister(GamesFinished)
}
