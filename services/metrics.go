package services

import "github.com/prometheus/client_golang/prometheus"

var (
	recordsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_fetched_total",
			Help: "Number of records returned by each provider.",
		},
		[]string{"provider"},
	)
	recordsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_inserted_total",
		Help: "Number of records inserted as new entities.",
	})
	recordsMerged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_merged_total",
		Help: "Number of records merged into an existing entity.",
	})
	recordConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "record_conflicts_total",
		Help: "Number of identifier conflicts reported by the record store.",
	})
	recordsFiltered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_filtered_total",
		Help: "Number of records dropped by the PICO filter.",
	})
)

func init() {
	prometheus.MustRegister(recordsFetched, recordsInserted, recordsMerged, recordConflicts, recordsFiltered)
}
