package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type UnderwritingMetrics struct {
	SubmissionsTotal    *prometheus.CounterVec
	InstallmentPayments *prometheus.CounterVec
	ScheduleRecoveries  *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_underwriter_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Underwriting = UnderwritingMetrics{
		SubmissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_underwriter_submissions_total",
				Help: "Loan submissions by decision status or failure kind.",
			},
			[]string{"outcome"},
		),
		InstallmentPayments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_underwriter_installment_payments_total",
				Help: "Installment pay attempts by result.",
			},
			[]string{"result"},
		),
		ScheduleRecoveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_underwriter_schedule_recoveries_total",
				Help: "Schedules regenerated for requests stored without one.",
			},
			[]string{"result"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordSubmission(outcome string) {
	Underwriting.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordInstallmentPayment(result string) {
	Underwriting.InstallmentPayments.WithLabelValues(result).Inc()
}

func RecordScheduleRecovery(result string) {
	Underwriting.ScheduleRecoveries.WithLabelValues(result).Inc()
}
