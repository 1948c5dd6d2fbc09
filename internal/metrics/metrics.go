package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 計數器都在請求路徑內聯遞增；這個子系統自己不擁有任何計時器或背景採集 goroutine。
var (
	ordersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total orders created",
		},
	)

	orderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Total order status transitions",
		},
		[]string{"from", "to"},
	)

	capacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capacity_rejections_total",
			Help: "Total reservations rejected by the capacity cap",
		},
	)

	expiredOrdersSwept = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expired_orders_swept_total",
			Help: "Total expired pending orders processed by the sweeper",
		},
		[]string{"result"},
	)
)

func OrderCreated() {
	ordersCreated.Inc()
}

func OrderTransitioned(from, to string) {
	orderTransitions.WithLabelValues(from, to).Inc()
}

func CapacityRejected() {
	capacityRejections.Inc()
}

func OrderSwept(result string) {
	expiredOrdersSwept.WithLabelValues(result).Inc()
}
