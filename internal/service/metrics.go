// SPDX-License-Identifier: MIT

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jamaisvu_uploads_total",
		Help: "Number of accepted recording uploads",
	})

	uploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jamaisvu_upload_bytes",
		Help:    "Decoded size of accepted audio payloads in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. ~16MiB
	})

	sniffRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jamaisvu_sniff_rejected_total",
		Help: "Number of payloads rejected by audio content-sniffing",
	})

	orphanedWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jamaisvu_orphaned_writes_total",
		Help: "Writes left without their counterpart after a partial upload failure",
	}, []string{"kind"}) // kind: object | document

	geoLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jamaisvu_geo_lookups_total",
		Help: "Location resolution outcomes by source",
	}, []string{"source"}) // source: client | address | failed
)
