package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheSnapshot holds the counters of an in-memory cache at scrape time
type CacheSnapshot struct {
	Size      int
	Hits      int64
	Misses    int64
	Evictions int64
	Expiries  int64
}

// CacheCollector exports a cache's counters, read through snapshot on every scrape.
type CacheCollector struct {
	snapshot  func() CacheSnapshot
	entries   *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	expiries  *prometheus.Desc
}

// NewCacheCollector creates a collector labelled with the cache name
func NewCacheCollector(cache string, snapshot func() CacheSnapshot) *CacheCollector {
	labels := prometheus.Labels{"cache": cache}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("icepay", "cache", name), help, nil, labels)
	}

	return &CacheCollector{
		snapshot:  snapshot,
		entries:   desc("entries", "Number of entries held by the cache"),
		hits:      desc("hits_total", "Cache lookups answered from a live entry"),
		misses:    desc("misses_total", "Cache lookups that found no live entry"),
		evictions: desc("evictions_total", "Entries evicted to make room"),
		expiries:  desc("expiries_total", "Entries dropped after their TTL"),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.expiries
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Size))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.expiries, prometheus.CounterValue, float64(s.Expiries))
}
