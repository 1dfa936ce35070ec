// Command gosession-burst measures the refresh single-flight under
// concurrent load: it boots the reference server on an ephemeral port
// (backed by miniredis unless a Redis address is given), logs in once with
// a deliberately short access TTL, and then fires rounds of concurrent
// guarded requests after each expiry. With the coordinator doing its job,
// every round costs exactly one wire-level refresh no matter how many
// clients collide on the expired token.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/devserver"
)

const (
	burstUser     = "admin"
	burstPassword = "correct-horse-battery"
)

type refreshCounter struct {
	next  http.Handler
	calls atomic.Int64
}

func (c *refreshCounter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/auth/refresh" {
		c.calls.Add(1)
	}
	c.next.ServeHTTP(w, r)
}

func main() {
	var (
		clients   = flag.Int("clients", 128, "concurrent requests per round")
		rounds    = flag.Int("rounds", 10, "number of expiry rounds")
		accessTTL = flag.Duration("access-ttl", 150*time.Millisecond, "access token lifetime")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix    = flag.String("prefix", "gsburst", "session key prefix")
	)
	flag.Parse()

	if *clients <= 0 || *rounds <= 0 || *accessTTL <= 0 {
		fmt.Fprintln(os.Stderr, "clients, rounds, and access-ttl must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	srvCfg := devserver.DefaultConfig()
	srvCfg.SigningKey = []byte("gosession-burst-0123456789abcdef")
	srvCfg.AccessTTL = *accessTTL
	srvCfg.RedisPrefix = *prefix

	srv, err := devserver.New(srvCfg, rdb)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devserver: %v\n", err)
		os.Exit(1)
	}
	if err := srv.Seed(burstUser, burstPassword, "admin"); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	counter := &refreshCounter{next: srv.Handler()}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		os.Exit(1)
	}
	httpSrv := &http.Server{Handler: counter}
	go func() { _ = httpSrv.Serve(ln) }()
	defer httpSrv.Close()

	baseURL := "http://" + ln.Addr().String()
	fmt.Printf("reference server at %s (access TTL %s)\n", baseURL, *accessTTL)

	manager, err := goSession.New().
		WithBaseURL(baseURL).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build manager: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	if _, err := manager.Login(ctx, burstUser, burstPassword); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	var (
		latencies []time.Duration
		mu        sync.Mutex
		failures  int64
	)

	start := time.Now()
	for round := 1; round <= *rounds; round++ {
		// Wait out the current token so the whole burst collides on an
		// expired credential.
		time.Sleep(*accessTTL + 50*time.Millisecond)

		before := counter.calls.Load()
		gate := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(*clients)
		for i := 0; i < *clients; i++ {
			go func() {
				defer wg.Done()
				<-gate
				t0 := time.Now()
				resp, err := manager.Client().Get(baseURL + "/api/me")
				d := time.Since(t0)
				if err != nil || resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&failures, 1)
				}
				if resp != nil {
					_ = resp.Body.Close()
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}()
		}
		close(gate)
		wg.Wait()

		fmt.Printf("round %2d: %d requests, %d wire refreshes\n",
			round, *clients, counter.calls.Load()-before)
	}
	total := time.Since(start)

	snap := manager.MetricsSnapshot()
	fmt.Println("---- results ----")
	fmt.Printf("requests:          %d (%d failed)\n", len(latencies), failures)
	fmt.Printf("wire refreshes:    %d (for %d rounds)\n", counter.calls.Load(), *rounds)
	fmt.Printf("shared attaches:   %d\n", snap.Counters[goSession.MetricRefreshShared])
	fmt.Printf("requests retried:  %d\n", snap.Counters[goSession.MetricRequestRetried])
	fmt.Printf("refresh successes: %d\n", snap.Counters[goSession.MetricRefreshSuccess])
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	fmt.Printf("latency p50/p95/p99: %s / %s / %s\n",
		percentile(latencies, 50), percentile(latencies, 95), percentile(latencies, 99))
	fmt.Printf("total: %s (%.0f req/s)\n", total.Round(time.Millisecond),
		float64(len(latencies))/total.Seconds())
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}
