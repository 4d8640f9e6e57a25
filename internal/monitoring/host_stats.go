package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/isdelr/haulboard-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	highCPUThreshold = 90.0
	highCPUCooldown  = 15 * time.Minute
	bytesPerMB       = 1024 * 1024
)

// hostReading is a raw resource reading.
type hostReading struct {
	cpuPercent    float64
	memPercent    float64
	memUsedBytes  uint64
	memTotalBytes uint64
}

func readHost(ctx context.Context) (hostReading, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return hostReading{}, fmt.Errorf("read cpu: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return hostReading{}, fmt.Errorf("read memory: %w", err)
	}
	r := hostReading{memPercent: vm.UsedPercent, memUsedBytes: vm.Used, memTotalBytes: vm.Total}
	if len(percents) > 0 {
		r.cpuPercent = percents[0]
	}
	return r, nil
}

// HostSampler periodically samples host CPU and memory for the admin system endpoint
// and records an event when CPU stays pegged.
type HostSampler struct {
	events   services.EventServiceProvider
	interval time.Duration
	read     func(ctx context.Context) (hostReading, error)
	now      func() time.Time
	started  time.Time

	mu        sync.RWMutex
	latest    models.SystemStats
	sampled   bool
	lastAlert time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewHostSampler creates a sampler. events may be nil.
func NewHostSampler(events services.EventServiceProvider, interval time.Duration) *HostSampler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HostSampler{
		events:   events,
		interval: interval,
		read:     readHost,
		now:      time.Now,
		started:  time.Now(),
		done:     make(chan struct{}),
	}
}

// Run starts the periodic sampling.
func (s *HostSampler) Run() {
	log.Info().Msg("Starting background host sampler...")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately on start
	s.sample(context.Background())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping background host sampler.")
			return
		case <-ticker.C:
			s.sample(context.Background())
		}
	}
}

// Stop halts the sampler.
func (s *HostSampler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Current returns the latest sample, taking one synchronously if none exists yet.
func (s *HostSampler) Current(ctx context.Context) (models.SystemStats, error) {
	s.mu.RLock()
	latest, ok := s.latest, s.sampled
	s.mu.RUnlock()
	if ok {
		latest.Uptime = s.uptime()
		return latest, nil
	}
	return s.sample(ctx)
}

func (s *HostSampler) sample(ctx context.Context) (models.SystemStats, error) {
	r, err := s.read(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sample host resources")
		return models.SystemStats{}, err
	}

	stats := models.SystemStats{
		CPUPercent:    r.cpuPercent,
		MemoryPercent: r.memPercent,
		MemoryUsedMB:  r.memUsedBytes / bytesPerMB,
		MemoryTotalMB: r.memTotalBytes / bytesPerMB,
		Uptime:        s.uptime(),
	}

	now := s.now()
	alert := false
	s.mu.Lock()
	s.latest, s.sampled = stats, true
	if r.cpuPercent >= highCPUThreshold && now.Sub(s.lastAlert) >= highCPUCooldown {
		s.lastAlert = now
		alert = true
	}
	s.mu.Unlock()

	if alert {
		log.Warn().Float64("cpu_percent", r.cpuPercent).Msg("High host CPU usage")
		services.Record(ctx, s.events, services.EventSystemCPU, services.LevelWarn,
			fmt.Sprintf("Host CPU usage is at %.0f%%", r.cpuPercent), "")
	}
	return stats, nil
}

func (s *HostSampler) uptime() string {
	return s.now().Sub(s.started).Round(time.Second).String()
}
