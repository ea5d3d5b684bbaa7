package engine

import (
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/book-expert/speech-service/internal/core"
)

const bytesPerMegabyte = 1024 * 1024

// resourceSampler polls a subprocess for CPU and memory usage at a fixed
// interval. It shares no state across requests: each synthesis call owns its
// own sampler, and samples are read back only after the sampling goroutine
// has finished.
type resourceSampler struct {
	interval   time.Duration
	cpuSamples []float64
	memSamples []float64
}

func newResourceSampler(interval time.Duration) *resourceSampler {
	return &resourceSampler{
		interval:   interval,
		cpuSamples: nil,
		memSamples: nil,
	}
}

// run polls the process until stop is closed or the process disappears.
// Sampling errors end observation without failing the synthesis call: a
// vanished process simply means the engine already exited.
func (s *resourceSampler) run(pid int32, stop <-chan struct{}) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return
	}

	// The first since-last-call CPU reading has no baseline; discard it.
	_, _ = proc.CPUPercent()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			cpuPercent, cpuErr := proc.CPUPercent()
			memInfo, memErr := proc.MemoryInfo()

			if cpuErr != nil || memErr != nil {
				return
			}

			s.cpuSamples = append(s.cpuSamples, cpuPercent)
			s.memSamples = append(s.memSamples, float64(memInfo.RSS)/bytesPerMegabyte)
		}
	}
}

// metrics reduces the collected samples to arithmetic means and the memory
// peak. Empty sample sets yield zero values, never a division fault.
func (s *resourceSampler) metrics(elapsed time.Duration) core.ResourceMetrics {
	return core.ResourceMetrics{
		CPUPercentAvg: mean(s.cpuSamples),
		MemoryMBAvg:   mean(s.memSamples),
		MemoryMBPeak:  peak(s.memSamples),
		Duration:      elapsed,
	}
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, sample := range samples {
		sum += sample
	}

	return sum / float64(len(samples))
}

func peak(samples []float64) float64 {
	var highest float64
	for _, sample := range samples {
		if sample > highest {
			highest = sample
		}
	}

	return highest
}
