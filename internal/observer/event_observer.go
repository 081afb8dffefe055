package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RunEvent represents one pipeline run event
type RunEvent struct {
	EventType    EventType              `json:"event_type"`
	Timestamp    time.Time              `json:"timestamp"`
	Stage        string                 `json:"stage,omitempty"`
	PageCount    int                    `json:"page_count,omitempty"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of pipeline event
type EventType string

const (
	// RunStarted when a pipeline run begins
	RunStarted EventType = "run_started"
	// RunCompleted when a run produces a report
	RunCompleted EventType = "run_completed"
	// RunRejected when the input batch is refused before any stage runs
	RunRejected EventType = "run_rejected"
	// RunFailed when the mandatory extraction stage yields no text
	RunFailed EventType = "run_failed"
	// StageCompleted when one stage finishes with usable output
	StageCompleted EventType = "stage_completed"
	// StageDegraded when one stage fails and its field degrades
	StageDegraded EventType = "stage_degraded"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event RunEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event RunEvent)
}

// EventPublisher is the default Subject implementation.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates an empty publisher.
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

// Subscribe registers an observer.
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer by name.
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, o := range p.observers {
		if o.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			return
		}
	}
}

// NotifyObservers delivers the event to every subscriber.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event RunEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, o := range p.observers {
		o.OnEvent(ctx, event)
	}
}

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles pipeline events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event RunEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"success":    event.Success,
	}

	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	if event.PageCount > 0 {
		fields["page_count"] = event.PageCount
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case RunStarted:
		o.logger.WithFields(fields).Info("Pipeline run started")
	case RunCompleted:
		o.logger.WithFields(fields).Info("Pipeline run completed")
	case RunRejected:
		o.logger.WithFields(fields).Warn("Pipeline run rejected")
	case RunFailed:
		o.logger.WithFields(fields).Error("Pipeline run failed")
	case StageCompleted:
		o.logger.WithFields(fields).Debug("Pipeline stage completed")
	case StageDegraded:
		o.logger.WithFields(fields).Warn("Pipeline stage degraded")
	default:
		o.logger.WithFields(fields).Info("Pipeline event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects run counters from pipeline events
type MetricsObserver struct {
	mu             sync.RWMutex
	totalRuns      int64
	completedRuns  int64
	rejectedRuns   int64
	failedRuns     int64
	degradedStages int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles pipeline events by updating counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event RunEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case RunStarted:
		o.totalRuns++
	case RunCompleted:
		o.completedRuns++
	case RunRejected:
		o.rejectedRuns++
	case RunFailed:
		o.failedRuns++
	case StageDegraded:
		o.degradedStages++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns the current counters for health reporting.
func (o *MetricsObserver) Snapshot() map[string]int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return map[string]int64{
		"runs_total":      o.totalRuns,
		"runs_completed":  o.completedRuns,
		"runs_rejected":   o.rejectedRuns,
		"runs_failed":     o.failedRuns,
		"stages_degraded": o.degradedStages,
	}
}
