package ports

import "time"

type Metrics interface {
	ProviderCall(provider, model, status string, elapsed time.Duration)
	Delivery(namespace, status string)
	TTSAttempt(stage, status string)
}

type NopMetrics struct{}

func (NopMetrics) ProviderCall(string, string, string, time.Duration) {}

func (NopMetrics) Delivery(string, string) {}

func (NopMetrics) TTSAttempt(string, string) {}
