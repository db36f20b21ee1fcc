package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/stretchr/testify/mock"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type memorySettings struct {
	settings domain.Settings
	present  bool
	saveErr  error
	saves    int
}

func (m *memorySettings) Load(context.Context) (domain.Settings, error) {
	if !m.present {
		return domain.Settings{}, domain.ErrSettingsNotFound
	}
	return m.settings, nil
}

func (m *memorySettings) Save(_ context.Context, settings domain.Settings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.settings = settings
	m.present = true
	return nil
}

type memorySecrets struct {
	values map[string]string
}

func newMemorySecrets(values map[string]string) *memorySecrets {
	if values == nil {
		values = map[string]string{}
	}
	return &memorySecrets{values: values}
}

func (m *memorySecrets) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return v, nil
}

func (m *memorySecrets) Put(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memorySecrets) Delete(_ context.Context, key string) error {
	if _, ok := m.values[key]; !ok {
		return domain.ErrSecretNotFound
	}
	delete(m.values, key)
	return nil
}

type mockSecretStore struct {
	mock.Mock
}

func (m *mockSecretStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockSecretStore) Put(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockSecretStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type staticPrompt struct {
	text string
	err  error
}

func (p staticPrompt) SystemPrompt(context.Context) (string, error) {
	return p.text, p.err
}

type staticImages struct {
	data []byte
	err  error
}

func (i staticImages) Load(context.Context, string) ([]byte, error) {
	return i.data, i.err
}

type stubProvider struct {
	id         domain.ProviderID
	completion ports.Completion
	err        error
	models     []domain.ModelInfo
	validate   error
	prompts    []ports.Prompt
}

func (p *stubProvider) ID() domain.ProviderID { return p.id }

func (p *stubProvider) Generate(_ context.Context, prompt ports.Prompt) (ports.Completion, error) {
	p.prompts = append(p.prompts, prompt)
	return p.completion, p.err
}

func (p *stubProvider) ListModels(context.Context) ([]domain.ModelInfo, error) {
	return p.models, nil
}

func (p *stubProvider) ValidateModel(context.Context, string) error {
	return p.validate
}

type serviceCall struct {
	Namespace string
	Action    string
	Data      map[string]any
}

// recordingCaller records every call. fail decides per call whether it
// errors; nil means every call succeeds.
type recordingCaller struct {
	mu    sync.Mutex
	calls []serviceCall
	fail  func(call serviceCall) error
}

func (c *recordingCaller) Call(_ context.Context, namespace, action string, data map[string]any) error {
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	call := serviceCall{Namespace: namespace, Action: action, Data: copied}

	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()

	if c.fail != nil {
		return c.fail(call)
	}
	return nil
}

func (c *recordingCaller) targets() []string {
	out := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		out = append(out, call.Namespace+"."+call.Action)
	}
	return out
}

type memoryJournal struct {
	mu       sync.Mutex
	records  []ports.CallRecord
	counters domain.UsageCounters
	quota    *domain.QuotaSnapshot
	loadErr  error
	history  []ports.DailyCount
}

func (j *memoryJournal) Record(_ context.Context, record ports.CallRecord, update ports.UsageUpdate) (domain.UsageCounters, *domain.QuotaSnapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.records = append(j.records, record)
	update(&j.counters)
	if record.Quota != nil {
		quota := *record.Quota
		j.quota = &quota
	}
	return j.counters, j.copyQuota(), nil
}

func (j *memoryJournal) Load(context.Context) (domain.UsageCounters, *domain.QuotaSnapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.counters, j.copyQuota(), j.loadErr
}

func (j *memoryJournal) copyQuota() *domain.QuotaSnapshot {
	if j.quota == nil {
		return nil
	}
	quota := *j.quota
	return &quota
}

func (j *memoryJournal) DailyCounts(context.Context, time.Time) ([]ports.DailyCount, error) {
	return j.history, nil
}

type failingJournal struct{}

func (failingJournal) Record(context.Context, ports.CallRecord, ports.UsageUpdate) (domain.UsageCounters, *domain.QuotaSnapshot, error) {
	return domain.UsageCounters{}, nil, errors.New("disk I/O error")
}

func (failingJournal) Load(context.Context) (domain.UsageCounters, *domain.QuotaSnapshot, error) {
	return domain.UsageCounters{}, nil, errors.New("disk I/O error")
}

func (failingJournal) DailyCounts(context.Context, time.Time) ([]ports.DailyCount, error) {
	return nil, errors.New("disk I/O error")
}

type countingMetrics struct {
	provider []string
	delivery []string
	tts      []string
}

func (m *countingMetrics) ProviderCall(provider, model, status string, _ time.Duration) {
	m.provider = append(m.provider, provider+"/"+model+"/"+status)
}

func (m *countingMetrics) Delivery(namespace, status string) {
	m.delivery = append(m.delivery, namespace+"/"+status)
}

func (m *countingMetrics) TTSAttempt(stage, status string) {
	m.tts = append(m.tts, stage+"/"+status)
}

var errUnavailable = errors.New("service unavailable")
