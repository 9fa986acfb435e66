package factory

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/provider"
	"github.com/Ramsey-B/fern/pkg/provider/httpapi"
	"github.com/Ramsey-B/fern/pkg/provider/markdown"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeProvider struct {
	provider.Provider
	name string
}

func (f *fakeProvider) Name() string                      { return f.name }
func (f *fakeProvider) Healthy(ctx context.Context) error { return nil }

func TestGetBeforeConfigure(t *testing.T) {
	Reset()
	_, err := Get()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
}

func TestConfigureMarkdown(t *testing.T) {
	t.Cleanup(Reset)

	p, err := Configure(Settings{
		Kind:     KindMarkdown,
		Markdown: markdown.Config{ContentDir: t.TempDir()},
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "markdown", p.Name())

	got, err := Get()
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestConfigureHTTP(t *testing.T) {
	t.Cleanup(Reset)

	client := httpclient.NewClient(httpclient.DefaultConfig(), testLogger())
	p, err := Configure(Settings{
		Kind:       KindHTTP,
		HTTP:       httpapi.Config{BaseURL: "http://localhost:8080"},
		HTTPClient: client,
		Logger:     testLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "http", p.Name())
}

func TestConfigureHTTPWithoutClient(t *testing.T) {
	t.Cleanup(Reset)

	_, err := Configure(Settings{
		Kind: KindHTTP,
		HTTP: httpapi.Config{BaseURL: "http://localhost:8080"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
}

func TestConfigurePostgresRequiresInjection(t *testing.T) {
	t.Cleanup(Reset)

	_, err := Configure(Settings{Kind: KindPostgres})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))

	injected := &fakeProvider{name: "postgres"}
	p, err := Configure(Settings{Kind: KindPostgres, Postgres: injected})
	require.NoError(t, err)
	assert.Same(t, provider.Provider(injected), p)
}

func TestConfigureComposite(t *testing.T) {
	t.Cleanup(Reset)

	client := httpclient.NewClient(httpclient.DefaultConfig(), testLogger())
	p, err := Configure(Settings{
		Kind:       KindComposite,
		Chain:      []string{KindPostgres, KindHTTP, KindMarkdown},
		Postgres:   &fakeProvider{name: "postgres"},
		HTTP:       httpapi.Config{BaseURL: "http://localhost:8080"},
		HTTPClient: client,
		Markdown:   markdown.Config{ContentDir: t.TempDir()},
		Logger:     testLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "composite", p.Name())
}

func TestCompositeCannotNest(t *testing.T) {
	t.Cleanup(Reset)

	_, err := Configure(Settings{
		Kind:  KindComposite,
		Chain: []string{KindComposite},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
}

func TestUnknownKind(t *testing.T) {
	t.Cleanup(Reset)

	_, err := Configure(Settings{Kind: "graphite"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
}

func TestSetAndReset(t *testing.T) {
	Reset()
	injected := &fakeProvider{name: "postgres"}
	Set(injected)

	got, err := Get()
	require.NoError(t, err)
	assert.Same(t, provider.Provider(injected), got)

	Reset()
	_, err = Get()
	require.Error(t, err)
}
