package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcontext "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestProvider(t *testing.T) (*Provider, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := New(Config{ContentDir: dir}, testLogger())
	require.NoError(t, err)
	return p, dir
}

func tenantCtx(tenantID string) context.Context {
	return appcontext.SetTenantID(context.Background(), tenantID)
}

func TestNewRequiresExistingDirectory(t *testing.T) {
	_, err := New(Config{ContentDir: "/does/not/exist"}, testLogger())
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
}

func TestListThingsParsesFrontMatter(t *testing.T) {
	p, dir := newTestProvider(t)
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-1.md"), `---
type: course
name: Intro to Gardening
status: published
properties:
  difficulty: beginner
---
A hands-on introduction.
`)
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-2.md"), `---
type: product
name: Trowel
---
`)

	result, err := p.ListThings(tenantCtx("g-1"), models.ThingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)

	course := result.Items[0]
	assert.Equal(t, "t-1", course.ID)
	assert.Equal(t, "g-1", course.GroupID)
	assert.Equal(t, "course", course.Type)
	assert.Equal(t, "published", course.Status)
	difficulty, ok := course.Property("difficulty")
	require.True(t, ok)
	assert.Equal(t, "beginner", difficulty)
	description, ok := course.Property("description")
	require.True(t, ok)
	assert.Equal(t, "A hands-on introduction.", description)

	// status defaults to active when the front matter omits it
	assert.Equal(t, "active", result.Items[1].Status)
}

func TestListThingsFilters(t *testing.T) {
	p, dir := newTestProvider(t)
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-1.md"), "---\ntype: course\nname: Gardening\n---\n")
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-2.md"), "---\ntype: product\nname: Trowel\n---\n")

	result, err := p.ListThings(tenantCtx("g-1"), models.ThingFilter{Type: "course"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "t-1", result.Items[0].ID)

	result, err = p.ListThings(tenantCtx("g-1"), models.ThingFilter{Search: "trow"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "t-2", result.Items[0].ID)
}

func TestTenantScopingAcrossDirectories(t *testing.T) {
	p, dir := newTestProvider(t)
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-1.md"), "---\ntype: course\nname: Mine\n---\n")
	writeFile(t, filepath.Join(dir, "g-2", "things", "t-2.md"), "---\ntype: course\nname: Theirs\n---\n")

	result, err := p.ListThings(tenantCtx("g-1"), models.ThingFilter{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "t-1", result.Items[0].ID)

	_, err = p.GetThing(tenantCtx("g-1"), "t-2")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestListRequiresTenant(t *testing.T) {
	p, _ := newTestProvider(t)
	_, err := p.ListThings(context.Background(), models.ThingFilter{})
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestGroupVisibility(t *testing.T) {
	p, dir := newTestProvider(t)
	writeFile(t, filepath.Join(dir, "groups", "g-1.md"), "---\nslug: acme\nname: Acme\ntype: organization\n---\n")
	writeFile(t, filepath.Join(dir, "groups", "g-2.md"), "---\nslug: child\nname: Child\ntype: community\nparent_id: g-1\n---\n")
	writeFile(t, filepath.Join(dir, "groups", "g-3.md"), "---\nslug: other\nname: Other\ntype: organization\n---\n")

	result, err := p.ListGroups(tenantCtx("g-1"), models.GroupFilter{})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "g-1", result.Items[0].ID)
	assert.Equal(t, "g-2", result.Items[1].ID)

	_, err = p.GetGroup(tenantCtx("g-1"), "g-3")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestBodyWithoutFrontMatter(t *testing.T) {
	p, dir := newTestProvider(t)
	writeFile(t, filepath.Join(dir, "g-1", "knowledge", "k-1.md"), "Plain content with no front matter.\n")

	knowledge, err := p.GetKnowledge(tenantCtx("g-1"), "k-1")
	require.NoError(t, err)
	assert.Equal(t, "Plain content with no front matter.", knowledge.Content)
	assert.Equal(t, "note", knowledge.Type)
}

func TestSearchKnowledge(t *testing.T) {
	p, dir := newTestProvider(t)
	writeFile(t, filepath.Join(dir, "g-1", "knowledge", "k-1.md"), "---\nsource_thing_id: t-1\n---\nCompost requires nitrogen and carbon.\n")
	writeFile(t, filepath.Join(dir, "g-1", "knowledge", "k-2.md"), "---\nsource_thing_id: t-1\n---\nFerns prefer indirect light.\n")

	results, err := p.SearchKnowledge(tenantCtx("g-1"), models.KnowledgeSearchRequest{Query: "compost"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "k-1", results[0].ID)
	assert.Equal(t, float64(1), results[0].Score)

	_, err = p.SearchKnowledge(tenantCtx("g-1"), models.KnowledgeSearchRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestWritesAreNotImplemented(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := tenantCtx("g-1")

	_, err := p.CreateThing(ctx, models.CreateThingRequest{Type: "course", Name: "x"})
	assert.True(t, errors.IsNotImplemented(err))

	_, err = p.CreateGroup(ctx, models.CreateGroupRequest{Name: "x", Type: "organization"})
	assert.True(t, errors.IsNotImplemented(err))

	err = p.DeleteKnowledge(ctx, "k-1")
	assert.True(t, errors.IsNotImplemented(err))

	_, err = p.RecordEvent(ctx, models.RecordEventRequest{Type: "lesson_started"})
	assert.True(t, errors.IsNotImplemented(err))

	_, err = p.Embed(ctx, "text")
	assert.True(t, errors.IsNotImplemented(err))
}

func TestPagination(t *testing.T) {
	p, dir := newTestProvider(t)
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-1.md"), "---\ntype: course\nname: One\n---\n")
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-2.md"), "---\ntype: course\nname: Two\n---\n")
	writeFile(t, filepath.Join(dir, "g-1", "things", "t-3.md"), "---\ntype: course\nname: Three\n---\n")

	result, err := p.ListThings(tenantCtx("g-1"), models.ThingFilter{Page: models.Page{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "t-3", result.Items[0].ID)
}
