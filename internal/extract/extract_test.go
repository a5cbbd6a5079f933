package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/internal/fetch"
	"github.com/caselens/caselens/internal/schema"
)

// fakeProvider returns queued responses in order; an entry with err set
// simulates a provider failure for that call.
type fakeProvider struct {
	responses []fakeResponse
	calls     int
	lastUser  string
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeProvider) Extract(ctx context.Context, system, user, url string) (string, error) {
	f.lastUser = user
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		return "", errors.New("no more responses queued")
	}
	return f.responses[i].text, f.responses[i].err
}

func (f *fakeProvider) Name() string { return "fake" }

func content() *fetch.Content {
	return &fetch.Content{
		URL:           "https://example.com/case",
		Host:          "example.com",
		Title:         "Case",
		Body:          "body text",
		PublishedDate: "2024-01-10",
		Language:      "English",
		Region:        "Global",
	}
}

const goodResponse = `{"title":"AcmeCorp automation","category":"finance","workflow_summary":"Invoices are posted automatically."}`

func adapter(p *fakeProvider) *Adapter {
	return &Adapter{
		Provider:     p,
		SystemPrompt: "system",
		UserTemplate: "url={{url}} type={{info_type}} lang={{detected_lang}}\n{{content}}",
		Required:     []string{schema.FieldTitle, schema.FieldCategory, schema.FieldSummary},
		RetryDelay:   time.Millisecond,
	}
}

func TestExtractSuccess(t *testing.T) {
	p := &fakeProvider{responses: []fakeResponse{{text: goodResponse}}}
	rec, err := adapter(p).Extract(context.Background(), content(), schema.InfoSecondary)
	require.NoError(t, err)
	assert.Equal(t, "AcmeCorp automation", rec[schema.FieldTitle])
	assert.Equal(t, schema.InfoSecondary, rec[schema.FieldInfoType])
	assert.Contains(t, p.lastUser, "url=https://example.com/case")
	assert.Contains(t, p.lastUser, "type=secondary")
	assert.Contains(t, p.lastUser, "lang=English")
	assert.Contains(t, p.lastUser, "body text")
}

func TestExtractRetriesProviderFailure(t *testing.T) {
	p := &fakeProvider{responses: []fakeResponse{
		{err: errors.New("rate limited")},
		{text: goodResponse},
	}}
	rec, err := adapter(p).Extract(context.Background(), content(), schema.InfoPrimary)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, schema.InfoPrimary, rec[schema.FieldInfoType])
}

func TestExtractRetriesMalformedResponse(t *testing.T) {
	p := &fakeProvider{responses: []fakeResponse{
		{text: "I could not find any structured data."},
		{text: goodResponse},
	}}
	_, err := adapter(p).Extract(context.Background(), content(), schema.InfoSecondary)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestExtractGivesUpAfterBudget(t *testing.T) {
	p := &fakeProvider{responses: []fakeResponse{
		{err: errors.New("down")},
		{err: errors.New("still down")},
		{text: goodResponse},
	}}
	_, err := adapter(p).Extract(context.Background(), content(), schema.InfoSecondary)
	require.Error(t, err)
	assert.Equal(t, 2, p.calls, "default budget is two attempts")
}

func TestExtractMissingRequiredField(t *testing.T) {
	p := &fakeProvider{responses: []fakeResponse{
		{text: `{"title":"only a title"}`},
		{text: `{"title":"only a title"}`},
	}}
	_, err := adapter(p).Extract(context.Background(), content(), schema.InfoSecondary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field")
}

func TestEstimatedMarkerForcesInfoType(t *testing.T) {
	p := &fakeProvider{responses: []fakeResponse{{
		text: `{"title":"T","category":"finance","workflow_summary":"S","roi":"estimated: 40% saved"}`,
	}}}
	rec, err := adapter(p).Extract(context.Background(), content(), schema.InfoPrimary)
	require.NoError(t, err)
	assert.Equal(t, schema.InfoEstimated, rec[schema.FieldInfoType])
}

func TestEstimatedMarkerJapaneseSpelling(t *testing.T) {
	p := &fakeProvider{responses: []fakeResponse{{
		text: `{"title":"T","category":"finance","workflow_summary":"S","scale":"推定: 月500件"}`,
	}}}
	rec, err := adapter(p).Extract(context.Background(), content(), schema.InfoSecondary)
	require.NoError(t, err)
	assert.Equal(t, schema.InfoEstimated, rec[schema.FieldInfoType])
}

func TestEstimatedMarkerIgnoredOnExemptFields(t *testing.T) {
	rec := schema.Record{
		schema.FieldTitle:     "T",
		schema.FieldSourceURL: "estimated: not really a url",
	}
	applyEstimatedOverride(rec, schema.InfoSecondary)
	assert.Equal(t, schema.InfoSecondary, rec[schema.FieldInfoType])
}

func TestDecodeRecordVariants(t *testing.T) {
	cases := []struct {
		name, raw string
		wantTitle string
		wantErr   bool
	}{
		{"bare object", `{"title":"A"}`, "A", false},
		{"fenced", "Here you go:\n```json\n{\"title\":\"B\"}\n```\nDone.", "B", false},
		{"fence no lang", "```\n{\"title\":\"C\"}\n```", "C", false},
		{"embedded in prose", `The result is {"title":"D"} as requested.`, "D", false},
		{"no object", "nothing here", "", true},
		{"invalid json", "{not json}", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := DecodeRecord(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTitle, rec["title"])
		})
	}
}

func TestDecodeRecordStringifiesValues(t *testing.T) {
	rec, err := DecodeRecord(`{"difficulty":3,"flag":true,"empty":null,"nested":{"a":1}}`)
	require.NoError(t, err)
	assert.Equal(t, "3", rec["difficulty"])
	assert.Equal(t, "true", rec["flag"])
	assert.Equal(t, "", rec["empty"])
	assert.JSONEq(t, `{"a":1}`, rec["nested"])
}

func TestInterpolateLeavesUnknownPlaceholders(t *testing.T) {
	out := Interpolate("a={{known}} b={{ unknown }}", map[string]string{"known": "1"})
	assert.Equal(t, "a=1 b={{ unknown }}", out)
}
