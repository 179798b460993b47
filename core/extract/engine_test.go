package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// scriptedModel replies with the next scripted answer on every call.
type scriptedModel struct {
	replies []string
	errs    []error
	calls   [][]core.Message
}

func (m *scriptedModel) Complete(_ context.Context, messages []core.Message) (string, error) {
	i := len(m.calls)
	m.calls = append(m.calls, messages)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i >= len(m.replies) {
		return "", errors.New("unexpected model call")
	}
	return m.replies[i], nil
}

const twoProducts = `{"items": [
	{"product_name": "Mango Ice", "product_link": "https://shop.example/mango", "brand": "Cloud", "Flavors": ["Mango"]},
	{"Product Description": "Blue Razz", "Product Link": "https://shop.example/razz"}
]}`

func TestExtract_FirstPassNoRepair(t *testing.T) {
	model := &scriptedModel{replies: []string{twoProducts}}
	listing, err := New(model, zap.NewNop()).Extract(context.Background(), "page text")

	require.NoError(t, err)
	require.Len(t, listing.Items, 2)
	assert.Equal(t, "Mango Ice", listing.Items[0].ProductName)
	assert.Equal(t, "Blue Razz", listing.Items[1].ProductName)
	assert.Equal(t, []string{schema.NotAvailable}, listing.Items[1].Flavors)
	assert.Len(t, model.calls, 1)
}

func TestExtract_PromptShape(t *testing.T) {
	model := &scriptedModel{replies: []string{`{"items": []}`}}
	_, err := New(model, zap.NewNop()).Extract(context.Background(), "MANGO ICE $9.99")
	require.NoError(t, err)

	msgs := model.calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "return only valid JSON")
	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "MANGO ICE $9.99")
	assert.Contains(t, msgs[1].Content, "Return JSON only, without extra information.")
	assert.True(t, strings.HasSuffix(msgs[1].Content, schema.FormatInstructions()))
}

func TestExtract_WrappedJSONRecovered(t *testing.T) {
	reply := "<think>the page lists two vapes</think>\nHere you go:\n```json\n" + twoProducts + "\n```\nLet me know!"
	model := &scriptedModel{replies: []string{reply}}

	listing, err := New(model, zap.NewNop()).Extract(context.Background(), "page")
	require.NoError(t, err)
	assert.Len(t, listing.Items, 2)
	assert.Len(t, model.calls, 1)
}

func TestExtract_RepairSucceeds(t *testing.T) {
	bad := "I could not find structured data, sorry."
	model := &scriptedModel{replies: []string{bad, "```json\n" + twoProducts + "\n```"}}

	listing, err := New(model, zap.NewNop()).Extract(context.Background(), "page")
	require.NoError(t, err)
	assert.Len(t, listing.Items, 2)
	require.Len(t, model.calls, 2)

	repair := model.calls[1]
	require.Len(t, repair, 1)
	assert.Contains(t, repair[0].Content, bad, "repair sees the full first reply")
	assert.Contains(t, repair[0].Content, ErrNoJSON.Error())
	assert.Contains(t, repair[0].Content, schema.FormatInstructions())
}

func TestExtract_RepairFails(t *testing.T) {
	model := &scriptedModel{replies: []string{"no json here", "still no json"}}

	listing, err := New(model, zap.NewNop()).Extract(context.Background(), "page")
	assert.Nil(t, listing)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, "no json here", extractionErr.Raw)
	assert.Equal(t, "still no json", extractionErr.Repair.Output)
	assert.ErrorIs(t, err, ErrNoJSON)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
	var repairErr *RepairError
	assert.True(t, errors.As(err, &repairErr))
	assert.Contains(t, err.Error(), "Raw Output:\nno json here")
	assert.Len(t, model.calls, 2)
}

func TestExtract_RepairCallFails(t *testing.T) {
	model := &scriptedModel{
		replies: []string{`{"items": "nope"}`},
		errs:    []error{nil, errors.New("connection reset")},
	}

	_, err := New(model, zap.NewNop()).Extract(context.Background(), "page")

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Empty(t, extractionErr.Repair.Output)
	assert.Contains(t, extractionErr.Repair.Error(), "connection reset")
}

func TestExtract_FirstCallFails(t *testing.T) {
	model := &scriptedModel{errs: []error{errors.New("401 invalid api key")}}

	_, err := New(model, zap.NewNop()).Extract(context.Background(), "page")
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.False(t, errors.As(err, &extractionErr))
	assert.Contains(t, err.Error(), "401 invalid api key")
	assert.Len(t, model.calls, 1)
}

func TestExtract_MaxInputWords(t *testing.T) {
	model := &scriptedModel{replies: []string{`{"items": []}`}}
	_, err := New(model, zap.NewNop(), WithMaxInputWords(2)).Extract(context.Background(), "alpha beta gamma delta")
	require.NoError(t, err)

	prompt := model.calls[0][1].Content
	assert.Contains(t, prompt, "alpha beta")
	assert.NotContains(t, prompt, "gamma")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		parsed bool
	}{
		{"bare object", `{"items": []}`, true},
		{"with commentary", "Sure! {\"items\": [{}]} Hope this helps.", true},
		{"no braces", "nothing", false},
		{"invalid json", `{"items": [}`, false},
		{"schema mismatch", `{"products": []}`, false},
		// Greedy match spans both objects and yields invalid JSON.
		{"two objects", `{"items": []} and also {"note": 1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.raw)
			assert.Equal(t, tt.parsed, res.Parsed())
			if !tt.parsed {
				require.NotNil(t, res.Failure)
				assert.Nil(t, res.Listing)
			}
		})
	}
}
