package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(name string) Handler {
	return func(ctx context.Context, args map[string]any) (string, error) {
		return name, nil
	}
}

func testCatalog() []Descriptor {
	return []Descriptor{
		{Name: "alpha", Description: "tool alpha", Service: "svc1", Handler: echoHandler("alpha")},
		{Name: "beta", Description: "tool beta", Service: "svc1", Handler: echoHandler("beta")},
		{Name: "gamma", Description: "tool gamma", Service: "svc2", Handler: echoHandler("gamma")},
		{Name: "delta", Description: "tool delta", Service: "svc2", Handler: echoHandler("delta")},
	}
}

func TestNew_NoFilter(t *testing.T) {
	r, err := New(testCatalog(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, r.Names())
}

func TestNew_IncludeFilter(t *testing.T) {
	r, err := New(testCatalog(), Filter{Include: []string{"gamma", "alpha"}})
	require.NoError(t, err)
	// Active set keeps catalog order, not include-list order.
	assert.Equal(t, []string{"alpha", "gamma"}, r.Names())
}

func TestNew_ExcludeFilter(t *testing.T) {
	r, err := New(testCatalog(), Filter{Exclude: []string{"beta", "delta"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gamma"}, r.Names())
}

func TestNew_IncludeWinsOverExclude(t *testing.T) {
	r, err := New(testCatalog(), Filter{
		Include: []string{"alpha", "beta"},
		Exclude: []string{"beta", "gamma"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, r.Names())
}

func TestNew_UnknownFilterNamesIgnored(t *testing.T) {
	r, err := New(testCatalog(), Filter{Include: []string{"alpha", "no_such_tool"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, r.Names())
}

func TestNew_DuplicateName(t *testing.T) {
	catalog := testCatalog()
	catalog = append(catalog, Descriptor{Name: "alpha", Handler: echoHandler("alpha")})
	_, err := New(catalog, Filter{})
	assert.ErrorContains(t, err, "duplicate tool name")
}

func TestNew_MissingHandler(t *testing.T) {
	_, err := New([]Descriptor{{Name: "broken"}}, Filter{})
	assert.ErrorContains(t, err, "no handler")
}

func TestDispatch_UnknownAndFilteredAreIdentical(t *testing.T) {
	r, err := New(testCatalog(), Filter{Exclude: []string{"beta"}})
	require.NoError(t, err)

	_, errFiltered := r.Dispatch(context.Background(), "beta", nil)
	_, errUnknown := r.Dispatch(context.Background(), "no_such_tool", nil)

	require.Error(t, errFiltered)
	require.Error(t, errUnknown)
	assert.ErrorIs(t, errFiltered, ErrToolNotFound)
	assert.ErrorIs(t, errUnknown, ErrToolNotFound)
	// Identical error values, not merely equivalent messages.
	assert.Equal(t, errUnknown, errFiltered)
	assert.Equal(t, errUnknown.Error(), errFiltered.Error())
}

func TestDispatch_RunsHandler(t *testing.T) {
	r, err := New(testCatalog(), Filter{})
	require.NoError(t, err)

	out, err := r.Dispatch(context.Background(), "gamma", nil)
	require.NoError(t, err)
	assert.Equal(t, "gamma", out)
}

func TestDispatch_ValidatesArgs(t *testing.T) {
	catalog := []Descriptor{{
		Name:    "send",
		Service: "svc",
		Params: []Param{
			{Name: "to", Type: TypeString, Required: true},
			{Name: "count", Type: TypeNumber},
			{Name: "urgent", Type: TypeBoolean},
			{Name: "meta", Type: TypeObject},
			{Name: "tags", Type: TypeArray},
		},
		Handler: echoHandler("send"),
	}}
	r, err := New(catalog, Filter{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{name: "missing required", args: map[string]any{}, wantErr: `parameter "to" is required`},
		{name: "nil required", args: map[string]any{"to": nil}, wantErr: `parameter "to" is required`},
		{name: "wrong string kind", args: map[string]any{"to": 5}, wantErr: "must be a string"},
		{name: "wrong number kind", args: map[string]any{"to": "+1555", "count": "three"}, wantErr: "must be a number"},
		{name: "wrong boolean kind", args: map[string]any{"to": "+1555", "urgent": "yes"}, wantErr: "must be a boolean"},
		{name: "wrong object kind", args: map[string]any{"to": "+1555", "meta": []any{}}, wantErr: "must be a object"},
		{name: "wrong array kind", args: map[string]any{"to": "+1555", "tags": "a,b"}, wantErr: "must be a array"},
		{name: "valid", args: map[string]any{"to": "+1555", "count": float64(3), "urgent": true, "meta": map[string]any{}, "tags": []any{"a"}}},
		{name: "optional omitted", args: map[string]any{"to": "+1555"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), "send", tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDispatch_HandlerError(t *testing.T) {
	boom := errors.New("upstream exploded")
	catalog := []Descriptor{{
		Name:    "failing",
		Service: "svc",
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return "", fmt.Errorf("call failed: %w", boom)
		},
	}}
	r, err := New(catalog, Filter{})
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "failing", nil)
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_Timeout(t *testing.T) {
	catalog := []Descriptor{{
		Name:    "slow",
		Service: "svc",
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return "done", nil
			}
		},
	}}
	r, err := New(catalog, Filter{}, WithToolTimeout(10*time.Millisecond))
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "slow", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestActive_ReturnsCopy(t *testing.T) {
	r, err := New(testCatalog(), Filter{})
	require.NoError(t, err)

	active := r.Active()
	active[0].Name = "mutated"

	assert.Equal(t, "alpha", r.Active()[0].Name)
}

func TestHas(t *testing.T) {
	r, err := New(testCatalog(), Filter{Include: []string{"alpha"}})
	require.NoError(t, err)

	assert.True(t, r.Has("alpha"))
	assert.False(t, r.Has("beta"))
	assert.False(t, r.Has("no_such_tool"))
}
