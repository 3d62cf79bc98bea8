package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/pageflow/common"
)

func noopStep(context.Context, *StepContext) error { return nil }

func noopView(common.Browser) View { return nil }

func dest(entity, name string, prereq *Prerequisite) Destination {
	return Destination{Entity: entity, Name: name, View: noopView, Step: noopStep, Prerequisite: prereq}
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(dest("host", "All", nil)))
	assert.EqualError(t, r.Register(dest("host", "All", nil)), "destination host.All is already registered")
	assert.Error(t, r.Register(Destination{Entity: "host", Name: "Details", View: noopView}))
	assert.Error(t, r.Register(Destination{Entity: "host", Name: "Details", Step: noopStep}))
	assert.Error(t, r.Register(Destination{Name: "Details", View: noopView, Step: noopStep}))
	assert.Error(t, r.Register(dest("host", "Details", &Prerequisite{})))
	assert.Panics(t, func() { r.MustRegister(dest("host", "All", nil)) })

	d, ok := r.Lookup(Key{"host", "All"})
	require.True(t, ok)
	assert.Equal(t, "host.All", d.Key().String())
}

func TestRegistryChain(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(
		dest("content_view", "All", nil),
		dest("content_view", "Edit", ToSibling("All")),
		dest("content_view", "Publish", ToSibling("Edit")),
		dest("errata", "All", nil),
		dest("errata", "FromContentView", ToEntity("content_view", "Edit")),
	)
	require.NoError(t, r.Validate())

	chain, err := r.Chain(Key{"content_view", "Publish"})
	require.NoError(t, err)
	assert.Equal(t, []Key{{"content_view", "All"}, {"content_view", "Edit"}, {"content_view", "Publish"}}, chain)

	chain, err = r.Chain(Key{"errata", "FromContentView"})
	require.NoError(t, err)
	assert.Len(t, chain, 3)

	assert.Equal(t, []Key{
		{"content_view", "All"}, {"content_view", "Edit"}, {"content_view", "Publish"},
		{"errata", "All"}, {"errata", "FromContentView"},
	}, r.Keys())
}

func TestRegistryValidate(t *testing.T) {
	t.Parallel()

	t.Run("unknown prerequisite", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustRegister(dest("host", "All", nil), dest("host", "Details", ToSibling("Al")))
		err := r.Validate()
		require.ErrorIs(t, err, ErrUnknownDestination)
		assert.ErrorContains(t, err, "host.Details requires unknown destination host.Al")
	})
	t.Run("cycle", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustRegister(
			dest("lce", "All", nil),
			dest("lce", "A", ToSibling("B")),
			dest("lce", "B", ToSibling("A")),
		)
		err := r.Validate()
		assert.ErrorContains(t, err, "prerequisite cycle")
		_, err = r.Chain(Key{"lce", "A"})
		assert.ErrorContains(t, err, "prerequisite cycle through lce.A")
	})
	t.Run("no root", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustRegister(dest("host", "All", nil), dest("errata", "Details", ToEntity("host", "All")))
		assert.EqualError(t, r.Validate(), "entity errata has no root destination")
	})
}

type ContentViewEntity struct{}

type LifecycleEnvironmentEntity struct{}

type Errata struct{}

func TestTypeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "content_view", TypeOf(&ContentViewEntity{}))
	assert.Equal(t, "lifecycle_environment", TypeOf(LifecycleEnvironmentEntity{}))
	assert.Equal(t, "errata", TypeOf(&Errata{}))
}

func TestArgs(t *testing.T) {
	t.Parallel()

	a := Args{"entity_name": "cv1", "applicable": true, "count": 3, "installable": "yes"}
	assert.Equal(t, "cv1", a.String("entity_name"))
	assert.Equal(t, "3", a.String("count"))
	assert.Equal(t, "", a.String("missing"))
	assert.True(t, a.Bool("applicable"))
	assert.True(t, a.Bool("installable"))
	assert.False(t, a.Bool("entity_name"))
	assert.Equal(t, Args{"entity_name": "cv1"}, a.Only("entity_name", "repo"))
	assert.Equal(t, "cv2", a.With("entity_name", "cv2").String("entity_name"))
	assert.Equal(t, "cv1", a.String("entity_name"), "With copies")
	assert.Equal(t, "applicable=true,count=3,entity_name=cv1,installable=yes", a.Format())
}

func TestArgsCollections(t *testing.T) {
	t.Parallel()

	a := Args{
		"values": map[string]any{"name": "cv1"},
		"hosts":  []any{"a.example.com", "b.example.com"},
		"host":   "c.example.com",
	}
	assert.Equal(t, map[string]any{"name": "cv1"}, a.Map("values"))
	assert.Nil(t, a.Map("host"))
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, a.Strings("hosts"))
	assert.Equal(t, []string{"c.example.com"}, a.Strings("host"))
	assert.Nil(t, a.Strings("values"))
}
