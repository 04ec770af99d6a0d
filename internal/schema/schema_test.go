package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/value"
)

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New([]Field{
		{Name: "a", Type: value.TypeInt()},
		{Name: "a", Type: value.TypeString()},
	})
	require.Error(t, err)
}

func TestIsCompatibleNullableVsNot(t *testing.T) {
	nullable := Field{Name: "a", Type: value.TypeInt(), Nullable: true}
	required := Field{Name: "b", Type: value.TypeInt(), Nullable: false}

	assert.True(t, nullable.IsCompatible(value.Null()))
	assert.False(t, required.IsCompatible(value.Null()))
	assert.True(t, required.IsCompatible(value.Int(5)))
	assert.False(t, required.IsCompatible(value.String("x")))
}

func TestWithColumnProducesNewSchema(t *testing.T) {
	s := MustNew([]Field{{Name: "a", Type: value.TypeInt()}})
	s2, err := s.WithColumn(Field{Name: "b", Type: value.TypeString()})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, s2.Len())
}

func TestProjectDropsUnknownNames(t *testing.T) {
	s := MustNew([]Field{
		{Name: "a", Type: value.TypeInt()},
		{Name: "b", Type: value.TypeString()},
	})
	p := s.Project([]string{"b", "ghost", "a"})
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "b", p.Field(0).Name)
	assert.Equal(t, "a", p.Field(1).Name)
}

func TestWithFieldMaterializedClearsLazy(t *testing.T) {
	s := MustNew([]Field{{Name: "c", Type: value.TypeInt(), IsLazy: true}})
	s2, err := s.WithFieldMaterialized("c")
	require.NoError(t, err)
	f, _ := s2.FieldByName("c")
	assert.False(t, f.IsLazy)
	f0, _ := s.FieldByName("c")
	assert.True(t, f0.IsLazy, "original schema is unchanged")
}
