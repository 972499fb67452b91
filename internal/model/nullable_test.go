package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullable_Unmarshal(t *testing.T) {
	var in ItemUpdate

	require.NoError(t, json.Unmarshal([]byte(`{"price": 3}`), &in))
	assert.False(t, in.Description.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"description": null}`), &in))
	assert.True(t, in.Description.Set)
	assert.Nil(t, in.Description.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"description": "oak"}`), &in))
	require.NotNil(t, in.Description.Value)
	assert.Equal(t, "oak", *in.Description.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"description": 12}`), &in))
}

func TestItemUpdate_Apply(t *testing.T) {
	desc, cat := "desk", "home"
	item := &Item{Name: "Lamp", Description: &desc, Category: &cat, Price: 10}

	var patch ItemUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"description": null}`), &patch))
	patch.Apply(item)

	assert.Nil(t, item.Description)
	require.NotNil(t, item.Category)
	assert.Equal(t, "home", *item.Category)
	assert.Equal(t, 10.0, item.Price)
}

func TestUserPatch_ApplyClearsFullName(t *testing.T) {
	name := "Alice"
	user := &User{Username: "alice", FullName: &name}

	UserPatch{FullName: Null[string]()}.Apply(user)
	assert.Nil(t, user.FullName)

	UserPatch{FullName: Some("Alice A.")}.Apply(user)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Alice A.", *user.FullName)

	UserPatch{}.Apply(user)
	assert.Equal(t, "Alice A.", *user.FullName)
}

func TestItemCreate_NewItem(t *testing.T) {
	price := 0.0
	item := ItemCreate{Name: "Free sample", Price: &price}.NewItem()
	assert.Equal(t, 0.0, item.Price)
	assert.True(t, item.IsAvailable)
}
