package iavl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tendermint/libs/db"
)

func TestCommitStorePersistsWrittenCache(t *testing.T) {
	db := dbm.NewMemDB()
	s := NewCommitStoreFromDB(db)
	require.NoError(t, s.LoadLatestVersion())
	assert.Equal(t, int64(0), s.LatestVersion().Version)

	cache := s.CacheWrap()
	cache.Set([]byte("vault:1"), []byte("one"))
	cache.Set([]byte("vault:2"), []byte("two"))
	assert.Nil(t, s.Get([]byte("vault:1")), "not visible before write")
	require.NoError(t, cache.Write())

	id, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)
	assert.Equal(t, []byte("one"), s.Get([]byte("vault:1")))

	discarded := s.CacheWrap()
	discarded.Set([]byte("vault:3"), []byte("three"))
	discarded.Discard()

	second := s.CacheWrap()
	second.Delete([]byte("vault:2"))
	require.NoError(t, second.Write())
	id2, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2.Version)
	assert.NotEqual(t, id.Hash, id2.Hash)

	// a fresh store on the same database sees the latest version
	reloaded := NewCommitStoreFromDB(db)
	require.NoError(t, reloaded.LoadLatestVersion())
	assert.Equal(t, id2, reloaded.LatestVersion())
	assert.Equal(t, []byte("one"), reloaded.Get([]byte("vault:1")))
	assert.Nil(t, reloaded.Get([]byte("vault:2")))
	assert.Nil(t, reloaded.Get([]byte("vault:3")))
}

func TestCommitStoreIterators(t *testing.T) {
	s, err := NewCommitStore("", "test")
	require.NoError(t, err)

	cache := s.CacheWrap()
	for _, k := range []string{"a", "b", "c"} {
		cache.Set([]byte(k), []byte(k))
	}
	require.NoError(t, cache.Write())
	_, err = s.Commit()
	require.NoError(t, err)

	view := s.CacheWrap()
	view.Set([]byte("bb"), []byte("bb"))

	var asc []string
	for it := view.Iterator(nil, nil); it.Valid(); it.Next() {
		asc = append(asc, string(it.Key()))
	}
	assert.Equal(t, []string{"a", "b", "bb", "c"}, asc)

	var desc []string
	for it := view.ReverseIterator([]byte("a"), []byte("c")); it.Valid(); it.Next() {
		desc = append(desc, string(it.Key()))
	}
	assert.Equal(t, []string{"bb", "b", "a"}, desc)
}
