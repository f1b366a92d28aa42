package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildListFilterHorizonOnly(t *testing.T) {
	horizon := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	filter := buildListFilter(ListOptions{Horizon: horizon})

	require.Len(t, filter, 1)
	created, ok := filter["createdAt"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, horizon, created["$lte"])
}

func TestBuildListFilterExactMatches(t *testing.T) {
	author := primitive.NewObjectID()

	filter := buildListFilter(ListOptions{
		Horizon:  time.Now().UTC(),
		Author:   author,
		Category: "Wellness",
	})

	assert.Equal(t, author, filter["author"])
	assert.Equal(t, "Wellness", filter["category"])
	assert.NotContains(t, filter, "$or")
}

func TestBuildListFilterSearchClause(t *testing.T) {
	filter := buildListFilter(ListOptions{Horizon: time.Now().UTC(), Search: "jazz"})

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 4)

	fields := make([]string, 0, len(or))
	for _, clause := range or {
		m, ok := clause.(bson.M)
		require.True(t, ok)
		require.Len(t, m, 1)
		for field, v := range m {
			fields = append(fields, field)
			rx, ok := v.(primitive.Regex)
			require.True(t, ok)
			assert.Equal(t, "jazz", rx.Pattern)
			assert.Equal(t, "i", rx.Options)
		}
	}
	assert.ElementsMatch(t, []string{"title", "description", "category", "tags"}, fields)
}

func TestBuildListFilterEscapesRegexMeta(t *testing.T) {
	filter := buildListFilter(ListOptions{Horizon: time.Now().UTC(), Search: "c++ (remix)"})

	or := filter["$or"].(bson.A)
	rx := or[0].(bson.M)["title"].(primitive.Regex)
	assert.Equal(t, `c\+\+ \(remix\)`, rx.Pattern)
}
