package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/mark-c-hall/movie-trivia/internal/models"
	"github.com/mark-c-hall/movie-trivia/internal/moviedb"
	"github.com/mark-c-hall/movie-trivia/internal/trivia"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	db := &moviedb.DB{
		Actors: []*models.Actor{
			{Name: "meryl streep", MoviesCast: []string{"doubt", "the post"}},
			{Name: "tom hanks", MoviesCast: []string{"the post"}},
			{Name: "amy adams", MoviesCast: []string{"doubt"}},
		},
		Movies: []*models.Movie{
			models.NewMovie("doubt", 79, 78),
			models.NewMovie("the post", 88, 74),
			models.NewMovie("jaws", 97, 90),
		},
	}
	c, err := New(db, tracenoop.NewTracerProvider().Tracer("test"), metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return c
}

func TestCatalog_Queries(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	assert.Equal(t, []string{"doubt", "the post"}, c.MoviesForActor(ctx, " MERYL streep "))
	assert.Equal(t, []string{"meryl streep", "amy adams"}, c.ActorsInMovie(ctx, "Doubt"))
	assert.Equal(t, []string{"the post", "jaws"}, c.MoviesByRating(ctx, trivia.Greater, 80, true))
	assert.Equal(t, []string{"amy adams", "tom hanks"}, c.CoActors(ctx, "meryl streep"))
	assert.Equal(t, []string{"the post"}, c.CommonMovies(ctx, "meryl streep", "tom hanks"))
	assert.Equal(t, []string{"meryl streep"}, c.CommonActors(ctx, "doubt", "the post"))
	assert.Equal(t, []string{"jaws"}, c.GoodMovies(ctx))
	assert.Equal(t, trivia.Mean{Critic: 88, Audience: 242.0 / 3}, c.Mean(ctx))
	assert.Equal(t, Counts{Actors: 3, Movies: 3}, c.Counts())
}

func TestCatalog_InsertsVisible(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	c.InsertActor(ctx, "Tom Hanks", []string{"Cast Away"})
	c.InsertActor(ctx, "Kate Winslet", []string{"Titanic"})
	c.InsertRating(ctx, "Titanic", []int{89, 69})
	c.InsertRating(ctx, "DOUBT", []int{100, 100})

	assert.Equal(t, []string{"the post", "cast away"}, c.MoviesForActor(ctx, "tom hanks"))
	assert.Equal(t, []string{"kate winslet"}, c.ActorsInMovie(ctx, "titanic"))
	assert.Equal(t, []string{"doubt", "jaws"}, c.GoodMovies(ctx))
	assert.Equal(t, Counts{Actors: 4, Movies: 4}, c.Counts())
}

func TestCatalog_ViewsAreDetached(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	actors := c.Actors(ctx)
	require.Len(t, actors, 3)
	actors[0].Movies[0] = "changed"

	movies := c.MoviesForActor(ctx, "meryl streep")
	movies[0] = "changed"

	assert.Equal(t, []string{"doubt", "the post"}, c.MoviesForActor(ctx, "meryl streep"))

	assert.Equal(t, []MovieView{
		{Name: "doubt", CriticRating: 79, AudienceRating: 78},
		{Name: "the post", CriticRating: 88, AudienceRating: 74},
		{Name: "jaws", CriticRating: 97, AudienceRating: 90},
	}, c.Movies(ctx))
}

func TestCatalog_NilDB(t *testing.T) {
	c, err := New(nil, tracenoop.NewTracerProvider().Tracer("test"), metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	assert.Empty(t, c.Actors(context.Background()))
	assert.Equal(t, trivia.Mean{}, c.Mean(context.Background()))
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.InsertActor(ctx, "tom hanks", []string{"big"})
			c.InsertRating(ctx, "big", []int{i, i})
		}()
		go func() {
			defer wg.Done()
			c.CoActors(ctx, "meryl streep")
			c.Mean(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"the post", "big"}, c.MoviesForActor(ctx, "tom hanks"))
	assert.Equal(t, Counts{Actors: 3, Movies: 4}, c.Counts())
}
