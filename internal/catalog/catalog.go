// Package catalog owns the loaded actor and movie collections for the
// lifetime of the server and serializes access to them.
package catalog

import (
	"context"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mark-c-hall/movie-trivia/internal/models"
	"github.com/mark-c-hall/movie-trivia/internal/moviedb"
	"github.com/mark-c-hall/movie-trivia/internal/trivia"
)

type Catalog struct {
	mu     sync.RWMutex
	actors []*models.Actor
	movies []*models.Movie

	tracer     trace.Tracer
	operations metric.Int64Counter
	inserts    metric.Int64Counter
}

// ActorView and MovieView are detached copies of the stored records.
type ActorView struct {
	Name   string   `json:"name"`
	Movies []string `json:"movies"`
}

type MovieView struct {
	Name           string `json:"name"`
	CriticRating   int    `json:"critic_rating"`
	AudienceRating int    `json:"audience_rating"`
}

type Counts struct {
	Actors int `json:"actors"`
	Movies int `json:"movies"`
}

func New(db *moviedb.DB, tracer trace.Tracer, meter metric.Meter) (*Catalog, error) {
	operations, err := meter.Int64Counter("trivia.catalog.operations",
		metric.WithDescription("Catalog operations served"),
	)
	if err != nil {
		return nil, err
	}
	inserts, err := meter.Int64Counter("trivia.catalog.inserts",
		metric.WithDescription("Actor and rating inserts applied"),
	)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		actors:     []*models.Actor{},
		movies:     []*models.Movie{},
		tracer:     tracer,
		operations: operations,
		inserts:    inserts,
	}
	if db != nil {
		c.actors = append(c.actors, db.Actors...)
		c.movies = append(c.movies, db.Movies...)
	}
	return c, nil
}

func (c *Catalog) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	c.operations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	return c.tracer.Start(ctx, "catalog."+op, trace.WithAttributes(attrs...))
}

func (c *Catalog) InsertActor(ctx context.Context, name string, movies []string) {
	ctx, span := c.start(ctx, "InsertActor",
		attribute.String("actor", name),
		attribute.Int("movies", len(movies)),
	)
	defer span.End()

	c.mu.Lock()
	trivia.InsertActor(name, movies, &c.actors)
	c.mu.Unlock()

	c.inserts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "actor")))
}

func (c *Catalog) InsertRating(ctx context.Context, movie string, ratings []int) {
	ctx, span := c.start(ctx, "InsertRating",
		attribute.String("movie", movie),
		attribute.IntSlice("ratings", ratings),
	)
	defer span.End()

	c.mu.Lock()
	trivia.InsertRating(movie, ratings, &c.movies)
	c.mu.Unlock()

	c.inserts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "rating")))
}

func (c *Catalog) MoviesForActor(ctx context.Context, actor string) []string {
	_, span := c.start(ctx, "MoviesForActor", attribute.String("actor", actor))
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.SelectWhereActorIs(actor, c.actors)
}

func (c *Catalog) ActorsInMovie(ctx context.Context, movie string) []string {
	_, span := c.start(ctx, "ActorsInMovie", attribute.String("movie", movie))
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.SelectWhereMovieIs(movie, c.actors)
}

func (c *Catalog) MoviesByRating(ctx context.Context, comparison trivia.Comparison, target int, isCritic bool) []string {
	_, span := c.start(ctx, "MoviesByRating",
		attribute.String("comparison", comparison.String()),
		attribute.Int("target", target),
		attribute.Bool("critic", isCritic),
	)
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.SelectWhereRatingIs(comparison, target, isCritic, c.movies)
}

func (c *Catalog) CoActors(ctx context.Context, actor string) []string {
	_, span := c.start(ctx, "CoActors", attribute.String("actor", actor))
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.GetCoActors(actor, c.actors)
}

func (c *Catalog) CommonMovies(ctx context.Context, actor1, actor2 string) []string {
	_, span := c.start(ctx, "CommonMovies",
		attribute.String("actor1", actor1),
		attribute.String("actor2", actor2),
	)
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.GetCommonMovie(actor1, actor2, c.actors)
}

func (c *Catalog) CommonActors(ctx context.Context, movie1, movie2 string) []string {
	_, span := c.start(ctx, "CommonActors",
		attribute.String("movie1", movie1),
		attribute.String("movie2", movie2),
	)
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.GetCommonActors(movie1, movie2, c.actors)
}

func (c *Catalog) GoodMovies(ctx context.Context) []string {
	_, span := c.start(ctx, "GoodMovies")
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.GoodMovies(c.movies)
}

func (c *Catalog) Mean(ctx context.Context) trivia.Mean {
	_, span := c.start(ctx, "Mean")
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return trivia.GetMean(c.movies)
}

func (c *Catalog) Actors(ctx context.Context) []ActorView {
	_, span := c.start(ctx, "Actors")
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()

	views := make([]ActorView, 0, len(c.actors))
	for _, a := range c.actors {
		views = append(views, ActorView{Name: a.Name, Movies: slices.Clone(a.MoviesCast)})
	}
	return views
}

func (c *Catalog) Movies(ctx context.Context) []MovieView {
	_, span := c.start(ctx, "Movies")
	defer span.End()

	c.mu.RLock()
	defer c.mu.RUnlock()

	views := make([]MovieView, 0, len(c.movies))
	for _, m := range c.movies {
		views = append(views, MovieView{
			Name:           m.Name(),
			CriticRating:   m.CriticRating(),
			AudienceRating: m.AudienceRating(),
		})
	}
	return views
}

func (c *Catalog) Counts() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Counts{Actors: len(c.actors), Movies: len(c.movies)}
}
